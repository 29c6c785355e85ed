// Package cli implements the querygate command-line client.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{
				"error": err.Error(),
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				errObj["code"] = apiErr.Code
				if apiErr.ReviewStatus != "" {
					errObj["review_status"] = apiErr.ReviewStatus
				}
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host   string
		token  string
		output string
	)

	rootCmd := &cobra.Command{
		Use:           "querygate",
		Short:         "Querygate CLI",
		Long:          "Command-line interface for the querygate execution-request review API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT token for authentication")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	client := NewClient(host, token)

	// Resolve flag > env > default after flag parsing, then update the client.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed("host") {
			if v := os.Getenv("QUERYGATE_HOST"); v != "" {
				host = v
			}
		}
		if !cmd.Flags().Changed("token") {
			if v := os.Getenv("QUERYGATE_TOKEN"); v != "" {
				token = v
			}
		}
		if err := validateOutputFormat(output); err != nil {
			return err
		}
		client.BaseURL = host
		client.Token = token
		return nil
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newRequestsCmd(client))
	rootCmd.AddCommand(newConnectionsCmd(client))
	rootCmd.AddCommand(newUsersCmd(client))

	return rootCmd
}
