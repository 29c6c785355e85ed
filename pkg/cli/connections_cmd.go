package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newConnectionsCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"connection", "conn"},
		Short:   "Manage datasource connections",
	}

	cmd.AddCommand(newConnectionsListCmd(client))
	cmd.AddCommand(newConnectionsGetCmd(client))
	cmd.AddCommand(newConnectionsCreateCmd(client))
	return cmd
}

func newConnectionsListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Data          []connection `json:"data"`
				NextPageToken string       `json:"nextPageToken"`
			}
			if err := client.DoJSON(http.MethodGet, "/connections", nil, nil, &resp); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := make([][]string, len(resp.Data))
			for i, c := range resp.Data {
				rows[i] = []string{c.ID, c.Name, c.Type, fmt.Sprint(c.ReviewsRequired)}
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "TYPE", "REVIEWS"}, rows)
		},
	}
}

func newConnectionsGetCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <connection-id>",
		Short: "Show a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var conn connection
			if err := client.DoJSON(http.MethodGet, "/connections/"+args[0], nil, nil, &conn); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), conn)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:               %s\n", conn.ID)
			fmt.Fprintf(out, "Name:             %s\n", conn.Name)
			fmt.Fprintf(out, "Type:             %s\n", conn.Type)
			fmt.Fprintf(out, "Reviews required: %d\n", conn.ReviewsRequired)
			if conn.Description != "" {
				fmt.Fprintf(out, "Description:      %s\n", conn.Description)
			}
			return nil
		},
	}
}

func newConnectionsCreateCmd(client *Client) *cobra.Command {
	var (
		name            string
		description     string
		connType        string
		reviewsRequired int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a connection (admin only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]interface{}{
				"name":            name,
				"description":     description,
				"type":            connType,
				"reviewsRequired": reviewsRequired,
			}
			var conn connection
			if err := client.DoJSON(http.MethodPost, "/connections", nil, body, &conn); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), conn)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created connection %s (%s)\n", conn.ID, conn.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Connection name")
	cmd.Flags().StringVar(&description, "description", "", "Connection description")
	cmd.Flags().StringVar(&connType, "type", "POSTGRESQL", "Datasource type (POSTGRESQL, MYSQL, KUBERNETES)")
	cmd.Flags().IntVar(&reviewsRequired, "reviews-required", 1, "Approvals required before execution")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
