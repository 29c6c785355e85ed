package cli

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func newUsersCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
	}

	cmd.AddCommand(newUsersListCmd(client))
	cmd.AddCommand(newUsersCreateCmd(client))
	return cmd
}

func newUsersListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Data          []user `json:"data"`
				NextPageToken string `json:"nextPageToken"`
			}
			if err := client.DoJSON(http.MethodGet, "/users", nil, nil, &resp); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := make([][]string, len(resp.Data))
			for i, u := range resp.Data {
				rows[i] = []string{u.ID, u.Email, u.DisplayName, strconv.FormatBool(u.IsAdmin)}
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "EMAIL", "NAME", "ADMIN"}, rows)
		},
	}
}

func newUsersCreateCmd(client *Client) *cobra.Command {
	var (
		email       string
		displayName string
		admin       bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user (admin only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]interface{}{
				"email":       email,
				"displayName": displayName,
				"isAdmin":     admin,
			}
			var u user
			if err := client.DoJSON(http.MethodPost, "/users", nil, body, &u); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant admin rights")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
