package cli

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func newRequestsCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"request", "req"},
		Short:   "Manage execution requests",
	}

	cmd.AddCommand(newRequestsListCmd(client))
	cmd.AddCommand(newRequestsGetCmd(client))
	cmd.AddCommand(newRequestsCreateCmd(client))
	cmd.AddCommand(newRequestsEditCmd(client))
	cmd.AddCommand(newRequestsCommentCmd(client))
	cmd.AddCommand(newRequestsReviewCmd(client))
	cmd.AddCommand(newRequestsExecuteCmd(client))
	return cmd
}

func newRequestsListCmd(client *Client) *cobra.Command {
	var (
		maxResults int
		pageToken  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List execution requests with their review status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			if maxResults > 0 {
				q.Set("max_results", fmt.Sprint(maxResults))
			}
			if pageToken != "" {
				q.Set("page_token", pageToken)
			}

			var resp struct {
				Data          []executionRequest `json:"data"`
				NextPageToken string             `json:"nextPageToken"`
			}
			if err := client.DoJSON(http.MethodGet, "/execution-requests", q, nil, &resp); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := make([][]string, len(resp.Data))
			for i, r := range resp.Data {
				rows[i] = []string{r.ID, r.ReviewStatus, r.Type, truncate(r.Title, 40), r.AuthorID}
			}
			if err := printTable(cmd.OutOrStdout(), []string{"ID", "STATUS", "TYPE", "TITLE", "AUTHOR"}, rows); err != nil {
				return err
			}
			if resp.NextPageToken != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nNext page: --page-token %s\n", resp.NextPageToken)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum results per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Page token from a previous list call")
	return cmd
}

func newRequestsGetCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <request-id>",
		Short: "Show a request with its full event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var detail executionRequestDetail
			if err := client.DoJSON(http.MethodGet, "/execution-requests/"+args[0], nil, nil, &detail); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), detail)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", detail.ID)
			fmt.Fprintf(out, "Title:       %s\n", detail.Title)
			fmt.Fprintf(out, "Status:      %s\n", detail.ReviewStatus)
			fmt.Fprintf(out, "Type:        %s\n", detail.Type)
			fmt.Fprintf(out, "Connection:  %s\n", detail.ConnectionID)
			fmt.Fprintf(out, "Author:      %s\n", detail.AuthorID)
			fmt.Fprintf(out, "Statement:   %s\n", detail.Statement)
			if len(detail.Events) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			rows := make([][]string, len(detail.Events))
			for i, e := range detail.Events {
				note := e.Comment
				if e.Action != "" {
					note = e.Action
					if e.Comment != "" {
						note += ": " + e.Comment
					}
				}
				rows[i] = []string{e.CreatedAt.Format("2006-01-02 15:04:05"), e.Type, e.AuthorID, truncate(note, 50)}
			}
			return printTable(out, []string{"TIME", "EVENT", "AUTHOR", "NOTE"}, rows)
		},
	}
}

func newRequestsCreateCmd(client *Client) *cobra.Command {
	var (
		connectionID string
		reqType      string
		title        string
		description  string
		statement    string
		readOnly     bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an execution request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]interface{}{
				"connectionId": connectionID,
				"type":         reqType,
				"title":        title,
				"description":  description,
				"statement":    statement,
				"readOnly":     readOnly,
			}
			var req executionRequest
			if err := client.DoJSON(http.MethodPost, "/execution-requests", nil, body, &req); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), req)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created request %s (%s)\n", req.ID, req.ReviewStatus)
			return nil
		},
	}

	cmd.Flags().StringVar(&connectionID, "connection", "", "Target connection id")
	cmd.Flags().StringVar(&reqType, "type", "QUERY", "Request type (QUERY or COMMAND)")
	cmd.Flags().StringVar(&title, "title", "", "Request title")
	cmd.Flags().StringVar(&description, "description", "", "Request description")
	cmd.Flags().StringVar(&statement, "statement", "", "SQL statement or command to run")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Mark the request as read-only")
	_ = cmd.MarkFlagRequired("connection")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("statement")
	return cmd
}

func newRequestsEditCmd(client *Client) *cobra.Command {
	var (
		title       string
		description string
		statement   string
	)

	cmd := &cobra.Command{
		Use:   "edit <request-id>",
		Short: "Edit a pending request (records an edit event)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{}
			if cmd.Flags().Changed("title") {
				body["title"] = title
			}
			if cmd.Flags().Changed("description") {
				body["description"] = description
			}
			if cmd.Flags().Changed("statement") {
				body["statement"] = statement
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to edit: pass --title, --description, or --statement")
			}

			var detail executionRequestDetail
			if err := client.DoJSON(http.MethodPatch, "/execution-requests/"+args[0], nil, body, &detail); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), detail)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated request %s (%s)\n", detail.ID, detail.ReviewStatus)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&statement, "statement", "", "New statement")
	return cmd
}

func newRequestsCommentCmd(client *Client) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "comment <request-id>",
		Short: "Add a comment to a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var evt requestEvent
			err := client.DoJSON(http.MethodPost, "/execution-requests/"+args[0]+"/comments", nil,
				map[string]string{"comment": message}, &evt)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), evt)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment %s added\n", evt.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Comment text")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newRequestsReviewCmd(client *Client) *cobra.Command {
	var (
		action  string
		comment string
	)

	cmd := &cobra.Command{
		Use:   "review <request-id>",
		Short: "Review a request (APPROVE, COMMENT, or REQUEST_CHANGE)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var evt requestEvent
			err := client.DoJSON(http.MethodPost, "/execution-requests/"+args[0]+"/reviews", nil,
				map[string]string{"action": action, "comment": comment}, &evt)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), evt)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review recorded: %s\n", evt.Action)
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "APPROVE", "Review action (APPROVE, COMMENT, REQUEST_CHANGE)")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Review comment")
	return cmd
}

func newRequestsExecuteCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "execute <request-id>",
		Short: "Execute an approved request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var evt requestEvent
			err := client.DoJSON(http.MethodPost, "/execution-requests/"+args[0]+"/execute", nil, nil, &evt)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), evt)
			}
			statement := evt.Query
			if statement == "" {
				statement = evt.Command
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Executed: %s\n", truncate(statement, 80))
			return nil
		},
	}
}
