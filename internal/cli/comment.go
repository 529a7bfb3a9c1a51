package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/storage"
)

var commentReplyTo string

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Work with page comments",
	Long: `Work with the footer comments of a page.

Subcommands:
  list   list a page's footer comments
  add    add a footer comment`,
}

var commentListCmd = &cobra.Command{
	Use:   "list <page-id>",
	Short: "List a page's footer comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentList,
}

var commentAddCmd = &cobra.Command{
	Use:   "add <page-id> <text>",
	Short: "Add a footer comment",
	Long: `Add a footer comment to a page. The text is Markdown and is
converted before upload. Use --reply-to to thread the comment under
an existing one.`,
	Args: cobra.ExactArgs(2),
	RunE: runCommentAdd,
}

func init() {
	commentAddCmd.Flags().StringVar(&commentReplyTo, "reply-to", "", "parent comment ID")

	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)

	rootCmd.AddCommand(commentCmd)
}

func runCommentList(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	comments, err := client.ListFooterComments(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list comments: %w", err)
	}

	if len(comments) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no comments")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPARENT\tBODY")
	for _, comment := range comments {
		body := ""
		if comment.Body != nil && comment.Body.Storage != nil {
			body = comment.Body.Storage.Value
		}
		body = truncate(body, 60)
		fmt.Fprintf(w, "%s\t%s\t%s\n", comment.ID, comment.ParentID, body)
	}
	w.Flush()
	return nil
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	body := storage.NewConverter().Convert(args[1])
	comment, err := client.AddFooterComment(cmd.Context(), args[0], body, commentReplyTo)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added comment %s\n", comment.ID)
	return nil
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis. Counting runes keeps multi-byte characters intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
