package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var syntaxCmd = &cobra.Command{
	Use:   "syntax",
	Short: "Show the supported Markdown syntax",
	Long:  `Show the Markdown constructs the converter understands and what they become in Confluence.`,
	Run:   runSyntax,
}

func init() {
	rootCmd.AddCommand(syntaxCmd)
}

func runSyntax(cmd *cobra.Command, args []string) {
	rows := []struct {
		markdown string
		result   string
	}{
		{"# Heading .. ###### Heading", "<h1> .. <h6>"},
		{"**bold**  __bold__", "<strong>"},
		{"*italic*  _italic_", "<em>"},
		{"***bold italic***", "<strong><em>"},
		{"`code`", "<code>"},
		{"```lang ... ```", "code block macro"},
		{"[text](url)", "<a href>"},
		{"![alt](url)", "<ac:image>"},
		{"- item  * item  + item", "<ul><li>"},
		{"1. item", "<ol><li>"},
		{"- [ ] task  - [x] task", "task list macro"},
		{"| a | b | with |---|---|", "<table>"},
		{"> quote", "<blockquote>"},
		{"--- or ***", "<hr/>"},
		{`::: info "Title" ... :::`, "info panel macro"},
		{`::: warning / note / success`, "matching panel macro"},
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Supported Markdown syntax:")
	fmt.Fprintln(cmd.OutOrStdout())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(w, "  %s\t%s\n", row.markdown, row.result)
	}
	w.Flush()
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), `Code block languages: common aliases (js, ts, py, rb, yml, sh) map to their Confluence names; unknown tags pass through and empty tags become "text".`)
}
