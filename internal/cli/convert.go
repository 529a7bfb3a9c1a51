package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/markdown"
	"github.com/docbridge-io/confluence-md/internal/storage"
)

var convertOutput string

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a Markdown file to Confluence storage format",
	Long: `Convert a Markdown file to Confluence storage format.

The converted XHTML is written to stdout unless --output is given.
With no file argument, or with "-", Markdown is read from stdin. A
YAML front matter block, if present, is stripped before conversion.

Examples:
  confluence-md convert README.md
  confluence-md convert README.md -o page.xhtml
  cat notes.md | confluence-md convert`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output file path (default: stdout)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	doc, err := readDocument(cmd, path)
	if err != nil {
		return err
	}

	result := storage.NewConverter().Convert(doc.Body)

	if convertOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	}
	if err := os.WriteFile(convertOutput, []byte(result), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", convertOutput)
	return nil
}

// readDocument loads a Markdown document from a file or, for "-",
// from stdin.
func readDocument(cmd *cobra.Command, path string) (*markdown.Document, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return markdown.Parse(data)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return markdown.Load(path)
}
