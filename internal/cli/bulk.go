package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/bulk"
	"github.com/docbridge-io/confluence-md/internal/storage"
)

var (
	bulkSpaceID  string
	bulkSpaceKey string
	bulkWorkers  int
	bulkFind     string
	bulkReplace  string
	bulkCQL      string
	bulkDryRun   bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Run batch operations",
	Long: `Run batch operations against a space.

Subcommands:
  create-csv   create a page tree from a CSV manifest
  update       update many pages from a CSV manifest
  replace      find/replace a string across matching pages`,
}

var bulkCreateCSVCmd = &cobra.Command{
	Use:   "create-csv <file>",
	Short: "Create pages from a CSV manifest",
	Long: `Create pages from a CSV manifest.

Each row is: title, parent_title, content, labels. Content is
Markdown and is converted before upload. parent_title may name a
page created by an earlier row or an existing page in the space.
Labels are semicolon separated. A header row starting with "title"
is skipped.

Failed rows are reported at the end; the run continues past them.

Example:
  confluence-md bulk create-csv pages.csv --space-key DOCS`,
	Args: cobra.ExactArgs(1),
	RunE: runBulkCreateCSV,
}

var bulkUpdateCmd = &cobra.Command{
	Use:   "update <file>",
	Short: "Update many pages from a CSV manifest",
	Long: `Update many pages from a CSV manifest.

Each row is: page_id, content, title, message. Title and message are
optional; an empty title keeps the current one. Content is Markdown
and is converted before upload. Updates run concurrently; tune the
pool with --workers.

Example:
  confluence-md bulk update updates.csv --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBulkUpdate,
}

var bulkReplaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Find/replace a string across matching pages",
	Long: `Replace a literal string on every page matched by a CQL query.

Use --dry-run first to see which pages would change.

Examples:
  confluence-md bulk replace --cql 'space = "DOCS"' --find old.host --replace new.host --dry-run
  confluence-md bulk replace --cql 'label = "api"' --find v1 --replace v2`,
	RunE: runBulkReplace,
}

func init() {
	bulkCreateCSVCmd.Flags().StringVar(&bulkSpaceID, "space-id", "", "target space ID")
	bulkCreateCSVCmd.Flags().StringVar(&bulkSpaceKey, "space-key", "", "target space key")

	bulkReplaceCmd.Flags().StringVar(&bulkCQL, "cql", "", "CQL query selecting the pages (required)")
	bulkReplaceCmd.Flags().StringVar(&bulkFind, "find", "", "string to find (required)")
	bulkReplaceCmd.Flags().StringVar(&bulkReplace, "replace", "", "replacement string")
	bulkReplaceCmd.Flags().BoolVar(&bulkDryRun, "dry-run", false, "report matches without changing anything")
	bulkReplaceCmd.MarkFlagRequired("cql")
	bulkReplaceCmd.MarkFlagRequired("find")

	bulkCmd.PersistentFlags().IntVar(&bulkWorkers, "workers", bulk.DefaultWorkers, "concurrent workers")

	bulkCmd.AddCommand(bulkCreateCSVCmd)
	bulkCmd.AddCommand(bulkUpdateCmd)
	bulkCmd.AddCommand(bulkReplaceCmd)

	rootCmd.AddCommand(bulkCmd)
}

func runBulkCreateCSV(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	cfg, logger, client, err := setup()
	if err != nil {
		return err
	}

	spaceID, err := resolveSpaceID(cmd, cfg, client, bulkSpaceID, bulkSpaceKey)
	if err != nil {
		return err
	}

	svc := bulk.NewService(client, storage.NewConverter(), logger, bulkWorkers)
	report, err := svc.CreatePagesFromCSV(cmd.Context(), spaceID, file)
	if err != nil {
		return err
	}

	printReport(cmd, report, "created")
	return nil
}

func runBulkUpdate(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	updates, err := bulk.ParseUpdateManifest(file)
	if err != nil {
		return err
	}

	_, logger, client, err := setup()
	if err != nil {
		return err
	}

	svc := bulk.NewService(client, storage.NewConverter(), logger, bulkWorkers)
	report := svc.UpdatePages(cmd.Context(), updates)

	printReport(cmd, report, "updated")
	return nil
}

func runBulkReplace(cmd *cobra.Command, args []string) error {
	_, logger, client, err := setup()
	if err != nil {
		return err
	}

	svc := bulk.NewService(client, storage.NewConverter(), logger, bulkWorkers)
	report, err := svc.FindReplace(cmd.Context(), bulkCQL, bulkFind, bulkReplace, bulkDryRun)
	if err != nil {
		return err
	}

	verb := "changed"
	if bulkDryRun {
		verb = "would change"
	}
	printReport(cmd, report, verb)
	return nil
}

func printReport(cmd *cobra.Command, report *bulk.Report, verb string) {
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s %d, failed %d\n",
		report.RunID, verb, report.Succeeded, report.Failed())
	for _, failure := range report.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", failure.Item, failure.Err)
	}
}
