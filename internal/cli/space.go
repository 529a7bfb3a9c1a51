package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/spaceadmin"
)

var (
	spaceKeyFlag  string
	spaceDesc     string
	spaceCloneKey string
)

var spaceCmd = &cobra.Command{
	Use:   "space",
	Short: "Manage spaces",
	Long: `Manage Confluence spaces.

Subcommands:
  list     list visible spaces
  create   create a project space with a standard page layout
  audit    report pages that need attention
  clone    copy a space's page tree into a new space`,
}

var spaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visible spaces",
	RunE:  runSpaceList,
}

var spaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project space",
	Long: `Create a project space and scaffold its standard pages: a home
page with Project Overview, Meeting Notes, Decisions and How-to
Guides sections under it.

The space key is derived from the name's initials unless --key is
given.

Examples:
  confluence-md space create "Apollo Program"
  confluence-md space create "Apollo Program" --key APOLLO`,
	Args: cobra.ExactArgs(1),
	RunE: runSpaceCreate,
}

var spaceAuditCmd = &cobra.Command{
	Use:   "audit <space-key>",
	Short: "Report pages that need attention",
	Long:  `Walk a space and report pages with no content and pages with no labels.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSpaceAudit,
}

var spaceCloneCmd = &cobra.Command{
	Use:   "clone <source-key> <new-name>",
	Short: "Copy a space's page tree into a new space",
	Args:  cobra.ExactArgs(2),
	RunE:  runSpaceClone,
}

func init() {
	spaceCreateCmd.Flags().StringVar(&spaceKeyFlag, "key", "", "space key (default: derived from the name)")
	spaceCreateCmd.Flags().StringVar(&spaceDesc, "description", "", "space description")

	spaceCloneCmd.Flags().StringVar(&spaceCloneKey, "key", "", "key for the new space (default: derived from the name)")

	spaceCmd.AddCommand(spaceListCmd)
	spaceCmd.AddCommand(spaceCreateCmd)
	spaceCmd.AddCommand(spaceAuditCmd)
	spaceCmd.AddCommand(spaceCloneCmd)

	rootCmd.AddCommand(spaceCmd)
}

func runSpaceList(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	spaces, err := client.ListSpaces(cmd.Context(), 0)
	if err != nil {
		return fmt.Errorf("failed to list spaces: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tID\tNAME\tSTATUS")
	for _, space := range spaces {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", space.Key, space.ID, space.Name, space.Status)
	}
	w.Flush()
	return nil
}

func runSpaceCreate(cmd *cobra.Command, args []string) error {
	_, logger, client, err := setup()
	if err != nil {
		return err
	}

	svc := spaceadmin.NewService(client, logger)
	space, err := svc.CreateProjectSpace(cmd.Context(), args[0], spaceKeyFlag, spaceDesc)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created space %s (%s)\n", space.Key, space.ID)
	return nil
}

func runSpaceAudit(cmd *cobra.Command, args []string) error {
	_, logger, client, err := setup()
	if err != nil {
		return err
	}

	svc := spaceadmin.NewService(client, logger)
	audit, err := svc.AuditSpace(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to audit space: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Space %s: %d pages\n", audit.SpaceKey, audit.PageCount)
	if len(audit.EmptyPages) > 0 {
		fmt.Fprintf(out, "\nPages with no content (%d):\n", len(audit.EmptyPages))
		for _, title := range audit.EmptyPages {
			fmt.Fprintf(out, "  %s\n", title)
		}
	}
	if len(audit.Unlabeled) > 0 {
		fmt.Fprintf(out, "\nPages with no labels (%d):\n", len(audit.Unlabeled))
		for _, title := range audit.Unlabeled {
			fmt.Fprintf(out, "  %s\n", title)
		}
	}
	return nil
}

func runSpaceClone(cmd *cobra.Command, args []string) error {
	_, logger, client, err := setup()
	if err != nil {
		return err
	}

	newKey := spaceCloneKey
	if newKey == "" {
		newKey = spaceadmin.KeyFromName(args[1])
	}

	svc := spaceadmin.NewService(client, logger)
	space, err := svc.CloneSpace(cmd.Context(), args[0], newKey, args[1])
	if err != nil {
		return fmt.Errorf("failed to clone space: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cloned %s into %s (%s)\n", args[0], space.Key, space.ID)
	return nil
}
