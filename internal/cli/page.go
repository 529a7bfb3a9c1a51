package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/confluence"
	"github.com/docbridge-io/confluence-md/internal/storage"
)

var (
	pageSpaceID  string
	pageSpaceKey string
	pageParentID string
	pageTitle    string
	pageMessage  string
	pageRaw      bool
	pageModern   bool
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Work with individual pages",
	Long: `Work with individual Confluence pages.

Subcommands:
  create    create a page from a Markdown file
  get       fetch a page and print its content as storage format
  update    replace a page's content from a Markdown file
  delete    delete a page`,
}

var pageCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a page from a Markdown file",
	Long: `Create a page from a Markdown file.

The space comes from --space-id, --space-key, the document's front
matter, or the configured default, in that order. The title comes
from --title, the front matter, the first heading, or the file name.

Examples:
  confluence-md page create guide.md --space-key DOCS
  confluence-md page create guide.md --space-id 100 --parent-id 12345`,
	Args: cobra.ExactArgs(1),
	RunE: runPageCreate,
}

var pageGetCmd = &cobra.Command{
	Use:   "get <page-id>",
	Short: "Fetch a page",
	Long: `Fetch a page and print its title, version and storage format body.

With --raw only the body is printed, suitable for piping.`,
	Args: cobra.ExactArgs(1),
	RunE: runPageGet,
}

var pageUpdateCmd = &cobra.Command{
	Use:   "update <page-id> <file>",
	Short: "Replace a page's content from a Markdown file",
	Args:  cobra.ExactArgs(2),
	RunE:  runPageUpdate,
}

var pageDeleteCmd = &cobra.Command{
	Use:   "delete <page-id>",
	Short: "Delete a page",
	Long:  `Delete a page. The page is moved to the space trash.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPageDelete,
}

func init() {
	pageCreateCmd.Flags().StringVar(&pageSpaceID, "space-id", "", "target space ID")
	pageCreateCmd.Flags().StringVar(&pageSpaceKey, "space-key", "", "target space key")
	pageCreateCmd.Flags().StringVar(&pageParentID, "parent-id", "", "parent page ID")
	pageCreateCmd.Flags().StringVar(&pageTitle, "title", "", "page title (default: from the document)")
	pageCreateCmd.Flags().BoolVar(&pageModern, "modern-editor", false, "create the page with the modern editor appearance")

	pageGetCmd.Flags().BoolVar(&pageRaw, "raw", false, "print only the storage format body")

	pageUpdateCmd.Flags().StringVar(&pageTitle, "title", "", "new page title (default: keep current)")
	pageUpdateCmd.Flags().StringVar(&pageMessage, "message", "", "version comment")

	pageCmd.AddCommand(pageCreateCmd)
	pageCmd.AddCommand(pageGetCmd)
	pageCmd.AddCommand(pageUpdateCmd)
	pageCmd.AddCommand(pageDeleteCmd)

	rootCmd.AddCommand(pageCmd)
}

func runPageCreate(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	cfg, _, client, err := setup()
	if err != nil {
		return err
	}

	spaceID := pageSpaceID
	spaceKey := pageSpaceKey
	if spaceID == "" && spaceKey == "" {
		spaceID = doc.Meta.SpaceID
		spaceKey = doc.Meta.SpaceKey
	}
	spaceID, err = resolveSpaceID(cmd, cfg, client, spaceID, spaceKey)
	if err != nil {
		return err
	}

	title := pageTitle
	if title == "" {
		title = doc.Title()
	}
	parentID := pageParentID
	if parentID == "" {
		parentID = doc.Meta.ParentID
	}

	req := confluence.CreatePageRequest{
		SpaceID:  spaceID,
		Title:    title,
		ParentID: parentID,
		Body:     storage.NewConverter().Convert(doc.Body),
	}

	var page *confluence.Page
	if pageModern {
		page, err = client.CreatePageModernEditor(cmd.Context(), req)
	} else {
		page, err = client.CreatePage(cmd.Context(), req)
	}
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created page %s: %s\n", page.ID, page.Title)
	return nil
}

func runPageGet(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	page, err := client.GetPage(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	if pageRaw {
		fmt.Fprintln(cmd.OutOrStdout(), page.StorageValue())
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Title:   %s\n", page.Title)
	if page.Version != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %d\n", page.Version.Number)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Space:   %s\n\n", page.SpaceID)
	fmt.Fprintln(cmd.OutOrStdout(), page.StorageValue())
	return nil
}

func runPageUpdate(cmd *cobra.Command, args []string) error {
	pageID := args[0]
	doc, err := readDocument(cmd, args[1])
	if err != nil {
		return err
	}

	_, _, client, err := setup()
	if err != nil {
		return err
	}

	current, err := client.GetPage(cmd.Context(), pageID)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	title := pageTitle
	if title == "" {
		title = current.Title
	}
	version := 1
	if current.Version != nil {
		version = current.Version.Number
	}

	page, err := client.UpdatePage(cmd.Context(), pageID, confluence.UpdatePageRequest{
		Title:   title,
		Body:    storage.NewConverter().Convert(doc.Body),
		Version: version + 1,
		Message: pageMessage,
	})
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "updated page %s to version %d\n", page.ID, version+1)
	return nil
}

func runPageDelete(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	if err := client.DeletePage(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted page %s\n", args[0])
	return nil
}
