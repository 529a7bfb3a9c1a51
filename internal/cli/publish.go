package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/confluence"
	"github.com/docbridge-io/confluence-md/internal/storage"
)

var publishMessage string

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish a Markdown document to Confluence",
	Long: `Publish a Markdown document, creating or updating its page.

The document's front matter drives the whole workflow:

  title:      page title (falls back to the first heading)
  page_id:    update this page instead of creating one
  space_id:   target space (or space_key)
  parent_id:  parent page for new pages
  labels:     labels to attach
  editor: v2  create the page with the new editor
  custom:     extra keys stored as content properties

A page that already exists with the same title in the target space
is updated rather than duplicated.

Examples:
  confluence-md publish docs/guide.md
  confluence-md publish docs/guide.md --message "refresh screenshots"`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishMessage, "message", "", "version comment for updates")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	cfg, logger, client, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	body := storage.NewConverter().Convert(doc.Body)
	title := doc.Title()

	var page *confluence.Page
	switch {
	case doc.Meta.PageID != "":
		page, err = updateExisting(cmd, client, doc.Meta.PageID, title, body)
		if err != nil {
			return err
		}

	default:
		spaceID, err := resolveSpaceID(cmd, cfg, client, doc.Meta.SpaceID, doc.Meta.SpaceKey)
		if err != nil {
			return err
		}

		existing, err := client.FindPageByTitle(ctx, spaceID, title)
		switch {
		case err == nil:
			logger.Debug("page exists, updating", "page_id", existing.ID, "title", title)
			page, err = updateExisting(cmd, client, existing.ID, title, body)
			if err != nil {
				return err
			}

		case confluence.IsNotFound(err):
			req := confluence.CreatePageRequest{
				SpaceID:  spaceID,
				Title:    title,
				ParentID: doc.Meta.ParentID,
				Body:     body,
			}
			if doc.Meta.Editor == "v2" {
				page, err = client.CreatePageModernEditor(ctx, req)
			} else {
				page, err = client.CreatePage(ctx, req)
			}
			if err != nil {
				return fmt.Errorf("failed to create page: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created page %s: %s\n", page.ID, page.Title)

		default:
			return fmt.Errorf("failed to look up page %q: %w", title, err)
		}
	}

	if len(doc.Meta.Labels) > 0 {
		if err := client.AddLabels(ctx, page.ID, doc.Meta.Labels); err != nil {
			return fmt.Errorf("failed to add labels: %w", err)
		}
	}

	for key, value := range doc.Meta.Custom {
		if err := client.SetContentProperty(ctx, page.ID, key, value); err != nil {
			return fmt.Errorf("failed to set property %q: %w", key, err)
		}
	}

	return nil
}

func updateExisting(cmd *cobra.Command, client *confluence.Client, pageID, title, body string) (*confluence.Page, error) {
	current, err := client.GetPage(cmd.Context(), pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	version := 1
	if current.Version != nil {
		version = current.Version.Number
	}

	page, err := client.UpdatePage(cmd.Context(), pageID, confluence.UpdatePageRequest{
		Title:   title,
		Body:    body,
		Version: version + 1,
		Message: publishMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "updated page %s to version %d\n", page.ID, version+1)
	return page, nil
}
