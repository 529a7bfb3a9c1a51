package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	attachComment string
	attachOutput  string
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Manage page attachments",
	Long: `Manage the attachments of a page.

Subcommands:
  upload     attach a local file to a page
  list       list a page's attachments
  download   download an attachment`,
}

var attachUploadCmd = &cobra.Command{
	Use:   "upload <page-id> <file>",
	Short: "Attach a local file to a page",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttachUpload,
}

var attachListCmd = &cobra.Command{
	Use:   "list <page-id>",
	Short: "List a page's attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttachList,
}

var attachDownloadCmd = &cobra.Command{
	Use:   "download <page-id> <name>",
	Short: "Download an attachment by name",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttachDownload,
}

func init() {
	attachUploadCmd.Flags().StringVar(&attachComment, "comment", "", "attachment comment")
	attachDownloadCmd.Flags().StringVarP(&attachOutput, "output", "o", "", "output file path (default: the attachment name)")

	attachCmd.AddCommand(attachUploadCmd)
	attachCmd.AddCommand(attachListCmd)
	attachCmd.AddCommand(attachDownloadCmd)

	rootCmd.AddCommand(attachCmd)
}

func runAttachUpload(cmd *cobra.Command, args []string) error {
	pageID, filePath := args[0], args[1]
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", filePath)
	}

	_, _, client, err := setup()
	if err != nil {
		return err
	}

	if err := client.UploadAttachment(cmd.Context(), pageID, filePath, attachComment); err != nil {
		return fmt.Errorf("failed to upload attachment: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s to page %s\n", filepath.Base(filePath), pageID)
	return nil
}

func runAttachList(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	attachments, err := client.ListAttachments(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	if len(attachments) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no attachments")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSIZE")
	for _, attachment := range attachments {
		fmt.Fprintf(w, "%s\t%s\t%d\n", attachment.Title, attachment.MediaType, attachment.FileSize)
	}
	w.Flush()
	return nil
}

func runAttachDownload(cmd *cobra.Command, args []string) error {
	pageID, name := args[0], args[1]

	_, _, client, err := setup()
	if err != nil {
		return err
	}

	attachments, err := client.ListAttachments(cmd.Context(), pageID)
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	for _, attachment := range attachments {
		if attachment.Title != name {
			continue
		}
		if attachment.DownloadLink == "" {
			return fmt.Errorf("attachment %q has no download link", name)
		}

		outPath := attachOutput
		if outPath == "" {
			outPath = name
		}
		file, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer file.Close()

		if err := client.DownloadAttachment(cmd.Context(), attachment.DownloadLink, file); err != nil {
			return fmt.Errorf("failed to download attachment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s\n", outPath)
		return nil
	}

	return fmt.Errorf("no attachment named %q on page %s", name, pageID)
}
