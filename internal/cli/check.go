package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/confluence"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the connection to Confluence",
	Long: `Verify that the configured site, credentials and default space
work by making a minimal API request.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration is incomplete: %w", err)
	}

	logger := newLogger(cfg)
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "site: %s\n", cfg.Site.Domain)

	if _, err := client.ListSpaces(cmd.Context(), 1); err != nil {
		if confluence.IsAuthError(err) {
			return fmt.Errorf("authentication failed, check email and API token: %w", err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Fprintln(out, "connection: ok")

	if cfg.Space.Key != "" {
		space, err := client.GetSpaceByKey(cmd.Context(), cfg.Space.Key)
		if err != nil {
			return fmt.Errorf("default space %q not reachable: %w", cfg.Space.Key, err)
		}
		fmt.Fprintf(out, "default space: %s (%s)\n", space.Key, space.ID)
	}

	return nil
}
