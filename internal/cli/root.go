// Package cli implements the confluence-md command tree.
package cli

import (
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/spf13/cobra"

	"github.com/docbridge-io/confluence-md/internal/config"
	"github.com/docbridge-io/confluence-md/internal/confluence"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "confluence-md",
	Short: "Convert Markdown and manage Confluence content",
	Long: `confluence-md converts Markdown documents to Confluence storage
format and publishes them to a Confluence Cloud site.

Beyond conversion it covers the day-to-day document workflows:
creating and updating pages, bulk imports from CSV manifests,
find/replace sweeps, and space administration.

Configuration lives in ~/.confluence-md/config.yaml; every setting
can also be supplied through CONFLUENCE_* environment variables.

Examples:
  confluence-md convert README.md
  confluence-md publish docs/guide.md
  confluence-md page get 12345
  confluence-md bulk create-csv pages.csv --space-id 100`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string shown by --version and the
// version command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ~/.confluence-md/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// loadConfig loads the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	var loader *config.Loader
	if cfgFile != "" {
		loader = config.NewLoaderWithPath(cfgFile)
	} else {
		var err error
		loader, err = config.NewLoader()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize config loader: %w", err)
		}
	}
	return loader.Load()
}

// newLogger builds the root logger from the logging configuration.
// --verbose forces debug level.
func newLogger(cfg *config.Config) glog.Logger {
	level := glog.Info
	switch cfg.Logging.Level {
	case "trace":
		level = glog.Trace
	case "debug":
		level = glog.Debug
	case "warn":
		level = glog.Warn
	case "error":
		level = glog.Error
	}
	if verbose {
		level = glog.Debug
	}

	opts := []glog.Option{glog.WithLevel(level)}
	switch cfg.Logging.Format {
	case "json":
		opts = append(opts, glog.WithLoggerTypeJSON())
	case "pretty":
		opts = append(opts, glog.WithLoggerTypePretty())
	default:
		opts = append(opts, glog.WithLoggerTypeConsole())
	}

	return glog.NewLogger(opts...)
}

// newClient builds a Confluence client from the configuration.
func newClient(cfg *config.Config, logger glog.Logger) (*confluence.Client, error) {
	return confluence.New(confluence.Config{
		Domain:     cfg.Site.Domain,
		Email:      cfg.Site.Email,
		APIToken:   cfg.Site.APIToken,
		Timeout:    time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.HTTP.MaxRetries,
		Logger:     logger,
	})
}

// setup loads configuration and wires the client for commands that
// talk to the site.
func setup() (*config.Config, glog.Logger, *confluence.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, client, nil
}

// resolveSpaceID turns an explicit flag, a configured default, or a
// space key into a space ID.
func resolveSpaceID(cmd *cobra.Command, cfg *config.Config, client *confluence.Client, spaceID, spaceKey string) (string, error) {
	if spaceID != "" {
		return spaceID, nil
	}
	if spaceKey == "" {
		spaceID = cfg.Space.ID
		spaceKey = cfg.Space.Key
	}
	if spaceID != "" {
		return spaceID, nil
	}
	if spaceKey == "" {
		return "", fmt.Errorf("no space given: use --space-id or --space-key, or set a default in the config")
	}

	space, err := client.GetSpaceByKey(cmd.Context(), spaceKey)
	if err != nil {
		return "", fmt.Errorf("failed to resolve space %q: %w", spaceKey, err)
	}
	return space.ID, nil
}
