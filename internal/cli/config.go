package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docbridge-io/confluence-md/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the confluence-md configuration.

Config file location: ~/.confluence-md/config.yaml

Subcommands:
  show    display the current configuration
  init    create a default config file
  set     change a setting
  path    print the config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: `Display the configuration as stored on disk, plus the state of the
CONFLUENCE_* environment variables that override it. Secrets stay
masked behind their ${VAR} references.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Create a default config file at ~/.confluence-md/config.yaml.

Fails when the file already exists; use --force to overwrite it.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting in the config file.

Supported keys:
  site.domain           Confluence site domain
  site.email            account email
  site.api_token        API token
  space.id              default space ID
  space.key             default space key
  http.timeout_seconds  request timeout
  http.max_retries      retry limit
  logging.level         trace, debug, info, warn or error
  logging.format        console, json or pretty

Examples:
  confluence-md config set site.domain example.atlassian.net
  confluence-md config set space.key DOCS`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		loader, err := configLoader()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			return
		}
		fmt.Println(loader.ConfigPath())
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func configLoader() (*config.Loader, error) {
	if cfgFile != "" {
		return config.NewLoaderWithPath(cfgFile), nil
	}
	return config.NewLoader()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := configLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if loader.Exists() {
		fmt.Fprintf(cmd.OutOrStdout(), "config file: %s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "config file: (using defaults)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	fmt.Fprintln(cmd.OutOrStdout(), "environment overrides:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	envVars := []struct {
		key   string
		value string
	}{
		{"CONFLUENCE_DOMAIN", os.Getenv("CONFLUENCE_DOMAIN")},
		{"CONFLUENCE_EMAIL", os.Getenv("CONFLUENCE_EMAIL")},
		{"CONFLUENCE_API_TOKEN", maskSecret(os.Getenv("CONFLUENCE_API_TOKEN"))},
		{"CONFLUENCE_SPACE_ID", os.Getenv("CONFLUENCE_SPACE_ID")},
		{"CONFLUENCE_SPACE_KEY", os.Getenv("CONFLUENCE_SPACE_KEY")},
		{"CONFLUENCE_LOG_LEVEL", os.Getenv("CONFLUENCE_LOG_LEVEL")},
	}
	for _, ev := range envVars {
		status := "(not set)"
		if ev.value != "" {
			status = ev.value
		}
		fmt.Fprintf(w, "  %s\t%s\n", ev.key, status)
	}
	w.Flush()

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := configLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("config file already exists: %s\nuse --force to overwrite it", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created config file: %s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := configLoader()
	if err != nil {
		return fmt.Errorf("failed to initialize config loader: %w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "site.domain":
		cfg.Site.Domain = value
	case "site.email":
		cfg.Site.Email = value
	case "site.api_token":
		cfg.Site.APIToken = value
	case "space.id":
		cfg.Space.ID = value
	case "space.key":
		cfg.Space.Key = value

	case "http.timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid timeout: %s", value)
		}
		cfg.HTTP.TimeoutSeconds = n

	case "http.max_retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retry limit: %s", value)
		}
		cfg.HTTP.MaxRetries = n

	case "logging.level":
		cfg.Logging.Level = value
	case "logging.format":
		cfg.Logging.Format = value

	default:
		return fmt.Errorf("unknown config key: %s\nrun \"confluence-md config set --help\" for the supported keys", key)
	}

	if err := cfg.Validate(); err != nil {
		// Partial configs are fine while setting up; only reject
		// values that can never be valid.
		if key == "logging.level" || key == "logging.format" {
			return fmt.Errorf("invalid value for %s: %s", key, value)
		}
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "set %s = %s\n", key, value)
	return nil
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
