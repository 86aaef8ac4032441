package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the current shopctl configuration.

Every key can be overridden with an environment variable, for example
SHOPCTL_API_BASE_URL for api.base_url.

Examples:
  shopctl config                # Show all config
  shopctl config --path         # Show config file path
  shopctl config --json         # Output as JSON`,
	Annotations: map[string]string{annotationOffline: "true"},
	Args:        cobra.NoArgs,
	RunE:        runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "show config file path")
	addJSONFlag(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	showPath, _ := cmd.Flags().GetBool("path")

	if showPath {
		if cfg.File == "" {
			printer.Info("No config file found (using defaults)")
		} else {
			printer.Info("Config file: %s", cfg.File)
		}
		return nil
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), cfg)
	}

	printer.Header("Current Configuration")

	publicKey := cfg.Payment.PublicKey
	if publicKey == "" {
		publicKey = "(not set)"
	}

	table := printer.NewTable("KEY", "VALUE")
	table.AddRow([]string{"api.base_url", cfg.API.BaseURL})
	table.AddRow([]string{"api.timeout", cfg.API.Timeout.String()})
	table.AddRow([]string{"api.rate_limit", fmt.Sprintf("%v", cfg.API.RateLimit)})
	table.AddRow([]string{"api.burst", fmt.Sprintf("%d", cfg.API.Burst)})
	table.AddRow([]string{"payment.public_key", publicKey})
	table.AddRow([]string{"session.file", cfg.Session.File})
	table.AddRow([]string{"cache.blog_ttl", cfg.Cache.BlogTTL.String()})
	table.AddRow([]string{"logging.level", cfg.Logging.Level})
	table.AddRow([]string{"logging.format", cfg.Logging.Format})
	table.AddRow([]string{"output.colors", fmt.Sprintf("%v", cfg.Output.Colors)})
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintln(printer.Out())
	printer.Info("Environment prefix: %s_", config.EnvPrefix)
	return nil
}
