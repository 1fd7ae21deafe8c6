package cmd

import (
	"candreg/config"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently effective configuration and the config file it was loaded from.

Values include defaults and CANDREG_* environment overrides. Passwords in the
sink URI are masked. This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  candreg config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		printConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), cfg)
		return nil
	},
}

func printConfig(out io.Writer, source string, cfg *config.Config) {
	if source == "" {
		source = "(none, defaults and environment only)"
	}
	fmt.Fprintln(out, "Config file loaded from:", source)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "sink.driver: %s\n", cfg.Sink.Driver)
	fmt.Fprintf(out, "sink.uri: %s\n", cfg.Sink.RedactedURI())
	fmt.Fprintf(out, "sink.database: %s\n", cfg.Sink.Database)
	fmt.Fprintf(out, "sink.collection: %s\n", cfg.Sink.Collection)
	fmt.Fprintf(out, "sink.timeout: %s\n", cfg.Sink.Timeout)
	fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "log.format: %s\n", cfg.Log.Format)
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
