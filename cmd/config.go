package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage candreg configuration file values.",
	Long: `Create and display the candreg configuration file.

The configuration names the document store and logging behaviour:
- sink.driver / sink.uri / sink.database / sink.collection / sink.timeout
- log.level / log.format

Every key can be overridden by an environment variable with the CANDREG_ prefix,
for example CANDREG_SINK_URI. A .env file in the working directory is loaded first.`,
	Example: `
  # Create default config in $HOME/.candreg.yaml
  candreg config create

  # Show active config and source file
  candreg config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
