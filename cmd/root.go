/*
Copyright © 2026 The candreg Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"candreg/config"
	"candreg/internal/logging"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "CANDREG"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "candreg",
	Short: "Parse candidate registration files and store them as documents.",
	Long: `
**********************************************
*        CANDIDATE REGISTRATION IMPORT       *
**********************************************

This CLI parses candidate registration files into a common six-field record
(first name, last name, date of birth, party, identifier, position) and inserts
every record as its own document into the configured store (MongoDB, SQLite or
PostgreSQL).

Supported input formats:
- CSV with a header row: .csv
- JSON array of objects: .json
- Plain text, six comma-separated fields per line: .txt
- Excel with a header row: .xlsx, .xlsm
`,
	Example: `
  # Create configuration file
  candreg config create

  # Import a CSV export into the configured store
  candreg import -i "CandidateRegTest1 - Sheet1.csv"

  # Parse a text file without writing anything
  candreg import -i txttestfile1.txt --dry-run

  # Show what the configured store holds
  candreg list

  # Normalize a JSON file into a canonical CSV
  candreg convert -i candidates.json -o candidates.csv

  # Override the sink via environment (also read from ./.env)
  CANDREG_SINK_DRIVER=sqlite CANDREG_SINK_URI=./candidates.db candreg import -i candidates.csv
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.candreg.yaml, then ./.candreg.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	switch cmd.Name() {
	case "import", "list":
		return true
	default:
		return false
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is normal; variables may come from the environment.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".candreg")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults and CANDREG_* environment. Create one with: candreg config create")
	}
}

// newLogger configures logging from the active config. Diagnostics go to w so
// they never mix with the ids and summaries printed on stdout.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	return logging.Setup(w, cfg.Level, cfg.Format)
}
