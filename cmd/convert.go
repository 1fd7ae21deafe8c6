package cmd

import (
	"candreg/config"
	"candreg/importer"
	"candreg/output"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	convertInput        string
	convertOutput       string
	convertFormat       string
	convertOutputFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a candidate file into a canonical CSV or Excel file",
	Long: `Parse one candidate file with the parser for its format and write the records to
a file with the canonical columns first_name, last_name, date_of_birth, party,
identifier, position. Nothing is written to the configured store.

Output format can be selected explicitly via --output-format or inferred from --output extension.`,
	Example: `
  # JSON array to CSV
  candreg convert -i candidates.json -o candidates.csv

  # Line-delimited text to Excel
  candreg convert -i txttestfile1.txt -o candidates.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd.ErrOrStderr(), config.LogConfig{
			Level:  viper.GetString(config.KeyLogLevel),
			Format: viper.GetString(config.KeyLogFormat),
		})
		return runConvert(cmd.Context(), cmd.OutOrStdout(), logger, convertInput, convertFormat, convertOutput, convertOutputFormat)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Input file path")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Input format: "+strings.Join(importer.SupportedFormats(), "|")+" (optional, inferred from extension)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file path")
	convertCmd.Flags().StringVar(&convertOutputFormat, "output-format", "", "Output format: csv|excel (optional, inferred from output extension)")

	_ = convertCmd.MarkFlagRequired("input")
	_ = convertCmd.MarkFlagRequired("output")
}

func runConvert(ctx context.Context, out io.Writer, logger *slog.Logger, input, inputFormat, outputPath, outputFormat string) error {
	format, err := importer.ResolveFormat(input, inputFormat)
	if err != nil {
		return err
	}
	parser, err := importer.ParserForFormat(format, logger)
	if err != nil {
		return err
	}

	selector := importer.NewSelector(logger)
	selector.SetParser(parser)
	result, err := selector.Parse(ctx, input)
	if err != nil {
		return err
	}

	if strings.TrimSpace(outputFormat) == "" {
		outputFormat = output.DetectFormat(outputPath)
	}
	writer, err := output.WriterForFormat(outputFormat)
	if err != nil {
		return err
	}
	if err := writer.Write(outputPath, result.Records); err != nil {
		return err
	}

	fmt.Fprintf(out, "Convert completed. Records: %d, Rows skipped: %d, Format: %s, File: %s\n",
		len(result.Records), len(result.Skipped), outputFormat, outputPath)
	return nil
}
