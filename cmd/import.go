package cmd

import (
	"candreg/candidate"
	"candreg/config"
	"candreg/importer"
	"candreg/storage"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	importInputs []string
	importFormat string
	importDryRun bool
)

type importOptions struct {
	Inputs []string
	Format string
	DryRun bool
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse candidate files and insert every record into the configured store",
	Long: `Read source files with the parser for their format and insert each parsed
candidate as its own document into the configured store.

When --format is omitted, format is inferred from each input file extension.
Rows with the wrong number of fields are reported and skipped. A file that cannot
be read is reported and contributes no records; the remaining files are still imported.
The sink prints the generated id of every inserted document. Any insert failure
stops the import.`,
	Example: `
  # Import a CSV export
  candreg import -i "CandidateRegTest1 - Sheet1.csv"

  # Import several files of different formats
  candreg import -i candidates.csv -i candidates.json -i txttestfile1.txt

  # Treat a file without a known extension as line-delimited text
  candreg import -i export.dat --format text

  # Parse and print only, nothing is written
  candreg import -i candidates.json --dry-run
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		logger := newLogger(cmd.ErrOrStderr(), cfg.Log)

		return runImport(cmd.Context(), cmd.OutOrStdout(), logger, cfg.Sink, importOptions{
			Inputs: importInputs,
			Format: importFormat,
			DryRun: importDryRun,
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: "+strings.Join(importer.SupportedFormats(), "|")+" (optional, inferred from extension when omitted)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and print records without writing to the store")

	_ = importCmd.MarkFlagRequired("input")
}

func runImport(ctx context.Context, out io.Writer, logger *slog.Logger, sinkCfg config.SinkConfig, options importOptions) error {
	summary, err := importer.Run(ctx, options.Inputs, options.Format, logger)
	if err != nil {
		return err
	}

	if options.DryRun {
		if err := printRecords(out, summary.Records); err != nil {
			return err
		}
		printImportSummary(out, summary, 0)
		return nil
	}

	written := 0
	if len(summary.Records) > 0 {
		sink, err := storage.NewSink(sinkCfg)
		if err != nil {
			return err
		}
		ids, err := storage.NewWriter(sink, out, logger).WriteCandidates(ctx, summary.Records)
		if err != nil {
			return err
		}
		written = len(ids)
	} else {
		fmt.Fprintln(out, "No records parsed, nothing to write.")
	}

	printImportSummary(out, summary, written)
	return nil
}

func printImportSummary(out io.Writer, summary *importer.Summary, written int) {
	fmt.Fprintf(out, "Import completed. Files: %d, Files failed: %d, Records parsed: %d, Rows skipped: %d, Documents written: %d\n",
		summary.FilesProcessed,
		summary.FilesFailed,
		len(summary.Records),
		summary.RowsSkipped,
		written,
	)
}

func printRecords(out io.Writer, records []candidate.Record) error {
	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, strings.Join(candidate.FieldNames, "\t"))
	for _, record := range records {
		fmt.Fprintln(table, strings.Join(record.Fields(), "\t"))
	}
	if err := table.Flush(); err != nil {
		return fmt.Errorf("print records: %w", err)
	}
	return nil
}
