package cmd

import (
	"candreg/candidate"
	"candreg/config"
	"candreg/storage"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates stored in the configured store",
	Long: `Read every candidate document from the configured store and print it with
the id the store generated when it was inserted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		return runList(cmd.Context(), cmd.OutOrStdout(), cfg.Sink)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(ctx context.Context, out io.Writer, sinkCfg config.SinkConfig) error {
	sink, err := storage.NewSink(sinkCfg)
	if err != nil {
		return err
	}
	stored, err := storage.ListStored(ctx, sink)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		fmt.Fprintln(out, "No candidates stored.")
		return nil
	}

	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "id\t"+strings.Join(candidate.FieldNames, "\t"))
	for _, entry := range stored {
		fmt.Fprintln(table, entry.ID+"\t"+strings.Join(entry.Record.Fields(), "\t"))
	}
	if err := table.Flush(); err != nil {
		return fmt.Errorf("print candidates: %w", err)
	}
	fmt.Fprintf(out, "Candidates: %d\n", len(stored))
	return nil
}
