package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/store"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored snapshot records",
	Long: `List the snapshot records in the store, newest first.

Each line shows the record filename, when it was written, and the size
of the record file on disk.`,
	RunE: runHistory,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove records older than the retention period",
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of records to show")

	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// runHistory lists stored snapshot records.
func runHistory(_ *cobra.Command, _ []string) error {
	st, err := store.New(storeDir())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	records, err := st.ListRecords(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		printInfo("No snapshot records in %s", st.Dir())
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORD\tWRITTEN\tSIZE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			r.Name,
			r.ModTime.Format("2006-01-02 15:04:05"),
			types.FormatSize(uint64(r.Size)))
	}
	return tw.Flush()
}

// runHistoryClean removes expired records and reports.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	st, err := store.New(storeDir())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	removed, err := st.Clean(viper.GetInt("store.retention_days"))
	if err != nil {
		return fmt.Errorf("failed to clean store: %w", err)
	}

	printInfo("Removed %d expired files", removed)
	return nil
}
