package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/diff"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/output"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/store"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [before.json after.json]",
	Short: "Compare two snapshots and report what changed",
	Long: `Compare two snapshot records and classify every entry as new, removed,
resized, or unchanged.

With no arguments, the two newest records in the store are compared,
older against newer. With two arguments, the named snapshot files are
compared in the given order. The report is written to the store and
printed in the selected output format.`,
	Args: diffArgs,
	RunE: runDiff,
}

var diffNoSave bool

func init() {
	diffCmd.Flags().BoolVar(&diffNoSave, "no-save", false, "print the report without writing it to the store")
	rootCmd.AddCommand(diffCmd)
}

// diffArgs accepts either no snapshot paths or exactly two.
func diffArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("expected no arguments or exactly two snapshot files, got %d", len(args))
	}
	return nil
}

// runDiff loads the two snapshots, computes the report, persists it, and
// prints it.
func runDiff(_ *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	st, err := store.New(storeDir())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	beforePath, afterPath, err := diffInputs(st, args)
	if err != nil {
		return err
	}

	printVerbose("before: %s", beforePath)
	printVerbose("after:  %s", afterPath)

	// Malformed input is the one hard stop: no partial diffing.
	before, err := store.LoadSnapshot(beforePath)
	if err != nil {
		return err
	}
	after, err := store.LoadSnapshot(afterPath)
	if err != nil {
		return err
	}

	if before.Equal(after) {
		printVerbose("snapshots are identical")
	}

	report := diff.Compute(before, after)

	if !diffNoSave {
		path, err := st.SaveReport(report)
		if err != nil {
			printError("couldn't write the report file: %v", err)
		} else {
			printVerbose("report: %s", path)
		}
	}

	formatter, err := output.Get(outputFormat())
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, &output.Result{
		Report: report,
		Before: beforePath,
		After:  afterPath,
	}); err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	fmt.Print(buf.String())
	return nil
}

// diffInputs resolves the before/after snapshot paths from the arguments or
// from the two newest records in the store.
func diffInputs(st *store.Store, args []string) (before, after string, err error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}

	before, after, err = st.LatestPair()
	if err != nil {
		if errors.Is(err, store.ErrNotEnoughRecords) {
			return "", "", fmt.Errorf("%w: take at least two snapshots first, or name two files", err)
		}
		return "", "", err
	}
	return before, after, nil
}
