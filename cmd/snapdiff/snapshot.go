package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/config"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/scanner"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// timeRounding is the precision used when printing elapsed scan time.
const timeRounding = time.Millisecond

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Take a point-in-time inventory of the target locations",
	Long: `Take a snapshot of the immediate children of every target directory
and write it to the store as a timestamped JSON record.

In auto mode (the default) the targets are locations that installers and
applications commonly write to, derived from the environment. With
--manual the targets come from the config file instead.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

// runSnapshot takes one snapshot and persists it.
func runSnapshot(_ *cobra.Command, _ []string) error {
	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	targets, err := resolveTargets()
	if err != nil {
		return err
	}

	if viper.GetBool("manual") {
		printInfo("Manual scan: %d targets", len(targets))
	} else {
		printInfo("Auto scan: %d targets", len(targets))
	}
	for _, target := range targets {
		printVerbose("target: %s", target)
	}

	// Sequential mode honors Ctrl-C between targets; a scan already in
	// flight runs to completion either way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scanner.New(scanner.Options{
		Targets:    targets,
		Sequential: viper.GetBool("sequential"),
		OnTarget: func(completed, total int) {
			printVerbose("%d out of %d targets done", completed, total)
		},
	})

	result, scanErr := s.Scan(ctx)

	for _, e := range result.Errors {
		printWarning("%s: %s", e.Path, e.Error)
	}

	st, err := store.New(storeDir())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	path, err := st.SaveSnapshot(result.Snapshot)
	if err != nil {
		// Persistence failure is terminal for this run but must not panic.
		printError("couldn't write the snapshot record: %v", err)
		return err
	}

	printInfo("Recorded %s in %s", humanCount(result.Snapshot.EntryCount), result.Elapsed.Round(timeRounding))
	printInfo("Snapshot: %s", path)

	if removed, err := st.Clean(viper.GetInt("store.retention_days")); err == nil && removed > 0 {
		printVerbose("removed %d expired records", removed)
	}

	if scanErr != nil && errors.Is(scanErr, context.Canceled) {
		printWarning("scan interrupted; remaining targets recorded as empty")
	}

	return nil
}

// resolveTargets builds the target list from the effective configuration.
func resolveTargets() ([]string, error) {
	if viper.GetBool("manual") {
		targets, err := config.ManualTargets(viper.GetStringSlice("targets"))
		if err != nil {
			if errors.Is(err, config.ErrNoTargets) {
				return nil, fmt.Errorf("manual mode: %w (add a targets list to the config file)", err)
			}
			return nil, err
		}
		return targets, nil
	}
	return config.AutoTargets(), nil
}
