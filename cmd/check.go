package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/leadtime/core"
	"github.com/huangsam/leadtime/internal/outwriter"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/spf13/cobra"
)

// checkCmd focused on operational delay monitoring.
var checkCmd = &cobra.Command{
	Use:   "check [input]",
	Short: "Flag late or missing products of one cycle (fails on abnormal delays)",
	Long: `Classify every configured forecast hour of one cycle against its standard time window.

Each product is early, on time, late, missing (nothing arrived and the window has closed)
or pending (nothing arrived yet but the window is still open). The command exits with a
non-zero code when any product is late or missing, so it can drive alerts.

Standard times come from --standard-times, a file written by 'leadtime estimate'. Without it
they are estimated from the cycles before the checked one.

Examples:
  # Check a cycle against saved standard times
  leadtime check messages.csv --cycle 2025031000 --standard-times standard_times.json

  # Estimate from history and export gauges for the node-exporter textfile collector
  leadtime check messages.csv --cycle 2025031000 --textfile /var/lib/node_exporter/leadtime.prom

  # Re-check whenever the table is updated
  leadtime check messages.csv --cycle 2025031000 --standard-times standard_times.json --watch`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		src, err := table.NewSource(cfg, storeManager)
		if err != nil {
			return err
		}
		w := outwriter.NewOutWriter()
		if cfg.Watch {
			ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return core.WatchCheck(ctx, cfg, src, w)
		}
		return core.ExecuteCheck(rootCtx, cfg, src, w)
	},
}
