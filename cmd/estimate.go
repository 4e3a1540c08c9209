package cmd

import (
	"github.com/huangsam/leadtime/core"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/outwriter"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/spf13/cobra"
)

// estimateCmd computes standard times from the observation table.
var estimateCmd = &cobra.Command{
	Use:   "estimate [input]",
	Short: "Estimate standard arrival windows per start hour and forecast hour",
	Long: `Estimate the expected arrival window of every configured forecast product.

Observations are grouped into buckets by cycle start hour and forecast hour. For every
bucket the mean arrival clock is bootstrapped and the central confidence interval of the
bootstrap distribution becomes the standard time window.

Buckets come from start_hours in .leadtime.yaml or from --buckets.

Examples:
  # Estimate from a CSV table with the buckets of the config file
  leadtime estimate messages.csv

  # Reproducible run with explicit buckets, written as JSON for the check command
  leadtime estimate messages.csv --buckets "00=0,3,6;12=0,6" --seed 42 --output json --output-file standard_times.json

  # Estimate from stored messages of the last ten days and track the run
  leadtime estimate store --system ecmwf --start-time 2025030100/2025031000 --run-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: estimateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src, err := table.NewSource(cfg, storeManager)
		if err != nil {
			contract.LogFatal("Invalid observation source", err)
		}
		if err := core.ExecuteEstimate(rootCtx, cfg, src, storeManager, outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Estimate failed", err)
		}
	},
}
