package cmd

import (
	"github.com/huangsam/leadtime/core"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/outwriter"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/spf13/cobra"
)

// tableCmd prints the normalized observation table.
var tableCmd = &cobra.Command{
	Use:   "table [input]",
	Short: "Print or convert the observation table",
	Long: `Load observations from any supported source and write them sorted by cycle,
forecast hour and arrival.

The csv, json, parquet and xlsx outputs use the start_time, forecast_hour and time
columns, so they can be read back by every other command.

Examples:
  # Show stored messages of one system as a table
  leadtime table store --system ecmwf --start-time 2025030100/2025030300

  # Convert an XLSX sheet to Parquet
  leadtime table messages.xlsx --output parquet --output-file messages.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src, err := table.NewSource(cfg, storeManager)
		if err != nil {
			contract.LogFatal("Invalid observation source", err)
		}
		if err := core.ExecuteTable(rootCtx, cfg, src, outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Failed to write table", err)
		}
	},
}

// gridCmd prints the cycle by forecast hour arrival grid.
var gridCmd = &cobra.Command{
	Use:   "grid [input]",
	Short: "Show arrival clocks as a cycle by forecast hour grid",
	Long: `Render one row per cycle and one column per forecast hour, each cell holding the
arrival clock HH:MM:SS after the cycle start.

In text output, cells are colored by the quartile of their column: green for the
fastest quarter, yellow above the median and red for the slowest quarter.

Examples:
  # Grid of the last week of 00 UTC cycles
  leadtime grid messages.csv --start-time 2025030300/2025031000

  # Save the full grid for a spreadsheet
  leadtime grid messages.csv --output xlsx --output-file grid.xlsx`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src, err := table.NewSource(cfg, storeManager)
		if err != nil {
			contract.LogFatal("Invalid observation source", err)
		}
		if err := core.ExecuteGrid(rootCtx, cfg, src, outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Failed to write grid", err)
		}
	},
}
