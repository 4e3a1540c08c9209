package store

import (
	"errors"
	"fmt"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/parquet"
)

// ExecuteRunsExport writes the run history to a pair of Parquet files.
func ExecuteRunsExport(runs contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if runs == nil {
		return errors.New("run store is disabled. set --run-backend")
	}

	// Check if there's any data to export
	status, err := runs.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no estimate runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total estimate runs: %d\n", status.TotalRuns)
	fmt.Printf("Total standard times: %d\n", status.TotalBounds)

	records, err := runs.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve estimate runs: %w", err)
	}
	bounds, err := runs.GetAllStandardTimes()
	if err != nil {
		return fmt.Errorf("failed to retrieve standard times: %w", err)
	}

	runRows := parquet.ConvertRunRecords(records)
	runsFile := outputFile + ".estimate_runs.parquet"
	if err := parquet.WriteRowsFile(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write estimate runs: %w", err)
	}
	fmt.Printf("Exported %d estimate runs to: %s\n", len(runRows), runsFile)

	boundRows := parquet.ConvertStandardTimeRecords(bounds)
	boundsFile := outputFile + ".standard_times.parquet"
	if err := parquet.WriteRowsFile(boundRows, boundsFile); err != nil {
		return fmt.Errorf("failed to write standard times: %w", err)
	}
	fmt.Printf("Exported %d standard times to: %s\n", len(boundRows), boundsFile)

	return nil
}
