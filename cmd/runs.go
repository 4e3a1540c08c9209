package cmd

import (
	"fmt"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/store"
	"github.com/huangsam/leadtime/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run store operations.
// Migrations pass initStores false so they can run on a fresh database.
func runsSetup(initStores bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := initLogging(); err != nil {
		return err
	}

	backend, err := contract.ParseBackend(viper.GetString("run-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("run-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if initStores {
		// No message store for runs commands
		if err := store.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
			return fmt.Errorf("failed to initialize run store: %w", err)
		}
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsCmd focused on estimate run history.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of estimate runs and their standard times",
	Long: `Manage the estimate run history used to follow standard times over time.

When --run-backend is set, every estimate run stores:
- Run metadata (UUID, seed, bootstrap settings, duration)
- The standard time window of every bucket, with its sample statistics

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export runs and standard times to Parquet
  migrate - Run database schema migrations
  clear   - Remove all run history

Examples:
  leadtime runs status --run-backend sqlite
  leadtime runs export --run-backend sqlite --output-file history`,
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about the estimate run history.

Displays:
- Backend type and connection status
- Total number of runs and stored standard times
- Last run ID, UUID and time
- Database table sizes

Examples:
  leadtime runs status --run-backend sqlite`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		runs := store.Manager.GetRunStore()
		if runs == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run store is disabled. set --run-backend"))
		}
		status, err := runs.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		store.PrintRunStatus(status)
	},
}

// runsExportCmd exports the run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for analytics",
	Long: `Export all stored estimate runs to Parquet.

Writes two files next to --output-file:
- <output-file>.estimate_runs.parquet  - one row per run
- <output-file>.standard_times.parquet - one row per bucket and run

Examples:
  leadtime runs export --run-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.standard_times.parquet') LIMIT 10"`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ExecuteRunsExport(store.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  leadtime runs migrate --run-backend postgresql --run-db-connect "host=db dbname=leadtime"

  # Rollback to initial state
  leadtime runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := store.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all estimate run history",
	Long: `Delete all stored estimate runs and standard times.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  leadtime runs export --run-backend sqlite --output-file backup
  leadtime runs clear --run-backend sqlite`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := cfg.RunDBConnect
		if dbPath == "" {
			dbPath = contract.GetRunDBFilePath()
		}
		if err := store.ClearRuns(cfg.RunBackend, dbPath, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}
