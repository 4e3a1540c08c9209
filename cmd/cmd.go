// Package cmd defines the command-line interface for leadtime.
package cmd

import (
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)
	runsCmd.AddCommand(runsClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("log-level", "warn", "Log level: debug or info or warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	flags.String("deadline", "", "Abort the run after this Go duration (e.g. 90s)")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet or xlsx")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("emoji", "no", "Enable emojis in output headers (yes/no/true/false/1/0)")

	flags.String("input", "", "Observation table (csv, json, parquet, xlsx, s3:// URL) or 'store'")
	flags.String("input-format", "", "Input format when it cannot be inferred: csv or json or parquet or xlsx or store")
	flags.String("system", "", "Forecast system of the stored messages (e.g. ecmwf)")
	flags.String("production-stream", contract.DefaultStream, "Production stream of the stored messages")
	flags.String("production-type", contract.DefaultProductType, "Product type of the stored messages")
	flags.String("production-name", contract.DefaultProductName, "Product name of the stored messages")
	flags.String("start-time", "", "Cycles to use: YYYYMMDDHH, a range A/B or a list A,B,C")
	flags.String("start-time-freq", contract.DefaultCycleFrequency, "Step of a start time range: D, 12H or a Go duration")
	flags.String("s3-region", "", "Region of s3:// inputs")
	flags.String("s3-endpoint", "", "Custom S3 endpoint, e.g. MinIO")
	flags.String("s3-access-key", "", "S3 access key (prefer LEADTIME_S3_ACCESS_KEY)")
	flags.String("s3-secret-key", "", "S3 secret key (prefer LEADTIME_S3_SECRET_KEY)")
	flags.Bool("s3-path-style", false, "Use path-style S3 addressing")

	flags.Int("bootstrap-count", contract.DefaultBootstrapCount, "Number of bootstrap replicates")
	flags.Int("bootstrap-sample", contract.DefaultBootstrapSample, "Draws per bootstrap replicate")
	flags.Float64("quantile", contract.DefaultQuantile, "Central confidence level between 0 and 1")
	flags.Int64("seed", contract.DefaultSeed, "Random seed (negative draws one per run)")
	flags.Bool("skip-empty", false, "Skip buckets without observations instead of failing")
	flags.String("buckets", "", "Buckets to estimate, e.g. '00=0,3,6;12=0,6' (overrides start_hours)")

	flags.String("message-backend", string(schema.SQLiteBackend), "Message store backend: sqlite or mysql or postgresql or none")
	flags.String("message-db-connect", "", "Message store connection string or SQLite path")
	flags.String("run-backend", "", "Estimate run tracking backend: sqlite or mysql or postgresql or none")
	flags.String("run-db-connect", "", "Run store connection string or SQLite path (must differ from message-db-connect)")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("cycle", "", "Cycle to check as YYYYMMDDHH")
	checkCmd.Flags().String("standard-times", "", "JSON or YAML standard times written by estimate")
	checkCmd.Flags().String("now", "", "Evaluation time in RFC3339 (defaults to the current time)")
	checkCmd.Flags().String("textfile", "", "Write Prometheus gauges to this node-exporter textfile")
	checkCmd.Flags().Bool("watch", false, "Re-run the check whenever the input file changes")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
