package cmd

import (
	"fmt"

	"github.com/huangsam/leadtime/core"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/store"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for message store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup(initStores bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := initLogging(); err != nil {
		return err
	}

	backend, err := contract.ParseBackend(viper.GetString("message-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("message-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if initStores {
		// No run tracking for store commands
		if err := store.InitStores(backend, connStr, "", ""); err != nil {
			return fmt.Errorf("failed to initialize message store: %w", err)
		}
	}

	cfg.MessageBackend = backend
	cfg.MessageDBConnect = connStr
	return nil
}

// storeCmd focused on message store management.
//
// Note: status and clear use minimal initialization (storeSetup) instead of
// the full sharedSetup, since they need no buckets or observation source.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the message store of product arrivals",
	Long: `Manage the message store that keeps product arrival messages across runs.

Messages are keyed by system, stream, type, name, cycle start time and forecast hour.
Importing the same message again keeps the latest arrival time.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  import - Load an observation table into the store
  status - Show store statistics and connection info
  clear  - Remove all stored messages

Examples:
  # Import a day of messages for ECMWF
  leadtime store import messages.csv --system ecmwf

  # Check store status
  leadtime store status`,
}

// storeImportCmd upserts observations into the message store.
var storeImportCmd = &cobra.Command{
	Use:   "import [input]",
	Short: "Import an observation table into the message store",
	Long: `Read observations from a csv, json, parquet or xlsx table (local or s3://) and upsert
them into the message store, tagged with the product given by --system,
--production-stream, --production-type and --production-name.

Examples:
  leadtime store import messages.csv --system ecmwf
  leadtime store import s3://ops-bucket/messages/2025-03-10.parquet --system ecmwf --production-stream enfo`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src, err := table.NewSource(cfg, storeManager)
		if err != nil {
			contract.LogFatal("Invalid observation source", err)
		}
		if err := core.ExecuteImport(rootCtx, cfg, src, storeManager); err != nil {
			contract.LogFatal("Failed to import messages", err)
		}
	},
}

// storeStatusCmd shows message store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display message store statistics and connection details",
	Long: `Show detailed information about the message store.

Displays:
- Backend type and connection status
- Total number of stored messages and products
- Earliest and latest cycle start times
- Store size

Examples:
  leadtime store status
  LEADTIME_MESSAGE_BACKEND=postgresql LEADTIME_MESSAGE_DB_CONNECT="host=db dbname=leadtime" leadtime store status`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return storeSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		messages := store.Manager.GetMessageStore()
		if messages == nil {
			contract.LogFatal("Failed to get message store status", fmt.Errorf("message store is disabled"))
		}
		status, err := messages.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get message store status", err)
		}
		store.PrintMessageStatus(status)
	},
}

// storeClearCmd clears the message store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored messages",
	Long: `Delete all stored messages from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the messages table

Examples:
  leadtime store clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return storeSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := cfg.MessageDBConnect
		if dbPath == "" {
			dbPath = contract.GetMessageDBFilePath()
		}
		if err := store.ClearMessages(cfg.MessageBackend, dbPath, cfg.MessageDBConnect); err != nil {
			contract.LogFatal("Failed to clear message store", err)
		}
		fmt.Println("Message store cleared successfully.")
	},
}
