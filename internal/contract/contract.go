// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/leadtime/schema"
)

// ObservationSource loads the observation table an estimate or check runs on.
// This allows the core logic to be tested without files or databases.
type ObservationSource interface {
	// Load returns every observation of the source, restricted to the given cycles when not empty.
	Load(ctx context.Context, cycles []time.Time) ([]schema.Observation, error)

	// Describe returns a short, human-readable name of the source for headers and logs.
	Describe() string
}

// StoreManager defines the interface for managing the persistent stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetMessageStore() MessageStore
	GetRunStore() RunStore
}

// MessageStore keeps production observations tagged by product.
type MessageStore interface {
	// Import upserts observations for a product and returns how many rows were written.
	Import(product schema.ProductFilter, observations []schema.Observation) (int, error)

	// Query returns observations of a product, restricted to the given cycles when not empty.
	Query(product schema.ProductFilter, cycles []time.Time) ([]schema.Observation, error)

	// GetStatus returns status information about the message store
	GetStatus() (schema.MessageStoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// RunStore tracks estimate runs and the standard times they produced.
type RunStore interface {
	// BeginRun creates a new run record and returns its unique ID
	BeginRun(startTime time.Time, seed uint64, configParams map[string]any) (int64, error)

	// RecordBounds stores the confidence bound of one bucket for a run
	RecordBounds(runID int64, startHour string, bound schema.ConfidenceBound) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalBuckets, skippedBuckets int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns retrieves every run record in insertion order
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllStandardTimes retrieves every stored bound ordered by run
	GetAllStandardTimes() ([]schema.StandardTimeRecord, error)

	// Close closes the underlying connection
	Close() error
}

// OutputWriter renders command results in the configured output format.
// This allows the core logic to be tested without touching stdout or files.
type OutputWriter interface {
	WriteStandardTimes(output *schema.EstimateOutput, cfg *Config, duration time.Duration) error
	WriteCheck(result *schema.CheckResult, cfg *Config, duration time.Duration) error
	WriteObservations(observations []schema.Observation, cfg *Config) error
	WriteGrid(grid *schema.StepGrid, cfg *Config) error
}
