package schema

import "time"

// MessageStoreStatus represents the status of the message store.
type MessageStoreStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalMessages   int       `json:"total_messages"`
	TotalProducts   int       `json:"total_products"`
	OldestStartTime time.Time `json:"oldest_start_time"`
	LatestStartTime time.Time `json:"latest_start_time"`
	LatestArrival   time.Time `json:"latest_arrival"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStoreStatus represents the status of the estimate run store.
type RunStoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunUUID   string           `json:"last_run_uuid"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalBounds   int              `json:"total_bounds"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
