package schema

import "time"

// StoredMessage is an observation tagged with the product it belongs to.
type StoredMessage struct {
	Product ProductFilter
	Observation
}

// RunRecord represents a row from the leadtime_estimate_runs table.
type RunRecord struct {
	RunID          int64
	RunUUID        string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	Seed           int64
	TotalBuckets   int32
	SkippedBuckets int32
	ConfigParams   *string
}

// StandardTimeRecord represents a row from the leadtime_standard_times table.
type StandardTimeRecord struct {
	RunID         int64
	StartHour     string
	ForecastHour  int32
	UpperSeconds  int64
	LowerSeconds  int64
	SampleCount   int32
	MeanSeconds   float64
	StdDevSeconds float64
}
