// Package schema has models, errors and enumerations shared by all parts of leadtime.
package schema

import "time"

// StartHourLayout formats the hour-of-day of a cycle start time ("00" through "23").
const StartHourLayout = "15"

// CycleLayout is the compact YYYYMMDDHH notation used for cycle start times.
const CycleLayout = "2006010215"

// Observation is a single record of one forecast product becoming available.
type Observation struct {
	StartTime    time.Time `json:"start_time"`    // Nominal start time of the forecast cycle
	ForecastHour int       `json:"forecast_hour"` // Lead time of the product in hours
	ArrivalTime  time.Time `json:"time"`          // Wall-clock time the product became available
}

// Clock returns the elapsed time from cycle start to product arrival.
func (o Observation) Clock() time.Duration {
	return o.ArrivalTime.Sub(o.StartTime)
}

// StartHour returns the two-digit hour-of-day of the cycle start time.
func (o Observation) StartHour() string {
	return o.StartTime.Format(StartHourLayout)
}

// BucketSpec lists the forecast hours to estimate for one cycle start hour.
// The order of ForecastHours is the order of the output.
type BucketSpec struct {
	StartHour     string `json:"start_hour" yaml:"start_hour" mapstructure:"start_hour"`
	ForecastHours []int  `json:"forecast_hours" yaml:"forecast_hours" mapstructure:"forecast_hours"`
}

// BucketKey identifies a bucket of observations.
type BucketKey struct {
	StartHour    string `json:"start_hour"`
	ForecastHour int    `json:"forecast_hour"`
}

// EstimatorConfig holds the bootstrap parameters of a run. It is immutable for the run.
type EstimatorConfig struct {
	BootstrapCount  int     `json:"bootstrap_count"`  // Number of bootstrap replicates
	BootstrapSample int     `json:"bootstrap_sample"` // Draws per replicate, with replacement
	Quantile        float64 `json:"quantile"`         // Central confidence level in (0, 1)
	Seed            uint64  `json:"seed"`             // Base seed for per-bucket random sources
}

// BucketStats describes the raw clocks of a bucket.
type BucketStats struct {
	Count  int           `json:"count"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"std_dev"`
}

// ConfidenceBound is the expected arrival window for one forecast hour.
type ConfidenceBound struct {
	ForecastHour int           `json:"forecast_hour"`
	Upper        time.Duration `json:"upper"`
	Lower        time.Duration `json:"lower"`
	Stats        BucketStats   `json:"stats"`
}

// ProductionTimeResult holds the bounds of one start hour in configuration order.
type ProductionTimeResult struct {
	StartHour string            `json:"start_hour"`
	Times     []ConfidenceBound `json:"times"`
}

// SkippedBucket records a bucket left out of the results under the skip policy.
type SkippedBucket struct {
	StartHour    string `json:"start_hour"`
	ForecastHour int    `json:"forecast_hour"`
	Reason       string `json:"reason"`
}

// EstimateOutput is everything an estimation run produces.
type EstimateOutput struct {
	Config       EstimatorConfig        `json:"config"`
	Results      []ProductionTimeResult `json:"results"`
	Skipped      []SkippedBucket        `json:"skipped,omitempty"`
	Observations int                    `json:"observations"`
}

// StandardTime is the serialized form of a ConfidenceBound.
type StandardTime struct {
	ForecastHour  int    `json:"forecast_hour" yaml:"forecast_hour"`
	UpperDuration string `json:"upper_duration" yaml:"upper_duration"`
	LowerDuration string `json:"lower_duration" yaml:"lower_duration"`
}

// StandardTimeEntry is the serialized form of a ProductionTimeResult.
type StandardTimeEntry struct {
	StartHour string         `json:"start_hour" yaml:"start_hour"`
	Times     []StandardTime `json:"times" yaml:"times"`
}

// ProductFilter selects the stored messages of one forecast product.
type ProductFilter struct {
	System string `json:"system"`
	Stream string `json:"stream"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

// StepGrid is the cycle-by-forecast-hour arrival matrix shown by the grid command.
type StepGrid struct {
	Cycles        []time.Time                  // Row keys, ascending
	ForecastHours []int                        // Column keys, ascending
	Cells         map[time.Time]map[int]string // Formatted arrival per cell, if any
	Clocks        map[time.Time]map[int]time.Duration
}
