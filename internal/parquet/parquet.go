// Package parquet provides data structures and functions for reading and writing
// leadtime data as Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/parquet-go/parquet-go"
)

// ObservationRow is one product delivery in the observation table.
// The column names are the ones every other input format uses.
type ObservationRow struct {
	StartTime    time.Time `parquet:"start_time,snappy"`
	ForecastHour int32     `parquet:"forecast_hour,snappy"`
	ArrivalTime  time.Time `parquet:"time,snappy"`
}

// BoundRow is the confidence bound of one bucket in an estimate output.
type BoundRow struct {
	StartHour     string `parquet:"start_hour,snappy"`
	ForecastHour  int32  `parquet:"forecast_hour,snappy"`
	UpperDuration string `parquet:"upper_duration,snappy"`
	LowerDuration string `parquet:"lower_duration,snappy"`

	// Seconds are kept next to the ISO strings for numeric analysis
	UpperSeconds  int64   `parquet:"upper_seconds,snappy"`
	LowerSeconds  int64   `parquet:"lower_seconds,snappy"`
	SampleCount   int32   `parquet:"sample_count,snappy"`
	MeanSeconds   float64 `parquet:"mean_seconds,snappy"`
	StdDevSeconds float64 `parquet:"std_dev_seconds,snappy"`
}

// CheckRow is the classification of one forecast hour in a delay check.
type CheckRow struct {
	Cycle            time.Time  `parquet:"cycle,snappy"`
	ForecastHour     int32      `parquet:"forecast_hour,snappy"`
	Status           string     `parquet:"status,snappy"`
	Arrival          *time.Time `parquet:"arrival,optional,snappy"`
	ClockSeconds     int64      `parquet:"clock_seconds,snappy"`
	LowerSeconds     int64      `parquet:"lower_seconds,snappy"`
	UpperSeconds     int64      `parquet:"upper_seconds,snappy"`
	DeviationSeconds int64      `parquet:"deviation_seconds,snappy"`
}

// EstimateRun represents a single estimate run with metadata.
// This struct maps to the leadtime_estimate_runs database table.
type EstimateRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier of this run
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Seed is the base seed of the run's random sources
	Seed int64 `parquet:"seed,snappy"`

	// TotalBuckets is the number of configured buckets
	TotalBuckets int32 `parquet:"total_buckets,snappy"`

	// SkippedBuckets is the number of empty buckets left out
	SkippedBuckets int32 `parquet:"skipped_buckets,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// StandardTime is one stored bound of a run.
// This struct maps to the leadtime_standard_times database table.
type StandardTime struct {
	RunID         int64   `parquet:"run_id,snappy"`
	StartHour     string  `parquet:"start_hour,snappy"`
	ForecastHour  int32   `parquet:"forecast_hour,snappy"`
	UpperSeconds  int64   `parquet:"upper_seconds,snappy"`
	LowerSeconds  int64   `parquet:"lower_seconds,snappy"`
	SampleCount   int32   `parquet:"sample_count,snappy"`
	MeanSeconds   float64 `parquet:"mean_seconds,snappy"`
	StdDevSeconds float64 `parquet:"std_dev_seconds,snappy"`
}

// WriteRows writes rows of any of the row types to w.
func WriteRows[T any](w io.Writer, data []T) error {
	// The schema is automatically derived from the struct tags
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// WriteRowsFile writes rows to a new Parquet file at outputPath.
func WriteRowsFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ReadObservations reads an observation table from Parquet data.
// The file must have the start_time, forecast_hour and time columns.
func ReadObservations(r io.ReaderAt, size int64) ([]schema.Observation, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet data: %w", err)
	}
	for _, name := range []string{"start_time", "forecast_hour", "time"} {
		if _, ok := file.Schema().Lookup(name); !ok {
			return nil, fmt.Errorf("parquet data has no %q column", name)
		}
	}
	if n := len(file.Schema().Fields()); n != 3 {
		return nil, fmt.Errorf("parquet data has %d columns, expected start_time, forecast_hour and time", n)
	}

	reader := parquet.NewGenericReader[ObservationRow](file)
	defer func() { _ = reader.Close() }()

	rows := make([]ObservationRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	observations := make([]schema.Observation, n)
	for i, row := range rows[:n] {
		observations[i] = schema.Observation{
			StartTime:    row.StartTime.UTC(),
			ForecastHour: int(row.ForecastHour),
			ArrivalTime:  row.ArrivalTime.UTC(),
		}
	}
	return observations, nil
}

// ConvertObservations converts observations to ObservationRow for Parquet export.
func ConvertObservations(observations []schema.Observation) []ObservationRow {
	result := make([]ObservationRow, len(observations))
	for i, o := range observations {
		result[i] = ObservationRow{
			StartTime:    o.StartTime,
			ForecastHour: int32(o.ForecastHour),
			ArrivalTime:  o.ArrivalTime,
		}
	}
	return result
}

// ConvertResults flattens estimate results to BoundRow for Parquet export.
func ConvertResults(results []schema.ProductionTimeResult) []BoundRow {
	var rows []BoundRow
	for _, result := range results {
		for _, bound := range result.Times {
			rows = append(rows, BoundRow{
				StartHour:     result.StartHour,
				ForecastHour:  int32(bound.ForecastHour),
				UpperDuration: schema.FormatISODuration(bound.Upper),
				LowerDuration: schema.FormatISODuration(bound.Lower),
				UpperSeconds:  int64(bound.Upper / time.Second),
				LowerSeconds:  int64(bound.Lower / time.Second),
				SampleCount:   int32(bound.Stats.Count),
				MeanSeconds:   bound.Stats.Mean.Seconds(),
				StdDevSeconds: bound.Stats.StdDev.Seconds(),
			})
		}
	}
	return rows
}

// ConvertCheckResult flattens a check result to CheckRow for Parquet export.
func ConvertCheckResult(result *schema.CheckResult) []CheckRow {
	rows := make([]CheckRow, len(result.Items))
	for i, item := range result.Items {
		rows[i] = CheckRow{
			Cycle:            result.Cycle,
			ForecastHour:     int32(item.ForecastHour),
			Status:           string(item.Status),
			Arrival:          item.Arrival,
			ClockSeconds:     int64(item.Clock / time.Second),
			LowerSeconds:     int64(item.Lower / time.Second),
			UpperSeconds:     int64(item.Upper / time.Second),
			DeviationSeconds: int64(item.Deviation / time.Second),
		}
	}
	return rows
}

// ConvertRunRecords converts schema.RunRecord to EstimateRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []EstimateRun {
	result := make([]EstimateRun, len(records))
	for i, record := range records {
		result[i] = EstimateRun{
			RunID:          record.RunID,
			RunUUID:        record.RunUUID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			Seed:           record.Seed,
			TotalBuckets:   record.TotalBuckets,
			SkippedBuckets: record.SkippedBuckets,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertStandardTimeRecords converts schema.StandardTimeRecord to StandardTime for Parquet export.
func ConvertStandardTimeRecords(records []schema.StandardTimeRecord) []StandardTime {
	result := make([]StandardTime, len(records))
	for i, record := range records {
		result[i] = StandardTime{
			RunID:         record.RunID,
			StartHour:     record.StartHour,
			ForecastHour:  record.ForecastHour,
			UpperSeconds:  record.UpperSeconds,
			LowerSeconds:  record.LowerSeconds,
			SampleCount:   record.SampleCount,
			MeanSeconds:   record.MeanSeconds,
			StdDevSeconds: record.StdDevSeconds,
		}
	}
	return result
}
