package parquet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleObservations() []schema.Observation {
	cycle := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []schema.Observation{
		{StartTime: cycle, ForecastHour: 0, ArrivalTime: cycle.Add(3*time.Hour + 12*time.Minute)},
		{StartTime: cycle, ForecastHour: 6, ArrivalTime: cycle.Add(3*time.Hour + 40*time.Minute + 5*time.Second)},
		{StartTime: cycle.Add(12 * time.Hour), ForecastHour: 0, ArrivalTime: cycle.Add(15*time.Hour + 9*time.Minute)},
	}
}

func TestObservationRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(ObservationRow{})
	for _, colName := range []string{"start_time", "forecast_hour", "time"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestEstimateRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(EstimateRun{})
	expectedColumns := []string{
		"run_id", "run_uuid", "start_time", "end_time", "run_duration_ms",
		"seed", "total_buckets", "skipped_buckets", "config_params",
	}
	for _, colName := range expectedColumns {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestObservationsRoundTrip(t *testing.T) {
	observations := sampleObservations()

	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, ConvertObservations(observations)))

	got, err := ReadObservations(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, got, len(observations))
	for i := range observations {
		assert.True(t, observations[i].StartTime.Equal(got[i].StartTime))
		assert.True(t, observations[i].ArrivalTime.Equal(got[i].ArrivalTime))
		assert.Equal(t, observations[i].ForecastHour, got[i].ForecastHour)
		assert.Equal(t, time.UTC, got[i].StartTime.Location())
	}
}

func TestReadObservationsRejectsOtherSchemas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, []StandardTime{{RunID: 1, StartHour: "00"}}))

	_, err := ReadObservations(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.Error(t, err)

	_, err = ReadObservations(bytes.NewReader([]byte("not parquet")), 11)
	assert.Error(t, err)
}

func TestWriteRowsFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	end := time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)
	duration := int32(5000)
	params := `{"quantile":0.99}`
	data := []EstimateRun{
		{RunID: 1, RunUUID: "a", StartTime: end.Add(-5 * time.Second), EndTime: &end, RunDurationMs: &duration, Seed: 42, TotalBuckets: 3, ConfigParams: &params},
		{RunID: 2, RunUUID: "b", StartTime: end, Seed: 7},
	}
	require.NoError(t, WriteRowsFile(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[EstimateRun](file)
	defer func() { _ = reader.Close() }()
	readData := make([]EstimateRun, reader.NumRows())
	n, _ := reader.Read(readData)
	require.Equal(t, 2, n)

	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, end, *readData[0].EndTime, time.Nanosecond)
	assert.Equal(t, duration, *readData[0].RunDurationMs)
	assert.Equal(t, params, *readData[0].ConfigParams)
	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].RunDurationMs)
	assert.Nil(t, readData[1].ConfigParams)
}

func TestWriteRowsFile_InvalidPath(t *testing.T) {
	err := WriteRowsFile([]BoundRow{}, "/nonexistent/dir/out.parquet")
	assert.Error(t, err)
}

func TestConvertResults(t *testing.T) {
	results := []schema.ProductionTimeResult{
		{StartHour: "00", Times: []schema.ConfidenceBound{
			{ForecastHour: 0, Upper: 5 * time.Minute, Lower: 3 * time.Minute, Stats: schema.BucketStats{Count: 4, Mean: 4 * time.Minute}},
			{ForecastHour: 6, Upper: time.Hour, Lower: 50 * time.Minute},
		}},
		{StartHour: "12", Times: nil},
	}
	rows := ConvertResults(results)
	require.Len(t, rows, 2)
	assert.Equal(t, "P0DT0H5M0S", rows[0].UpperDuration)
	assert.Equal(t, "P0DT0H3M0S", rows[0].LowerDuration)
	assert.Equal(t, int64(300), rows[0].UpperSeconds)
	assert.Equal(t, int32(4), rows[0].SampleCount)
	assert.InDelta(t, 240.0, rows[0].MeanSeconds, 1e-9)
	assert.Equal(t, int32(6), rows[1].ForecastHour)
}

func TestConvertCheckResult(t *testing.T) {
	cycle := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	arrival := cycle.Add(10 * time.Minute)
	result := &schema.CheckResult{
		Cycle: cycle,
		Items: []schema.CheckItem{
			{ForecastHour: 0, Status: schema.LateStatus, Arrival: &arrival, Clock: 10 * time.Minute, Upper: 8 * time.Minute, Deviation: 2 * time.Minute},
			{ForecastHour: 3, Status: schema.PendingStatus, Clock: time.Minute, Upper: 20 * time.Minute},
		},
	}
	rows := ConvertCheckResult(result)
	require.Len(t, rows, 2)
	assert.Equal(t, "late", rows[0].Status)
	assert.Equal(t, int64(120), rows[0].DeviationSeconds)
	assert.Nil(t, rows[1].Arrival)
}

func TestConvertRecords(t *testing.T) {
	runs := ConvertRunRecords([]schema.RunRecord{{RunID: 3, RunUUID: "u", Seed: 9, TotalBuckets: 2, SkippedBuckets: 1}})
	require.Len(t, runs, 1)
	assert.Equal(t, EstimateRun{RunID: 3, RunUUID: "u", Seed: 9, TotalBuckets: 2, SkippedBuckets: 1}, runs[0])

	bounds := ConvertStandardTimeRecords([]schema.StandardTimeRecord{{RunID: 3, StartHour: "06", ForecastHour: 12, UpperSeconds: 60}})
	require.Len(t, bounds, 1)
	assert.Equal(t, "06", bounds[0].StartHour)
	assert.Equal(t, int64(60), bounds[0].UpperSeconds)
}
