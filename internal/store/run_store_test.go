package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	runID, err := store.BeginRun(time.Now(), 7, map[string]any{"quantile": 0.99})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordBounds(1, "00", schema.ConfidenceBound{}))
	assert.NoError(t, store.EndRun(1, time.Now(), 3, 0))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestRunStore_SQLite(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	startTime := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
	params := map[string]any{"bootstrap_count": 1000, "quantile": 0.99}
	runID, err := store.BeginRun(startTime, 42, params)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	bound := schema.ConfidenceBound{
		ForecastHour: 6,
		Upper:        4*time.Hour + 5*time.Minute,
		Lower:        3*time.Hour + 55*time.Minute,
		Stats:        schema.BucketStats{Count: 12, Mean: 4 * time.Hour, StdDev: 90 * time.Second},
	}
	require.NoError(t, store.RecordBounds(runID, "00", bound))
	require.NoError(t, store.RecordBounds(runID, "00", schema.ConfidenceBound{ForecastHour: 0, Upper: time.Hour, Lower: time.Hour}))

	// A bucket can only be recorded once per run
	assert.Error(t, store.RecordBounds(runID, "00", bound))

	require.NoError(t, store.EndRun(runID, startTime.Add(1500*time.Millisecond), 2, 1))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Len(t, run.RunUUID, 36)
	assert.Equal(t, startTime, run.StartTime)
	require.NotNil(t, run.EndTime)
	assert.Equal(t, startTime.Add(1500*time.Millisecond), *run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, int32(2), run.TotalBuckets)
	assert.Equal(t, int32(1), run.SkippedBuckets)
	require.NotNil(t, run.ConfigParams)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &decoded))
	assert.InDelta(t, 0.99, decoded["quantile"], 1e-12)

	bounds, err := store.GetAllStandardTimes()
	require.NoError(t, err)
	require.Len(t, bounds, 2)
	assert.Equal(t, int32(0), bounds[0].ForecastHour)
	assert.Equal(t, schema.StandardTimeRecord{
		RunID:         runID,
		StartHour:     "00",
		ForecastHour:  6,
		UpperSeconds:  14700,
		LowerSeconds:  14100,
		SampleCount:   12,
		MeanSeconds:   14400,
		StdDevSeconds: 90,
	}, bounds[1])

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, run.RunUUID, status.LastRunUUID)
	assert.Equal(t, startTime, status.LastRunTime)
	assert.Equal(t, startTime, status.OldestRunTime)
	assert.Equal(t, 2, status.TotalBounds)
	assert.Equal(t, int64(1), status.TableSizes[estimateRunsTable])
}

func TestRunStore_EndRunUnknown(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.EndRun(99, time.Now(), 1, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "run 99")
}

func TestRunStore_UniqueRunUUIDs(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for range 3 {
		_, err := store.BeginRun(time.Now(), 1, nil)
		require.NoError(t, err)
	}
	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)

	seen := map[string]bool{}
	for i, run := range runs {
		assert.Equal(t, int64(i+1), run.RunID)
		assert.Nil(t, run.EndTime)
		assert.False(t, seen[run.RunUUID])
		seen[run.RunUUID] = true
	}
}
