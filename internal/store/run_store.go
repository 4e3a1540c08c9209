package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
)

// Table names for run tracking.
const (
	estimateRunsTable  = "leadtime_estimate_runs"
	standardTimesTable = "leadtime_standard_times"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{estimateRunsTable, getCreateEstimateRunsQuery(backend)},
		{standardTimesTable, getCreateStandardTimesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateEstimateRunsQuery returns the CREATE TABLE query for leadtime_estimate_runs.
func getCreateEstimateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(estimateRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				seed BIGINT NOT NULL,
				total_buckets INT NOT NULL DEFAULT 0,
				skipped_buckets INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				seed BIGINT NOT NULL,
				total_buckets INT NOT NULL DEFAULT 0,
				skipped_buckets INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				seed INTEGER NOT NULL,
				total_buckets INTEGER NOT NULL DEFAULT 0,
				skipped_buckets INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateStandardTimesQuery returns the CREATE TABLE query for leadtime_standard_times.
func getCreateStandardTimesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(standardTimesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				start_hour CHAR(2) NOT NULL,
				forecast_hour INT NOT NULL,
				upper_seconds BIGINT NOT NULL,
				lower_seconds BIGINT NOT NULL,
				sample_count INT NOT NULL,
				mean_seconds DOUBLE NOT NULL,
				std_dev_seconds DOUBLE NOT NULL,
				PRIMARY KEY (run_id, start_hour, forecast_hour)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				start_hour TEXT NOT NULL,
				forecast_hour INT NOT NULL,
				upper_seconds BIGINT NOT NULL,
				lower_seconds BIGINT NOT NULL,
				sample_count INT NOT NULL,
				mean_seconds DOUBLE PRECISION NOT NULL,
				std_dev_seconds DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, start_hour, forecast_hour)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				start_hour TEXT NOT NULL,
				forecast_hour INTEGER NOT NULL,
				upper_seconds INTEGER NOT NULL,
				lower_seconds INTEGER NOT NULL,
				sample_count INTEGER NOT NULL,
				mean_seconds REAL NOT NULL,
				std_dev_seconds REAL NOT NULL,
				PRIMARY KEY (run_id, start_hour, forecast_hour)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new estimate run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, seed uint64, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(estimateRunsTable, rs.backend)
	runUUID := uuid.NewString()

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, seed, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, runUUID, startTime.UTC(), int64(seed), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, seed, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, runUUID, formatTime(startTime, rs.backend), int64(seed), string(configJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert estimate run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert estimate run: %w", err)
	}

	return runID, nil
}

// RecordBounds stores the confidence bound of one bucket for a run.
func (rs *RunStoreImpl) RecordBounds(runID int64, startHour string, bound schema.ConfidenceBound) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(standardTimesTable, rs.backend)
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, start_hour, forecast_hour, upper_seconds, lower_seconds,
		                sample_count, mean_seconds, std_dev_seconds)
		VALUES (%s)
	`, quotedTableName, placeholderList(rs.backend, 1, 8))

	_, err := rs.db.Exec(query,
		runID, startHour, bound.ForecastHour,
		int64(bound.Upper/time.Second), int64(bound.Lower/time.Second),
		bound.Stats.Count, bound.Stats.Mean.Seconds(), bound.Stats.StdDev.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert standard time: %w", err)
	}

	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalBuckets, skippedBuckets int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(estimateRunsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	startTime, err := rs.scanTime(rs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_buckets = %s, skipped_buckets = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5))

	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalBuckets, skippedBuckets, runID); err != nil {
		return fmt.Errorf("failed to update estimate run: %w", err)
	}

	return nil
}

// scanTime reads a single time column, handling the per-backend encoding.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	switch rs.backend {
	case schema.SQLiteBackend:
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseTime(s)
	default: // MySQL and PostgreSQL store as native datetime
		var t time.Time
		if err := row.Scan(&t); err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	// Get total runs
	runsTable := quoteTableName(estimateRunsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id, run_uuid FROM %s ORDER BY run_id DESC LIMIT 1", runsTable))
		if err := row.Scan(&status.LastRunID, &status.LastRunUUID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		lastRunTime, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRunTime, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	// Get table sizes
	for _, table := range []string{estimateRunsTable, standardTimesTable} {
		var count int64
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalBounds = int(status.TableSizes[standardTimesTable])

	return status, nil
}

// GetAllRuns retrieves all estimate runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(estimateRunsTable, rs.backend)
	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, run_duration_ms, seed,
		total_buckets, skipped_buckets, config_params FROM %s ORDER BY run_id`, quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query estimate runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord

	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.RunUUID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.Seed, &record.TotalBuckets, &record.SkippedBuckets, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan estimate run: %w", err)
			}
			startTime, err := parseTime(startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.RunUUID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.Seed, &record.TotalBuckets, &record.SkippedBuckets, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan estimate run: %w", err)
			}
			record.StartTime = record.StartTime.UTC()
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating estimate runs: %w", err)
	}

	return results, nil
}

// GetAllStandardTimes retrieves all stored bounds ordered by run.
func (rs *RunStoreImpl) GetAllStandardTimes() ([]schema.StandardTimeRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(standardTimesTable, rs.backend)
	query := fmt.Sprintf(`SELECT run_id, start_hour, forecast_hour, upper_seconds, lower_seconds,
		sample_count, mean_seconds, std_dev_seconds
		FROM %s ORDER BY run_id, start_hour, forecast_hour`, quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query standard times: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StandardTimeRecord

	for rows.Next() {
		var record schema.StandardTimeRecord
		if err := rows.Scan(&record.RunID, &record.StartHour, &record.ForecastHour, &record.UpperSeconds,
			&record.LowerSeconds, &record.SampleCount, &record.MeanSeconds, &record.StdDevSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan standard time: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standard times: %w", err)
	}

	return results, nil
}
