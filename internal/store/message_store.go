package store

import (
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
)

// messagesTable holds imported product arrivals.
const messagesTable = "leadtime_messages"

// MessageStoreImpl keeps production observations in a SQL backend.
type MessageStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.MessageStore = &MessageStoreImpl{} // Compile-time check

// NewMessageStore initializes and returns a new MessageStore based on the backend type.
func NewMessageStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.MessageStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		// Return a no-op store for disabled storage
		return &MessageStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, contract.GetMessageDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateMessagesQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &MessageStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateMessagesQuery returns the CREATE TABLE query for the given backend.
func getCreateMessagesQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				system_name VARCHAR(64) NOT NULL,
				stream VARCHAR(64) NOT NULL,
				product_type VARCHAR(64) NOT NULL,
				product_name VARCHAR(64) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				forecast_hour INT NOT NULL,
				arrival_time DATETIME(6) NOT NULL,
				PRIMARY KEY (system_name, stream, product_type, product_name, start_time, forecast_hour)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				system_name TEXT NOT NULL,
				stream TEXT NOT NULL,
				product_type TEXT NOT NULL,
				product_name TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				forecast_hour INTEGER NOT NULL,
				arrival_time TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (system_name, stream, product_type, product_name, start_time, forecast_hour)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				system_name TEXT NOT NULL,
				stream TEXT NOT NULL,
				product_type TEXT NOT NULL,
				product_name TEXT NOT NULL,
				start_time TEXT NOT NULL,
				forecast_hour INTEGER NOT NULL,
				arrival_time TEXT NOT NULL,
				PRIMARY KEY (system_name, stream, product_type, product_name, start_time, forecast_hour)
			);
		`, quotedTableName)
	}
}

// getUpsertQuery returns the UPSERT query for the backend.
// A repeated (product, cycle, forecast hour) keeps the latest imported arrival.
func (ms *MessageStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ms.tableName, ms.backend)
	switch ms.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (system_name, stream, product_type, product_name, start_time, forecast_hour, arrival_time)
			VALUES (?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE arrival_time = new.arrival_time`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (system_name, stream, product_type, product_name, start_time, forecast_hour, arrival_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (system_name, stream, product_type, product_name, start_time, forecast_hour)
			DO UPDATE SET arrival_time = EXCLUDED.arrival_time`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (system_name, stream, product_type, product_name, start_time, forecast_hour, arrival_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, quotedTableName)
	}
}

// Import upserts observations for a product inside a single transaction.
func (ms *MessageStoreImpl) Import(product schema.ProductFilter, observations []schema.Observation) (int, error) {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return 0, nil
	}
	if len(observations) == 0 {
		return 0, nil
	}

	tx, err := ms.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	stmt, err := tx.Prepare(ms.getUpsertQuery())
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, o := range observations {
		if _, err := stmt.Exec(
			product.System, product.Stream, product.Type, product.Name,
			formatTime(o.StartTime, ms.backend), o.ForecastHour, formatTime(o.ArrivalTime, ms.backend),
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to import message for cycle %s step %d: %w",
				o.StartTime.UTC().Format(schema.CycleLayout), o.ForecastHour, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(observations), nil
}

// Query returns observations of a product ordered by cycle and forecast hour.
// The cycle range narrows the scan and the exact selection is applied afterwards.
func (ms *MessageStoreImpl) Query(product schema.ProductFilter, cycles []time.Time) ([]schema.Observation, error) {
	// Return nothing for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(ms.tableName, ms.backend)
	query := fmt.Sprintf(`SELECT start_time, forecast_hour, arrival_time FROM %s
		WHERE system_name = %s AND stream = %s AND product_type = %s AND product_name = %s`,
		quotedTableName,
		placeholder(ms.backend, 1), placeholder(ms.backend, 2), placeholder(ms.backend, 3), placeholder(ms.backend, 4))
	args := []any{product.System, product.Stream, product.Type, product.Name}

	if len(cycles) > 0 {
		first := slices.MinFunc(cycles, func(a, b time.Time) int { return a.Compare(b) })
		last := slices.MaxFunc(cycles, func(a, b time.Time) int { return a.Compare(b) })
		query += fmt.Sprintf(" AND start_time >= %s AND start_time <= %s", placeholder(ms.backend, 5), placeholder(ms.backend, 6))
		args = append(args, formatTime(first, ms.backend), formatTime(last, ms.backend))
	}
	query += " ORDER BY start_time, forecast_hour"

	rows, err := ms.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := contract.CycleSet(cycles)
	var results []schema.Observation
	for rows.Next() {
		o, err := ms.scanObservation(rows)
		if err != nil {
			return nil, err
		}
		if set != nil {
			if _, ok := set[o.StartTime]; !ok {
				continue
			}
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return results, nil
}

// scanObservation reads one message row, handling the per-backend time encoding.
func (ms *MessageStoreImpl) scanObservation(rows *sql.Rows) (schema.Observation, error) {
	var o schema.Observation
	switch ms.backend {
	case schema.SQLiteBackend:
		var startStr, arrivalStr string
		if err := rows.Scan(&startStr, &o.ForecastHour, &arrivalStr); err != nil {
			return o, fmt.Errorf("failed to scan message: %w", err)
		}
		var err error
		if o.StartTime, err = parseTime(startStr); err != nil {
			return o, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if o.ArrivalTime, err = parseTime(arrivalStr); err != nil {
			return o, fmt.Errorf("failed to parse arrival_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := rows.Scan(&o.StartTime, &o.ForecastHour, &o.ArrivalTime); err != nil {
			return o, fmt.Errorf("failed to scan message: %w", err)
		}
		o.StartTime = o.StartTime.UTC()
		o.ArrivalTime = o.ArrivalTime.UTC()
	}
	return o, nil
}

// Close closes the underlying DB connection.
func (ms *MessageStoreImpl) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

// GetStatus returns status information about the message store.
func (ms *MessageStoreImpl) GetStatus() (schema.MessageStoreStatus, error) {
	status := schema.MessageStoreStatus{
		Backend:   string(ms.backend),
		Connected: ms.db != nil,
	}

	if ms.backend == schema.NoneBackend || ms.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ms.tableName, ms.backend)

	// Get total messages
	row := ms.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalMessages); err != nil {
		return status, fmt.Errorf("failed to get total messages: %w", err)
	}

	if status.TotalMessages == 0 {
		return status, nil
	}

	// Get distinct products
	productsQuery := fmt.Sprintf(`SELECT COUNT(*) FROM (
		SELECT DISTINCT system_name, stream, product_type, product_name FROM %s) products`, quotedTableName)
	row = ms.db.QueryRow(productsQuery)
	if err := row.Scan(&status.TotalProducts); err != nil {
		return status, fmt.Errorf("failed to get total products: %w", err)
	}

	// Get time range
	rangeQuery := fmt.Sprintf("SELECT MIN(start_time), MAX(start_time), MAX(arrival_time) FROM %s", quotedTableName)
	row = ms.db.QueryRow(rangeQuery)
	switch ms.backend {
	case schema.SQLiteBackend:
		var oldest, latest, arrival string
		if err := row.Scan(&oldest, &latest, &arrival); err != nil {
			return status, fmt.Errorf("failed to get time range: %w", err)
		}
		for _, pair := range []struct {
			raw string
			dst *time.Time
		}{{oldest, &status.OldestStartTime}, {latest, &status.LatestStartTime}, {arrival, &status.LatestArrival}} {
			t, err := parseTime(pair.raw)
			if err != nil {
				return status, fmt.Errorf("failed to parse stored time: %w", err)
			}
			*pair.dst = t
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&status.OldestStartTime, &status.LatestStartTime, &status.LatestArrival); err != nil {
			return status, fmt.Errorf("failed to get time range: %w", err)
		}
	}

	status.TableSizeBytes = ms.tableSize(status.TotalMessages)
	return status, nil
}

// tableSize estimates the on-disk size of the messages table.
func (ms *MessageStoreImpl) tableSize(rows int) int64 {
	// Rough approximation used when the backend cannot tell
	estimate := int64(rows) * 100

	var size int64
	switch ms.backend {
	case schema.SQLiteBackend:
		query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := ms.db.QueryRow(query).Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ms.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		query := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ms.db.QueryRow(query, cfg.DBName, ms.tableName).Scan(&size); err != nil {
			return estimate
		}
		return size

	case schema.PostgreSQLBackend:
		if err := ms.db.QueryRow("SELECT pg_total_relation_size($1)", ms.tableName).Scan(&size); err != nil {
			return estimate
		}
		return size

	default:
		return estimate
	}
}
