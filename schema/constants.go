package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// InputFormat represents the encoding of an observation table.
	InputFormat string

	// DatabaseBackend represents the database backend for the message and run stores.
	DatabaseBackend string

	// BucketPolicy decides what happens when a configured bucket has no observations.
	BucketPolicy string

	// DelayStatus classifies a product arrival against its standard time.
	DelayStatus string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
)

// All input formats supported.
const (
	CSVInput     InputFormat = "csv"
	JSONInput    InputFormat = "json"
	ParquetInput InputFormat = "parquet"
	XLSXInput    InputFormat = "xlsx"
	StoreInput   InputFormat = "store"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Empty bucket policies.
const (
	FailOnEmpty BucketPolicy = "fail" // default
	SkipEmpty   BucketPolicy = "skip"
)

// Delay statuses reported by the check command.
const (
	OnTimeStatus  DelayStatus = "on_time"
	EarlyStatus   DelayStatus = "early"
	LateStatus    DelayStatus = "late"
	MissingStatus DelayStatus = "missing"
	PendingStatus DelayStatus = "pending"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
}

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	CSVInput:     {},
	JSONInput:    {},
	ParquetInput: {},
	XLSXInput:    {},
	StoreInput:   {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllDelayStatuses lists delay statuses in report order.
var AllDelayStatuses = []DelayStatus{OnTimeStatus, EarlyStatus, LateStatus, MissingStatus, PendingStatus}

// IsAbnormal reports whether the status should fail a delay check.
func (s DelayStatus) IsAbnormal() bool {
	return s == LateStatus || s == MissingStatus
}
