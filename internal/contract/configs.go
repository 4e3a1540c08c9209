package contract

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/leadtime/schema"
)

// Default values for configuration.
const (
	DefaultBootstrapCount  = 1000
	DefaultBootstrapSample = 10
	DefaultQuantile        = 0.99
	DefaultSeed            = -1 // negative draws a seed per run
	DefaultStream          = "oper"
	DefaultProductType     = "grib2"
	DefaultProductName     = "orig"
	DefaultCycleFrequency  = "D"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// S3Config holds the object storage settings used for s3:// inputs.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string // Please use env var as this is plaintext
	SecretKey string // Please use env var as this is plaintext
	PathStyle bool
}

// BucketSpecInput is one start_hours entry from the config file.
type BucketSpecInput struct {
	StartHour     string `mapstructure:"start_hour" validate:"required,len=2,numeric"`
	ForecastHours []int  `mapstructure:"forecast_hours" validate:"dive,min=0"`
}

// EstimatorSettings are the bootstrap parameters checked by struct validation.
type EstimatorSettings struct {
	BootstrapCount  int     `mapstructure:"bootstrap-count" validate:"gt=0"`
	BootstrapSample int     `mapstructure:"bootstrap-sample" validate:"gt=0"`
	Quantile        float64 `mapstructure:"quantile" validate:"gt=0,lt=1"`
}

// Config holds the runtime configuration for every command.
// This struct remains the "final, validated" config.
type Config struct {
	Estimator    schema.EstimatorConfig
	SeedProvided bool
	Buckets      []schema.BucketSpec
	Policy       schema.BucketPolicy
	Workers      int
	Deadline     time.Duration // Zero means no deadline

	Input       string
	InputFormat schema.InputFormat
	Product     schema.ProductFilter
	Cycles      []time.Time // Empty means every cycle
	S3          S3Config

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	MessageBackend   schema.DatabaseBackend
	MessageDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	CheckCycle        time.Time
	StandardTimesFile string
	Now               time.Time
	Textfile          string
	Watch             bool

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually by each command, so no tag
	InputArg       string
	RequireBuckets bool

	// --- Fields from rootCmd.PersistentFlags() ---
	Workers          int    `mapstructure:"workers"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`
	Deadline         string `mapstructure:"deadline"`
	Input            string `mapstructure:"input"`
	InputFormat      string `mapstructure:"input-format"`
	System           string `mapstructure:"system"`
	Stream           string `mapstructure:"production-stream"`
	ProductType      string `mapstructure:"production-type"`
	ProductName      string `mapstructure:"production-name"`
	StartTime        string `mapstructure:"start-time"`
	StartTimeFreq    string `mapstructure:"start-time-freq"`
	S3Region         string `mapstructure:"s3-region"`
	S3Endpoint       string `mapstructure:"s3-endpoint"`
	S3AccessKey      string `mapstructure:"s3-access-key"`
	S3SecretKey      string `mapstructure:"s3-secret-key"`
	S3PathStyle      bool   `mapstructure:"s3-path-style"`
	MessageBackend   string `mapstructure:"message-backend"`
	MessageDBConnect string `mapstructure:"message-db-connect"`
	RunBackend       string `mapstructure:"run-backend"`
	RunDBConnect     string `mapstructure:"run-db-connect"`

	// --- Estimator settings, shared by estimate, check and mcp ---
	Estimator EstimatorSettings `mapstructure:",squash"`
	Seed      int64             `mapstructure:"seed"`
	SkipEmpty bool              `mapstructure:"skip-empty"`
	Buckets   string            `mapstructure:"buckets"`

	// --- Fields from checkCmd.Flags() ---
	Cycle         string `mapstructure:"cycle"`
	StandardTimes string `mapstructure:"standard-times"`
	Now           string `mapstructure:"now"`
	Textfile      string `mapstructure:"textfile"`
	Watch         bool   `mapstructure:"watch"`

	// --- Bucket specifications from config file ---
	StartHours []BucketSpecInput `mapstructure:"start_hours"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Buckets != nil {
		clone.Buckets = make([]schema.BucketSpec, len(c.Buckets))
		for i, b := range c.Buckets {
			clone.Buckets[i] = schema.BucketSpec{StartHour: b.StartHour, ForecastHours: slices.Clone(b.ForecastHours)}
		}
	}
	clone.Cycles = slices.Clone(c.Cycles)
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEstimator(cfg, input); err != nil {
		return err
	}
	if err := processBuckets(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processCheck(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend resolves a backend name, treating an empty name as NoneBackend.
func ParseBackend(name string) (schema.DatabaseBackend, error) {
	if name == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(name))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", name)
	}
	return backend, nil
}

// validateBackendConfigs validates message and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	var err error

	// --- Message Backend Validation ---
	if cfg.MessageBackend, err = ParseBackend(input.MessageBackend); err != nil {
		return fmt.Errorf("message store: %w", err)
	}
	cfg.MessageDBConnect = input.MessageDBConnect
	if err := ValidateDatabaseConnectionString(cfg.MessageBackend, cfg.MessageDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	if cfg.RunBackend, err = ParseBackend(input.RunBackend); err != nil {
		return fmt.Errorf("run store: %w", err)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// Validate that message and run stores use different SQLite files
	if cfg.MessageBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		messagePath := cfg.MessageDBConnect
		if messagePath == "" {
			messagePath = GetMessageDBFilePath()
		}
		runPath := cfg.RunDBConnect
		if runPath == "" {
			runPath = GetRunDBFilePath()
		}
		if messagePath == runPath && messagePath != ":memory:" {
			return fmt.Errorf("message and run storage must use different SQLite database files. Both resolve to %q", messagePath)
		}
	}

	if cfg.InputFormat == schema.StoreInput && cfg.MessageBackend == schema.NoneBackend {
		return fmt.Errorf("input 'store' requires a message backend")
	}
	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet, xlsx", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for %s output", cfg.Output)
	}

	// --- 3. Deadline ---
	cfg.Deadline = 0
	if input.Deadline != "" {
		d, err := time.ParseDuration(input.Deadline)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid --deadline '%s'. must be a positive Go duration like 90s or 5m", input.Deadline)
		}
		cfg.Deadline = d
	}
	return nil
}

// processEstimator validates the bootstrap parameters and resolves the seed.
func processEstimator(cfg *Config, input *ConfigRawInput) error {
	if err := ValidateEstimatorSettings(input.Estimator); err != nil {
		return err
	}
	cfg.Estimator = schema.EstimatorConfig{
		BootstrapCount:  input.Estimator.BootstrapCount,
		BootstrapSample: input.Estimator.BootstrapSample,
		Quantile:        input.Estimator.Quantile,
	}

	if input.Seed >= 0 {
		cfg.Estimator.Seed = uint64(input.Seed)
		cfg.SeedProvided = true
	} else {
		// Keep drawn seeds within int64 so they can be stored and passed back via --seed.
		cfg.Estimator.Seed = rand.Uint64() >> 1
		cfg.SeedProvided = false
	}

	cfg.Policy = schema.FailOnEmpty
	if input.SkipEmpty {
		cfg.Policy = schema.SkipEmpty
	}
	return nil
}

// processBuckets builds the bucket specifications from --buckets or the config file.
func processBuckets(cfg *Config, input *ConfigRawInput) error {
	specs := input.StartHours
	cfg.Buckets = nil
	if input.Buckets != "" {
		parsed, err := ParseBucketsFlag(input.Buckets)
		if err != nil {
			return err
		}
		specs = parsed
	}
	if len(specs) == 0 && !input.RequireBuckets {
		return nil
	}
	buckets, err := ValidateBucketSpecs(specs)
	if err != nil {
		return err
	}
	cfg.Buckets = buckets
	return nil
}

// ParseBucketsFlag parses the compact "00=0,3,6;12=0,6" bucket notation.
func ParseBucketsFlag(s string) ([]BucketSpecInput, error) {
	var specs []BucketSpecInput
	for entry := range strings.SplitSeq(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		hour, hoursStr, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, &schema.ConfigurationError{Field: "buckets", Reason: fmt.Sprintf("entry %q must look like HH=fh1,fh2", entry)}
		}
		spec := BucketSpecInput{StartHour: strings.TrimSpace(hour), ForecastHours: []int{}}
		for part := range strings.SplitSeq(hoursStr, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			fh, err := strconv.Atoi(part)
			if err != nil {
				return nil, &schema.ConfigurationError{Field: "buckets", Reason: fmt.Sprintf("forecast hour %q is not an integer", part)}
			}
			spec.ForecastHours = append(spec.ForecastHours, fh)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// processSource resolves where observations come from.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.Input = input.Input
	if input.InputArg != "" {
		cfg.Input = input.InputArg
	}

	format, err := ResolveInputFormat(cfg.Input, input.InputFormat)
	if err != nil {
		return err
	}
	cfg.InputFormat = format

	cfg.Product = schema.ProductFilter{
		System: input.System,
		Stream: valueOr(input.Stream, DefaultStream),
		Type:   valueOr(input.ProductType, DefaultProductType),
		Name:   valueOr(input.ProductName, DefaultProductName),
	}
	if cfg.InputFormat == schema.StoreInput && cfg.Product.System == "" {
		return fmt.Errorf("--system is required when reading from the message store")
	}

	cfg.S3 = S3Config{
		Region:    input.S3Region,
		Endpoint:  input.S3Endpoint,
		AccessKey: input.S3AccessKey,
		SecretKey: input.S3SecretKey,
		PathStyle: input.S3PathStyle,
	}

	cfg.Cycles = nil
	if input.StartTime != "" {
		cycles, err := ParseCycleSelection(input.StartTime, input.StartTimeFreq)
		if err != nil {
			return err
		}
		cfg.Cycles = cycles
	}
	return nil
}

// ResolveInputFormat returns the explicit format, or infers one from the input name.
func ResolveInputFormat(inputName, explicit string) (schema.InputFormat, error) {
	if explicit != "" {
		format := schema.InputFormat(strings.ToLower(explicit))
		if _, ok := schema.ValidInputFormats[format]; !ok {
			return "", fmt.Errorf("invalid input format '%s'. must be csv, json, parquet, xlsx, store", explicit)
		}
		return format, nil
	}
	if inputName == "" || inputName == string(schema.StoreInput) {
		return schema.StoreInput, nil
	}
	switch strings.ToLower(filepath.Ext(inputName)) {
	case ".csv":
		return schema.CSVInput, nil
	case ".json":
		return schema.JSONInput, nil
	case ".parquet":
		return schema.ParquetInput, nil
	case ".xlsx":
		return schema.XLSXInput, nil
	default:
		return "", fmt.Errorf("cannot infer input format of %q. use --input-format", inputName)
	}
}

// processCheck parses the delay check settings.
func processCheck(cfg *Config, input *ConfigRawInput) error {
	cfg.StandardTimesFile = input.StandardTimes
	cfg.Textfile = input.Textfile
	cfg.Watch = input.Watch

	cfg.CheckCycle = time.Time{}
	if input.Cycle != "" {
		cycle, err := ParseCycleTime(input.Cycle)
		if err != nil {
			return err
		}
		cfg.CheckCycle = cycle
	}

	cfg.Now = time.Time{}
	if input.Now != "" {
		now, err := time.Parse(DateTimeFormat, input.Now)
		if err != nil {
			return fmt.Errorf("invalid --now '%s'. must be %s", input.Now, DateTimeFormat)
		}
		cfg.Now = now
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
