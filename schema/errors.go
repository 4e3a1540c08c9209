package schema

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrSampling         = errors.New("sampling error")
)

// ConfigurationError reports an invalid estimator configuration or bucket specification.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InsufficientDataError reports a configured bucket with no observations.
type InsufficientDataError struct {
	StartHour    string
	ForecastHour int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no observations for start hour %s and forecast hour %d", e.StartHour, e.ForecastHour)
}

// Is matches ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Key returns the bucket the error refers to.
func (e *InsufficientDataError) Key() BucketKey {
	return BucketKey{StartHour: e.StartHour, ForecastHour: e.ForecastHour}
}

// SamplingError reports a broken bootstrap invariant. It is never recoverable.
type SamplingError struct {
	Reason string
}

func (e *SamplingError) Error() string {
	return "bootstrap sampling failed: " + e.Reason
}

// Is matches ErrSampling.
func (e *SamplingError) Is(target error) bool {
	return target == ErrSampling
}
