// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStandardTimes prints estimated standard times using the configured output format.
func (ow *OutWriter) WriteStandardTimes(output *schema.EstimateOutput, cfg *contract.Config, duration time.Duration) error {
	return WriteStandardTimes(output, cfg, duration)
}

// WriteCheck prints a delay check using the configured output format.
func (ow *OutWriter) WriteCheck(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCheckResult(result, cfg, duration)
}

// WriteObservations prints the observation table using the configured output format.
func (ow *OutWriter) WriteObservations(observations []schema.Observation, cfg *contract.Config) error {
	return WriteObservations(observations, cfg)
}

// WriteGrid prints the step grid using the configured output format.
func (ow *OutWriter) WriteGrid(grid *schema.StepGrid, cfg *contract.Config) error {
	return WriteGrid(grid, cfg)
}
