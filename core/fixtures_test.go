package core

import (
	"context"
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/mock"
)

// MockOutputWriter records what the executors hand to the output layer.
type MockOutputWriter struct {
	mock.Mock
}

var _ contract.OutputWriter = &MockOutputWriter{} // Compile-time check

func (m *MockOutputWriter) WriteStandardTimes(output *schema.EstimateOutput, cfg *contract.Config, duration time.Duration) error {
	args := m.Called(output, cfg, duration)
	return args.Error(0)
}

func (m *MockOutputWriter) WriteCheck(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	args := m.Called(result, cfg, duration)
	return args.Error(0)
}

func (m *MockOutputWriter) WriteObservations(observations []schema.Observation, cfg *contract.Config) error {
	args := m.Called(observations, cfg)
	return args.Error(0)
}

func (m *MockOutputWriter) WriteGrid(grid *schema.StepGrid, cfg *contract.Config) error {
	args := m.Called(grid, cfg)
	return args.Error(0)
}

// sliceSource serves a fixed observation table.
// With filter set it honours the cycle selection the way file and store sources do.
type sliceSource struct {
	observations []schema.Observation
	filter       bool
	err          error
	loads        int
	lastCycles   []time.Time
}

func (s *sliceSource) Load(_ context.Context, cycles []time.Time) ([]schema.Observation, error) {
	s.loads++
	s.lastCycles = cycles
	if s.err != nil {
		return nil, s.err
	}
	out := make([]schema.Observation, len(s.observations))
	copy(out, s.observations)
	if s.filter {
		return table.FilterCycles(out, cycles), nil
	}
	return out, nil
}

func (s *sliceSource) Describe() string { return "fixture" }

// cycleAt returns the cycle start time of the given day in March 2025.
func cycleAt(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

// obs builds an observation arriving clock after its cycle start.
func obs(cycle time.Time, fh int, clock time.Duration) schema.Observation {
	return schema.Observation{StartTime: cycle, ForecastHour: fh, ArrivalTime: cycle.Add(clock)}
}

// history returns days cycles at 00 UTC where fh 0 lands at 03:40 and fh 6 at 04:10.
func history(days int) []schema.Observation {
	var out []schema.Observation
	for d := 1; d <= days; d++ {
		c := cycleAt(d, 0)
		out = append(out,
			obs(c, 0, 3*time.Hour+40*time.Minute),
			obs(c, 6, 4*time.Hour+10*time.Minute),
		)
	}
	return out
}

// testConfig returns a small estimate configuration over the 00 start hour.
func testConfig() *contract.Config {
	return &contract.Config{
		Estimator: schema.EstimatorConfig{
			BootstrapCount:  50,
			BootstrapSample: 5,
			Quantile:        0.9,
			Seed:            7,
		},
		SeedProvided: true,
		Buckets:      []schema.BucketSpec{{StartHour: "00", ForecastHours: []int{0, 6}}},
		Policy:       schema.FailOnEmpty,
		Workers:      2,
		Output:       schema.JSONOut,
	}
}
