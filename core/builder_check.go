package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/huangsam/leadtime/schema"
)

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	cfg          *contract.Config
	src          contract.ObservationSource
	ctx          context.Context
	startHour    string
	spec         schema.BucketSpec
	observations []schema.Observation
	bounds       schema.ProductionTimeResult
	now          time.Time
	items        []schema.CheckItem
	result       *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
func NewCheckResultBuilder(ctx context.Context, cfg *contract.Config, src contract.ObservationSource) *CheckResultBuilder {
	return &CheckResultBuilder{
		cfg: cfg,
		src: src,
		ctx: ctx,
	}
}

// ValidatePrerequisites checks that a cycle is given and that it has something to check.
func (b *CheckResultBuilder) ValidatePrerequisites() (*CheckResultBuilder, error) {
	if b.cfg.CheckCycle.IsZero() {
		return nil, fmt.Errorf("check command requires --cycle. Example: leadtime check --cycle 2024010112 messages.csv")
	}
	b.startHour = b.cfg.CheckCycle.Format(schema.StartHourLayout)

	if b.cfg.StandardTimesFile != "" {
		return b, nil
	}
	for _, spec := range b.cfg.Buckets {
		if spec.StartHour == b.startHour {
			b.spec = spec
			return b, nil
		}
	}
	return nil, &schema.ConfigurationError{
		Field:  "start_hours",
		Reason: fmt.Sprintf("no forecast hours configured for start hour %s", b.startHour),
	}
}

// LoadObservations reads the observations needed for the check.
// Estimating standard times needs the history, a standard times file only the checked cycle.
// A history selection always gets the checked cycle added so its arrivals are seen.
func (b *CheckResultBuilder) LoadObservations() (*CheckResultBuilder, error) {
	var cycles []time.Time
	switch {
	case b.cfg.StandardTimesFile != "":
		cycles = []time.Time{b.cfg.CheckCycle}
	case len(b.cfg.Cycles) > 0 && !slices.ContainsFunc(b.cfg.Cycles, b.cfg.CheckCycle.Equal):
		cycles = append(slices.Clone(b.cfg.Cycles), b.cfg.CheckCycle)
	default:
		cycles = b.cfg.Cycles
	}
	observations, err := b.src.Load(b.ctx, cycles)
	if err != nil {
		return nil, err
	}
	b.observations = observations
	return b, nil
}

// ResolveStandardTimes reads the bounds of the checked start hour from file, or estimates
// them from the cycles before the checked one.
func (b *CheckResultBuilder) ResolveStandardTimes() (*CheckResultBuilder, error) {
	if b.cfg.StandardTimesFile != "" {
		results, err := table.ReadStandardTimes(b.cfg.StandardTimesFile)
		if err != nil {
			return nil, err
		}
		bounds, ok := schema.FindBounds(results, b.startHour)
		if !ok {
			return nil, fmt.Errorf("standard times file %s has no entry for start hour %s", b.cfg.StandardTimesFile, b.startHour)
		}
		b.bounds = bounds
		return b, nil
	}

	history := make([]schema.Observation, 0, len(b.observations))
	for _, o := range b.observations {
		if o.StartTime.Before(b.cfg.CheckCycle) {
			history = append(history, o)
		}
	}
	logDrawnSeed(slog.Default().With("component", "check"), b.cfg)
	estimator, err := NewEstimator(b.cfg.Estimator, b.cfg.Workers, b.cfg.Policy)
	if err != nil {
		return nil, err
	}
	output, err := estimator.Estimate(b.ctx, history, []schema.BucketSpec{b.spec})
	if err != nil {
		return nil, fmt.Errorf("cannot estimate standard times before cycle %s: %w", b.cfg.CheckCycle.Format(schema.CycleLayout), err)
	}
	b.bounds = output.Results[0]
	return b, nil
}

// Classify compares each forecast hour of the cycle against its window.
func (b *CheckResultBuilder) Classify() *CheckResultBuilder {
	b.now = b.cfg.Now
	if b.now.IsZero() {
		b.now = time.Now().UTC()
	}

	arrivals := firstArrivals(b.observations, b.cfg.CheckCycle)
	b.items = make([]schema.CheckItem, 0, len(b.bounds.Times))
	for _, bound := range b.bounds.Times {
		var arrival *time.Time
		if t, ok := arrivals[bound.ForecastHour]; ok {
			arrival = &t
		}
		b.items = append(b.items, ClassifyArrival(bound, b.cfg.CheckCycle, arrival, b.now))
	}
	return b
}

// BuildResult constructs the final CheckResult.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	counts := make(map[schema.DelayStatus]int, len(schema.AllDelayStatuses))
	passed := true
	for _, item := range b.items {
		counts[item.Status]++
		if item.Status.IsAbnormal() {
			passed = false
			slog.Warn("check: abnormal delay",
				"cycle", b.cfg.CheckCycle.Format(schema.CycleLayout),
				"forecast_hour", item.ForecastHour, "status", item.Status, "deviation", item.Deviation)
		}
	}
	b.result = &schema.CheckResult{
		Passed:    passed,
		Cycle:     b.cfg.CheckCycle,
		StartHour: b.startHour,
		CheckedAt: b.now,
		Items:     b.items,
		Counts:    counts,
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}

// firstArrivals returns the earliest arrival per forecast hour of one cycle.
func firstArrivals(observations []schema.Observation, cycle time.Time) map[int]time.Time {
	arrivals := make(map[int]time.Time)
	for _, o := range observations {
		if !o.StartTime.Equal(cycle) {
			continue
		}
		if prev, ok := arrivals[o.ForecastHour]; !ok || o.ArrivalTime.Before(prev) {
			arrivals[o.ForecastHour] = o.ArrivalTime
		}
	}
	return arrivals
}

// ClassifyArrival places one product of a cycle relative to its expected window.
// Without an arrival the product is missing once the window has closed, pending before that.
func ClassifyArrival(bound schema.ConfidenceBound, cycle time.Time, arrival *time.Time, now time.Time) schema.CheckItem {
	item := schema.CheckItem{
		ForecastHour: bound.ForecastHour,
		Arrival:      arrival,
		Lower:        bound.Lower,
		Upper:        bound.Upper,
	}
	if arrival == nil {
		item.Clock = now.Sub(cycle)
		if item.Clock > bound.Upper {
			item.Status = schema.MissingStatus
			item.Deviation = item.Clock - bound.Upper
		} else {
			item.Status = schema.PendingStatus
		}
		return item
	}

	item.Clock = arrival.Sub(cycle)
	switch {
	case item.Clock < bound.Lower:
		item.Status = schema.EarlyStatus
		item.Deviation = item.Clock - bound.Lower
	case item.Clock > bound.Upper:
		item.Status = schema.LateStatus
		item.Deviation = item.Clock - bound.Upper
	default:
		item.Status = schema.OnTimeStatus
	}
	return item
}
