package core

import (
	"context"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/huangsam/leadtime/core/algo"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
	"golang.org/x/sync/errgroup"
)

// Estimator computes bootstrap confidence bounds for configured buckets.
// An Estimator holds no mutable state and can be shared between goroutines.
type Estimator struct {
	cfg     schema.EstimatorConfig
	workers int
	policy  schema.BucketPolicy
	logger  *slog.Logger
}

// NewEstimator validates the configuration and returns a ready Estimator.
func NewEstimator(cfg schema.EstimatorConfig, workers int, policy schema.BucketPolicy) (*Estimator, error) {
	if err := contract.ValidateEstimatorConfig(cfg); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}
	if policy == "" {
		policy = schema.FailOnEmpty
	}
	return &Estimator{
		cfg:     cfg,
		workers: workers,
		policy:  policy,
		logger:  slog.Default().With("component", "estimator"),
	}, nil
}

// Config returns the estimator configuration.
func (e *Estimator) Config() schema.EstimatorConfig {
	return e.cfg
}

// bucketTask is one (start hour, forecast hour) pair and the slot its bound goes to.
type bucketTask struct {
	spec   int
	slot   int
	key    schema.BucketKey
	clocks []time.Duration
}

// bucketOutcome is what a task leaves in its slot.
type bucketOutcome struct {
	bound schema.ConfidenceBound
	done  bool
}

// Estimate computes the bounds of every configured bucket, keeping configuration order.
// Empty buckets either fail the run or are reported in Skipped, depending on the policy.
func (e *Estimator) Estimate(ctx context.Context, observations []schema.Observation, specs []schema.BucketSpec) (*schema.EstimateOutput, error) {
	idx := algo.NewIndex(algo.Project(observations))

	// Resolve every bucket up front so the first empty one in configuration order is reported.
	outcomes := make([][]bucketOutcome, len(specs))
	var tasks []bucketTask
	var skipped []schema.SkippedBucket
	for i, spec := range specs {
		outcomes[i] = make([]bucketOutcome, len(spec.ForecastHours))
		for j, fh := range spec.ForecastHours {
			clocks, err := idx.Clocks(spec.StartHour, fh)
			if err != nil {
				if e.policy != schema.SkipEmpty {
					return nil, err
				}
				e.logger.Warn("skipping empty bucket", "start_hour", spec.StartHour, "forecast_hour", fh)
				skipped = append(skipped, schema.SkippedBucket{StartHour: spec.StartHour, ForecastHour: fh, Reason: err.Error()})
				continue
			}
			tasks = append(tasks, bucketTask{
				spec:   i,
				slot:   j,
				key:    schema.BucketKey{StartHour: spec.StartHour, ForecastHour: fh},
				clocks: clocks,
			})
		}
	}

	if err := e.run(ctx, tasks, outcomes); err != nil {
		return nil, err
	}

	results := make([]schema.ProductionTimeResult, len(specs))
	for i, spec := range specs {
		times := make([]schema.ConfidenceBound, 0, len(spec.ForecastHours))
		for _, o := range outcomes[i] {
			if o.done {
				times = append(times, o.bound)
			}
		}
		results[i] = schema.ProductionTimeResult{StartHour: spec.StartHour, Times: times}
	}

	return &schema.EstimateOutput{
		Config:       e.cfg,
		Results:      results,
		Skipped:      skipped,
		Observations: len(observations),
	}, nil
}

// run processes the tasks with a bounded pool of workers fed from a channel.
// Each task writes only to its own outcome slot.
func (e *Estimator) run(ctx context.Context, tasks []bucketTask, outcomes [][]bucketOutcome) error {
	if len(tasks) == 0 {
		return ctx.Err()
	}
	taskCh := make(chan bucketTask, len(tasks))
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)

	g, gctx := errgroup.WithContext(ctx)
	for range min(e.workers, len(tasks)) {
		g.Go(func() error {
			for t := range taskCh {
				if err := gctx.Err(); err != nil {
					return err
				}
				bound, err := e.bound(t.key, t.clocks)
				if err != nil {
					return err
				}
				outcomes[t.spec][t.slot] = bucketOutcome{bound: bound, done: true}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// A deadline hit after the last task still fails the run.
	return ctx.Err()
}

// bound bootstraps one bucket with a random source derived from its identity.
func (e *Estimator) bound(key schema.BucketKey, clocks []time.Duration) (schema.ConfidenceBound, error) {
	rng := algo.NewRand(e.cfg.Seed, bucketStream(key))
	dist, err := algo.Resample(clocks, e.cfg.BootstrapCount, e.cfg.BootstrapSample, rng)
	if err != nil {
		return schema.ConfidenceBound{}, err
	}
	lower, upper, err := algo.ConfidenceInterval(dist, e.cfg.Quantile, e.cfg.BootstrapCount)
	if err != nil {
		return schema.ConfidenceBound{}, err
	}
	e.logger.Debug("bucket estimated",
		"start_hour", key.StartHour, "forecast_hour", key.ForecastHour,
		"samples", len(clocks), "lower", lower, "upper", upper)
	return schema.ConfidenceBound{
		ForecastHour: key.ForecastHour,
		Upper:        upper,
		Lower:        lower,
		Stats:        algo.Summarize(clocks),
	}, nil
}

// bucketStream identifies a bucket's random stream independently of scheduling.
func bucketStream(key schema.BucketKey) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key.StartHour))
	return h.Sum64() ^ uint64(key.ForecastHour)
}

