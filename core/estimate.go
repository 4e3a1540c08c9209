package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
)

// runEstimateCore performs the common Load, Estimate, and Track steps.
func runEstimateCore(ctx context.Context, cfg *contract.Config, src contract.ObservationSource, mgr contract.StoreManager) (*schema.EstimateOutput, error) {
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		logEstimateHeader(cfg, src.Describe())
	}
	logger := slog.Default().With("component", "estimate")
	logDrawnSeed(logger, cfg)

	estimator, err := NewEstimator(cfg.Estimator, cfg.Workers, cfg.Policy)
	if err != nil {
		return nil, err
	}

	// --- 1. Load Phase ---
	observations, err := src.Load(ctx, cfg.Cycles)
	if err != nil {
		return nil, err
	}
	logger.Info("observations loaded", "source", src.Describe(), "count", len(observations))

	// --- 2. Begin Run Tracking (if configured) ---
	runStore := getRunStore(mgr)
	if runStore != nil {
		configParams := map[string]any{
			"bootstrap_count":  cfg.Estimator.BootstrapCount,
			"bootstrap_sample": cfg.Estimator.BootstrapSample,
			"quantile":         cfg.Estimator.Quantile,
			"policy":           string(cfg.Policy),
			"source":           src.Describe(),
			"workers":          cfg.Workers,
			"buckets":          cfg.Buckets,
		}
		runID, err := runStore.BeginRun(time.Now(), cfg.Estimator.Seed, configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 3. Estimate ---
	output, err := estimator.Estimate(ctx, observations, cfg.Buckets)
	if err != nil {
		if runID, ok := getRunID(ctx); ok && runStore != nil {
			// Close the record of the failed run
			if endErr := runStore.EndRun(runID, time.Now(), 0, 0); endErr != nil {
				contract.LogWarn("Failed to finalize run tracking", endErr)
			}
		}
		return nil, err
	}

	// --- 4. End Run Tracking ---
	if runID, ok := getRunID(ctx); ok && runStore != nil {
		recordRun(runStore, runID, output)
	}
	return output, nil
}

// logDrawnSeed reports a seed drawn for this run. It logs at warn so the default
// log level still shows what --seed reproduces the run.
func logDrawnSeed(logger *slog.Logger, cfg *contract.Config) {
	if !cfg.SeedProvided {
		logger.Warn("drew a random seed, pass --seed to reproduce this run", "seed", cfg.Estimator.Seed)
	}
}

// recordRun stores every bound of the run and closes the run record.
func recordRun(runStore contract.RunStore, runID int64, output *schema.EstimateOutput) {
	total := 0
	for _, result := range output.Results {
		for _, bound := range result.Times {
			total++
			if err := runStore.RecordBounds(runID, result.StartHour, bound); err != nil {
				contract.LogWarn("Failed to record bounds", err)
			}
		}
	}
	total += len(output.Skipped)
	if err := runStore.EndRun(runID, time.Now(), total, len(output.Skipped)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// getRunStore returns the run store, or nil when tracking is off.
func getRunStore(mgr contract.StoreManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// withDeadline bounds the context by the configured run deadline.
func withDeadline(ctx context.Context, cfg *contract.Config) (context.Context, context.CancelFunc) {
	if cfg.Deadline > 0 {
		return context.WithTimeout(ctx, cfg.Deadline)
	}
	return context.WithCancel(ctx)
}
