// Package core has core logic for standard time estimation and delay checks.
package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
)

// ExecuteEstimate runs the bootstrap estimation and writes the standard times.
// It serves as the main entry point for the 'estimate' command.
func ExecuteEstimate(ctx context.Context, cfg *contract.Config, src contract.ObservationSource, mgr contract.StoreManager, w contract.OutputWriter) error {
	start := time.Now()
	ctx, cancel := withDeadline(ctx, cfg)
	defer cancel()

	output, err := runEstimateCore(ctx, cfg, src, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return w.WriteStandardTimes(output, cfg, duration)
}

// Estimate runs the estimation without output or tracking, for embedding callers.
func Estimate(ctx context.Context, cfg *contract.Config, src contract.ObservationSource) (*schema.EstimateOutput, error) {
	ctx, cancel := withDeadline(ctx, cfg)
	defer cancel()
	return runEstimateCore(withSuppressHeader(ctx), cfg, src, nil)
}

// Check runs the delay check without output, for embedding callers.
func Check(ctx context.Context, cfg *contract.Config, src contract.ObservationSource) (*schema.CheckResult, error) {
	ctx, cancel := withDeadline(ctx, cfg)
	defer cancel()
	return runCheckCore(withSuppressHeader(ctx), cfg, src)
}

// ExecuteTable loads the observation table and writes it in a normalized order.
func ExecuteTable(ctx context.Context, cfg *contract.Config, src contract.ObservationSource, w contract.OutputWriter) error {
	observations, err := src.Load(ctx, cfg.Cycles)
	if err != nil {
		return err
	}
	SortObservations(observations)
	return w.WriteObservations(observations, cfg)
}

// ExecuteGrid loads the observation table and writes the cycle by forecast hour grid.
func ExecuteGrid(ctx context.Context, cfg *contract.Config, src contract.ObservationSource, w contract.OutputWriter) error {
	observations, err := src.Load(ctx, cfg.Cycles)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		return errors.New("no observations found")
	}
	return w.WriteGrid(BuildStepGrid(observations), cfg)
}

// ExecuteImport loads observations from a source and upserts them into the message store.
func ExecuteImport(ctx context.Context, cfg *contract.Config, src contract.ObservationSource, mgr contract.StoreManager) error {
	if cfg.Product.System == "" {
		return errors.New("--system is required to import messages")
	}
	messages := mgr.GetMessageStore()
	if messages == nil || cfg.MessageBackend == schema.NoneBackend {
		return errors.New("message store is disabled. set --message-backend")
	}
	observations, err := src.Load(ctx, cfg.Cycles)
	if err != nil {
		return err
	}
	written, err := messages.Import(cfg.Product, observations)
	if err != nil {
		return fmt.Errorf("failed to import messages: %w", err)
	}
	slog.Info("store: messages imported", "source", src.Describe(), "rows", written)
	fmt.Printf("Imported %d messages from %s for %s/%s/%s/%s\n", written, src.Describe(),
		cfg.Product.System, cfg.Product.Stream, cfg.Product.Type, cfg.Product.Name)
	return nil
}

// SortObservations orders observations by cycle, forecast hour, then arrival.
func SortObservations(observations []schema.Observation) {
	slices.SortStableFunc(observations, func(a, b schema.Observation) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		if c := cmp.Compare(a.ForecastHour, b.ForecastHour); c != 0 {
			return c
		}
		return a.ArrivalTime.Compare(b.ArrivalTime)
	})
}
