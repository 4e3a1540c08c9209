package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/metrics"
	"github.com/huangsam/leadtime/schema"
)

// ErrCheckFailed is returned when a checked cycle has late or missing products.
var ErrCheckFailed = errors.New("delay check failed")

// watchDebounce groups the burst of events one file save produces.
const watchDebounce = 500 * time.Millisecond

// runCheckCore runs every builder step and returns the result.
func runCheckCore(ctx context.Context, cfg *contract.Config, src contract.ObservationSource) (*schema.CheckResult, error) {
	builder := NewCheckResultBuilder(ctx, cfg, src)

	if _, err := builder.ValidatePrerequisites(); err != nil {
		return nil, err
	}
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		logCheckHeader(cfg, src.Describe())
	}
	if _, err := builder.LoadObservations(); err != nil {
		return nil, err
	}
	if _, err := builder.ResolveStandardTimes(); err != nil {
		return nil, err
	}
	return builder.Classify().BuildResult().GetResult(), nil
}

// ExecuteCheck runs the delay check for one cycle and writes the result.
// It returns ErrCheckFailed when any product is late or missing.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, src contract.ObservationSource, w contract.OutputWriter) error {
	start := time.Now()
	ctx, cancel := withDeadline(ctx, cfg)
	defer cancel()

	result, err := runCheckCore(ctx, cfg, src)
	if err != nil {
		return err
	}
	if err := w.WriteCheck(result, cfg, time.Since(start)); err != nil {
		return err
	}
	if cfg.Textfile != "" {
		if err := metrics.WriteCheckTextfile(cfg.Textfile, result); err != nil {
			return fmt.Errorf("failed to write textfile metrics: %w", err)
		}
	}
	if !result.Passed {
		return ErrCheckFailed
	}
	return nil
}

// WatchCheck runs the check once, then again every time the input file changes,
// until the context is cancelled. Failed checks are logged and do not stop the watch.
func WatchCheck(ctx context.Context, cfg *contract.Config, src contract.ObservationSource, w contract.OutputWriter) error {
	if cfg.Input == "" || cfg.InputFormat == schema.StoreInput {
		return errors.New("--watch needs a local input file")
	}
	logger := slog.Default().With("component", "watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so editors that replace the file are still seen.
	target := filepath.Clean(cfg.Input)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}

	runOnce := func() {
		err := ExecuteCheck(ctx, cfg, src, w)
		switch {
		case err == nil:
			logger.Info("check passed", "input", target)
		case errors.Is(err, ErrCheckFailed):
			logger.Warn("check failed", "input", target)
		default:
			logger.Error("check could not run", "input", target, "error", err)
		}
	}
	runOnce()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("input changed", "event", event.Op.String())
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-debounce:
			debounce = nil
			runOnce()
		}
	}
}
