// Package metrics exports delay checks as Prometheus gauges for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/huangsam/leadtime/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leadtime"

// checkGauges are the gauges of one check, registered on a private registry.
type checkGauges struct {
	passed    *prometheus.GaugeVec
	status    *prometheus.GaugeVec
	counts    *prometheus.GaugeVec
	clock     *prometheus.GaugeVec
	deviation *prometheus.GaugeVec
	lower     *prometheus.GaugeVec
	upper     *prometheus.GaugeVec
	checkedAt prometheus.Gauge
}

func newCheckGauges(reg prometheus.Registerer) *checkGauges {
	factory := promauto.With(reg)
	byStep := []string{"start_hour", "forecast_hour"}
	return &checkGauges{
		passed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_passed",
			Help:      "1 if no product of the cycle is late or missing",
		}, []string{"cycle", "start_hour"}),
		status: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_status",
			Help:      "1 for the delay status of each forecast hour",
		}, []string{"start_hour", "forecast_hour", "status"}),
		counts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_status_count",
			Help:      "Number of forecast hours per delay status",
		}, []string{"status"}),
		clock: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_clock_seconds",
			Help:      "Arrival clock, or elapsed time when nothing arrived",
		}, byStep),
		deviation: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_deviation_seconds",
			Help:      "Distance outside the standard time window",
		}, byStep),
		lower: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "standard_time_lower_seconds",
			Help:      "Lower bound of the standard time window",
		}, byStep),
		upper: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "standard_time_upper_seconds",
			Help:      "Upper bound of the standard time window",
		}, byStep),
		checkedAt: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "check_timestamp_seconds",
			Help:      "Unix time the check ran",
		}),
	}
}

func (g *checkGauges) observe(result *schema.CheckResult) {
	passed := 0.0
	if result.Passed {
		passed = 1
	}
	g.passed.WithLabelValues(result.Cycle.UTC().Format(schema.CycleLayout), result.StartHour).Set(passed)
	g.checkedAt.Set(float64(result.CheckedAt.Unix()))

	for _, status := range schema.AllDelayStatuses {
		g.counts.WithLabelValues(string(status)).Set(float64(result.Counts[status]))
	}
	for _, item := range result.Items {
		fh := strconv.Itoa(item.ForecastHour)
		for _, status := range schema.AllDelayStatuses {
			v := 0.0
			if item.Status == status {
				v = 1
			}
			g.status.WithLabelValues(result.StartHour, fh, string(status)).Set(v)
		}
		g.clock.WithLabelValues(result.StartHour, fh).Set(item.Clock.Seconds())
		g.deviation.WithLabelValues(result.StartHour, fh).Set(item.Deviation.Seconds())
		g.lower.WithLabelValues(result.StartHour, fh).Set(item.Lower.Seconds())
		g.upper.WithLabelValues(result.StartHour, fh).Set(item.Upper.Seconds())
	}
}

// WriteCheckTextfile writes the gauges of a check to path, replacing the file atomically.
func WriteCheckTextfile(path string, result *schema.CheckResult) error {
	if path == "" {
		return fmt.Errorf("textfile path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create textfile directory: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	newCheckGauges(reg).observe(result)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write textfile %s: %w", path, err)
	}
	slog.Debug("metrics: wrote textfile", "path", path, "items", len(result.Items))
	return nil
}
