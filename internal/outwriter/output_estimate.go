package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/parquet"
	"github.com/huangsam/leadtime/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var standardTimesHeader = []string{
	"start_hour",
	"forecast_hour",
	"lower_duration",
	"upper_duration",
	"lower_seconds",
	"upper_seconds",
	"sample_count",
	"mean_seconds",
	"std_dev_seconds",
}

// WriteStandardTimes outputs the estimate, dispatching based on the output format configured.
// JSON and YAML hold exactly the standard time list so it can be read back by check.
func WriteStandardTimes(output *schema.EstimateOutput, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.ToStandardTimes(output.Results))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.ToStandardTimes(output.Results))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, standardTimesHeader, func(cw *csv.Writer) error {
				for _, row := range standardTimeRows(output.Results) {
					if err := cw.Write(stringifyRow(row)); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(cfg.OutputFile, func(path string) error {
			return parquet.WriteRowsFile(parquet.ConvertResults(output.Results), path)
		})
	case schema.XLSXOut:
		return writeXLSX(cfg.OutputFile, "standard_times", standardTimesHeader, standardTimeRows(output.Results))
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStandardTimesTable(output, cfg, duration, w)
		}, "Wrote table")
	}
}

// standardTimeRows flattens the results into typed rows shared by CSV and XLSX.
func standardTimeRows(results []schema.ProductionTimeResult) [][]any {
	var rows [][]any
	for _, r := range results {
		for _, b := range r.Times {
			rows = append(rows, []any{
				r.StartHour,
				b.ForecastHour,
				schema.FormatISODuration(b.Lower),
				schema.FormatISODuration(b.Upper),
				int64(b.Lower / time.Second),
				int64(b.Upper / time.Second),
				b.Stats.Count,
				b.Stats.Mean.Seconds(),
				b.Stats.StdDev.Seconds(),
			})
		}
	}
	return rows
}

// stringifyRow formats typed cells for CSV.
func stringifyRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case string:
			out[i] = val
		case int:
			out[i] = strconv.Itoa(val)
		case int64:
			out[i] = strconv.FormatInt(val, 10)
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', 3, 64)
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}

// writeStandardTimesTable generates and writes the human-readable table.
func writeStandardTimesTable(output *schema.EstimateOutput, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	tbl := tablewriter.NewWriter(writer)
	tbl.Header([]string{"Start", "Step", "Lower", "Upper", "Window", "Samples", "Mean", "StdDev"})
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	buckets := 0
	for _, r := range output.Results {
		for _, b := range r.Times {
			buckets++
			data = append(data, []string{
				r.StartHour,
				formatStep(b.ForecastHour),
				formatClock(b.Lower),
				formatClock(b.Upper),
				formatClock(b.Upper - b.Lower),
				strconv.Itoa(b.Stats.Count),
				formatClock(b.Stats.Mean),
				formatClock(b.Stats.StdDev),
			})
		}
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	est := output.Config
	if _, err := fmt.Fprintf(writer, "Estimated %d buckets from %d observations (bootstrap %dx%d, quantile %g, seed %d)\n",
		buckets, output.Observations, est.BootstrapCount, est.BootstrapSample, est.Quantile, est.Seed); err != nil {
		return err
	}
	if len(output.Skipped) > 0 {
		warn := paint(cfg, color.FgYellow)
		names := make([]string, len(output.Skipped))
		for i, s := range output.Skipped {
			names[i] = s.StartHour + "/" + formatStep(s.ForecastHour)
		}
		if _, err := fmt.Fprintln(writer, warn(fmt.Sprintf("Skipped %d empty buckets: %s", len(output.Skipped), strings.Join(names, ", ")))); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Estimate completed in %v with %d workers. Run backend: %s\n", duration, cfg.Workers, cfg.RunBackend); err != nil {
		return err
	}
	return nil
}
