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
	"github.com/huangsam/leadtime/internal/table"
	"github.com/huangsam/leadtime/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var checkHeader = []string{
	"cycle",
	"forecast_hour",
	"status",
	"arrival",
	"clock",
	"lower",
	"upper",
	"deviation",
}

// checkItemView is the serialized form of a CheckItem.
type checkItemView struct {
	ForecastHour int    `json:"forecast_hour" yaml:"forecast_hour"`
	Status       string `json:"status" yaml:"status"`
	Arrival      string `json:"arrival,omitempty" yaml:"arrival,omitempty"`
	Clock        string `json:"clock" yaml:"clock"`
	Lower        string `json:"lower" yaml:"lower"`
	Upper        string `json:"upper" yaml:"upper"`
	Deviation    string `json:"deviation" yaml:"deviation"`
}

// checkView is the serialized form of a CheckResult.
type checkView struct {
	Passed    bool            `json:"passed" yaml:"passed"`
	Cycle     string          `json:"cycle" yaml:"cycle"`
	StartHour string          `json:"start_hour" yaml:"start_hour"`
	CheckedAt string          `json:"checked_at" yaml:"checked_at"`
	Counts    map[string]int  `json:"counts" yaml:"counts"`
	Items     []checkItemView `json:"items" yaml:"items"`
}

// WriteCheckResult outputs a delay check, dispatching based on the output format configured.
func WriteCheckResult(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, newCheckView(result))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, newCheckView(result))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, checkHeader, func(cw *csv.Writer) error {
				for _, row := range checkRows(result) {
					if err := cw.Write(stringifyRow(row)); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(cfg.OutputFile, func(path string) error {
			return parquet.WriteRowsFile(parquet.ConvertCheckResult(result), path)
		})
	case schema.XLSXOut:
		return writeXLSX(cfg.OutputFile, "check", checkHeader, checkRows(result))
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckTable(result, cfg, duration, w)
		}, "Wrote table")
	}
}

// newCheckView converts a result into its serialized form.
func newCheckView(result *schema.CheckResult) checkView {
	view := checkView{
		Passed:    result.Passed,
		Cycle:     result.Cycle.UTC().Format(schema.CycleLayout),
		StartHour: result.StartHour,
		CheckedAt: table.FormatTimestamp(result.CheckedAt),
		Counts:    make(map[string]int, len(result.Counts)),
		Items:     make([]checkItemView, len(result.Items)),
	}
	for status, n := range result.Counts {
		view.Counts[string(status)] = n
	}
	for i, item := range result.Items {
		view.Items[i] = checkItemView{
			ForecastHour: item.ForecastHour,
			Status:       string(item.Status),
			Arrival:      formatArrival(item.Arrival),
			Clock:        schema.FormatISODuration(item.Clock),
			Lower:        schema.FormatISODuration(item.Lower),
			Upper:        schema.FormatISODuration(item.Upper),
			Deviation:    schema.FormatISODuration(item.Deviation),
		}
	}
	return view
}

// checkRows flattens the items into typed rows shared by CSV and XLSX.
func checkRows(result *schema.CheckResult) [][]any {
	cycle := result.Cycle.UTC().Format(schema.CycleLayout)
	rows := make([][]any, len(result.Items))
	for i, item := range result.Items {
		rows[i] = []any{
			cycle,
			item.ForecastHour,
			string(item.Status),
			formatArrival(item.Arrival),
			schema.FormatISODuration(item.Clock),
			schema.FormatISODuration(item.Lower),
			schema.FormatISODuration(item.Upper),
			schema.FormatISODuration(item.Deviation),
		}
	}
	return rows
}

// formatArrival returns an RFC3339 arrival, or an empty string when nothing arrived.
func formatArrival(arrival *time.Time) string {
	if arrival == nil {
		return ""
	}
	return table.FormatTimestamp(*arrival)
}

// formatDeviation renders the distance outside the window with an explicit sign.
func formatDeviation(d time.Duration) string {
	if d > 0 {
		return "+" + formatClock(d)
	}
	if d == 0 {
		return "-"
	}
	return formatClock(d)
}

// writeCheckTable generates and writes the human-readable table.
func writeCheckTable(result *schema.CheckResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "Cycle %s (start hour %s) checked at %s\n",
		result.Cycle.UTC().Format(schema.CycleLayout), result.StartHour, result.CheckedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	tbl := tablewriter.NewWriter(writer)
	tbl.Header([]string{"Step", "Status", "Arrival", "Clock", "Lower", "Upper", "Deviation"})
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, item := range result.Items {
		label := contract.GetPlainLabel(item.Status)
		if cfg.UseColors {
			label = contract.GetColorLabel(item.Status)
		}
		arrival := "-"
		if item.Arrival != nil {
			arrival = item.Arrival.UTC().Format("2006-01-02 15:04:05")
		}
		data = append(data, []string{
			formatStep(item.ForecastHour),
			label,
			arrival,
			formatClock(item.Clock),
			formatClock(item.Lower),
			formatClock(item.Upper),
			formatDeviation(item.Deviation),
		})
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	var parts []string
	for _, status := range schema.AllDelayStatuses {
		if n := result.Counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", contract.GetPlainLabel(status), strconv.Itoa(n)))
		}
	}
	verdict := paint(cfg, color.FgGreen, color.Bold)("PASSED")
	if !result.Passed {
		verdict = paint(cfg, color.FgRed, color.Bold)("FAILED")
	}
	if _, err := fmt.Fprintf(writer, "%s (%s)\n", verdict, strings.Join(parts, ", ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Check completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}
