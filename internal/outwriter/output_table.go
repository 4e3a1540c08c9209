package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/internal/parquet"
	"github.com/huangsam/leadtime/internal/table"
	"github.com/huangsam/leadtime/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// observationView is the serialized form of an Observation, readable as input again.
type observationView struct {
	StartTime    string `json:"start_time" yaml:"start_time"`
	ForecastHour int    `json:"forecast_hour" yaml:"forecast_hour"`
	Time         string `json:"time" yaml:"time"`
}

// WriteObservations outputs the observation table, dispatching based on the output format configured.
// CSV, JSON, Parquet and XLSX use the same columns the table loaders accept.
func WriteObservations(observations []schema.Observation, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, observationViews(observations))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, observationViews(observations))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, table.Header, func(cw *csv.Writer) error {
				for _, row := range observationRows(observations) {
					if err := cw.Write(stringifyRow(row)); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(cfg.OutputFile, func(path string) error {
			return parquet.WriteRowsFile(parquet.ConvertObservations(observations), path)
		})
	case schema.XLSXOut:
		return writeXLSX(cfg.OutputFile, "observations", table.Header, observationRows(observations))
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeObservationTable(observations, w)
		}, "Wrote table")
	}
}

// observationViews converts observations into their serialized form.
func observationViews(observations []schema.Observation) []observationView {
	views := make([]observationView, len(observations))
	for i, o := range observations {
		views[i] = observationView{
			StartTime:    table.FormatTimestamp(o.StartTime),
			ForecastHour: o.ForecastHour,
			Time:         table.FormatTimestamp(o.ArrivalTime),
		}
	}
	return views
}

// observationRows flattens observations into typed rows shared by CSV and XLSX.
func observationRows(observations []schema.Observation) [][]any {
	rows := make([][]any, len(observations))
	for i, o := range observations {
		rows[i] = []any{table.FormatTimestamp(o.StartTime), o.ForecastHour, table.FormatTimestamp(o.ArrivalTime)}
	}
	return rows
}

// writeObservationTable generates and writes the human-readable table.
func writeObservationTable(observations []schema.Observation, writer io.Writer) error {
	tbl := tablewriter.NewWriter(writer)
	tbl.Header([]string{"Cycle", "Step", "Arrival", "Clock"})
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, len(observations))
	for i, o := range observations {
		data[i] = []string{
			o.StartTime.UTC().Format(schema.CycleLayout),
			formatStep(o.ForecastHour),
			o.ArrivalTime.UTC().Format("2006-01-02 15:04:05"),
			formatClock(o.Clock()),
		}
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Showing %s observations\n", strconv.Itoa(len(observations)))
	return err
}
