package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/leadtime/core/algo"
	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// gridRowView is the serialized form of one grid row.
type gridRowView struct {
	Cycle    string         `json:"cycle" yaml:"cycle"`
	Arrivals map[int]string `json:"arrivals" yaml:"arrivals"`
}

// WriteGrid outputs the step grid, dispatching based on the output format configured.
func WriteGrid(grid *schema.StepGrid, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, gridViews(grid))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, gridViews(grid))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, gridHeader(grid), func(cw *csv.Writer) error {
				for _, row := range gridRows(grid) {
					if err := cw.Write(stringifyRow(row)); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.XLSXOut:
		return writeXLSX(cfg.OutputFile, "grid", gridHeader(grid), gridRows(grid))
	case schema.ParquetOut:
		return errors.New("grid does not support parquet output. Use csv, json, yaml or xlsx")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGridTable(grid, cfg, w)
		}, "Wrote grid")
	}
}

// gridHeader names the cycle column and one column per forecast hour.
func gridHeader(grid *schema.StepGrid) []string {
	header := make([]string, 0, len(grid.ForecastHours)+1)
	header = append(header, "cycle")
	for _, fh := range grid.ForecastHours {
		header = append(header, strconv.Itoa(fh))
	}
	return header
}

// gridRows flattens the grid into typed rows shared by CSV and XLSX. Missing cells are empty.
func gridRows(grid *schema.StepGrid) [][]any {
	rows := make([][]any, len(grid.Cycles))
	for i, cycle := range grid.Cycles {
		row := make([]any, 0, len(grid.ForecastHours)+1)
		row = append(row, cycle.Format(schema.CycleLayout))
		for _, fh := range grid.ForecastHours {
			row = append(row, grid.Cells[cycle][fh])
		}
		rows[i] = row
	}
	return rows
}

// gridViews converts the grid into its serialized form.
func gridViews(grid *schema.StepGrid) []gridRowView {
	views := make([]gridRowView, len(grid.Cycles))
	for i, cycle := range grid.Cycles {
		views[i] = gridRowView{Cycle: cycle.Format(schema.CycleLayout), Arrivals: grid.Cells[cycle]}
	}
	return views
}

// quartiles holds the first, second and third quartile clocks of one forecast hour.
type quartiles struct {
	q1, q2, q3 time.Duration
}

// columnQuartiles computes the clock quartiles of every forecast hour.
func columnQuartiles(grid *schema.StepGrid) map[int]quartiles {
	out := make(map[int]quartiles, len(grid.ForecastHours))
	for _, fh := range grid.ForecastHours {
		var clocks []time.Duration
		for _, cycle := range grid.Cycles {
			if c, ok := grid.Clocks[cycle][fh]; ok {
				clocks = append(clocks, c)
			}
		}
		slices.Sort(clocks)
		out[fh] = quartiles{
			q1: algo.NearestRank(clocks, 0.25),
			q2: algo.NearestRank(clocks, 0.5),
			q3: algo.NearestRank(clocks, 0.75),
		}
	}
	return out
}

// writeGridTable renders the grid with cells colored by their clock quartile.
// Columns that do not fit the terminal width are left out.
func writeGridTable(grid *schema.StepGrid, cfg *contract.Config, writer io.Writer) error {
	hours := grid.ForecastHours
	if limit := getMaxGridColumns(cfg); len(hours) > limit {
		hours = hours[:limit]
	}

	fast := paint(cfg, color.FgGreen)
	slow := paint(cfg, color.FgYellow)
	slowest := paint(cfg, color.FgRed)
	quarts := columnQuartiles(grid)

	header := []string{"Cycle"}
	for _, fh := range hours {
		header = append(header, formatStep(fh))
	}

	tbl := tablewriter.NewWriter(writer)
	tbl.Header(header)
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, len(grid.Cycles))
	for i, cycle := range grid.Cycles {
		row := []string{cycle.Format(schema.CycleLayout)}
		for _, fh := range hours {
			cell, ok := grid.Cells[cycle][fh]
			if !ok {
				row = append(row, "-")
				continue
			}
			clock, q := grid.Clocks[cycle][fh], quarts[fh]
			switch {
			case clock <= q.q1:
				cell = fast(cell)
			case clock > q.q3:
				cell = slowest(cell)
			case clock > q.q2:
				cell = slow(cell)
			}
			row = append(row, cell)
		}
		data[i] = row
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	if len(hours) < len(grid.ForecastHours) {
		if _, err := fmt.Fprintf(writer, "Showing %d of %d forecast hours. Use --width or csv output for the rest\n",
			len(hours), len(grid.ForecastHours)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(writer, "Grid of %d cycles by %d forecast hours\n", len(grid.Cycles), len(grid.ForecastHours))
	return err
}
