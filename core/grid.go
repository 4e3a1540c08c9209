package core

import (
	"slices"
	"time"

	"github.com/huangsam/leadtime/schema"
)

// arrivalLayout is how grid cells show the arrival wall-clock time.
const arrivalLayout = "15:04:05"

// BuildStepGrid pivots observations into a cycle by forecast hour matrix.
// A cell keeps the earliest arrival when a product was delivered more than once.
func BuildStepGrid(observations []schema.Observation) *schema.StepGrid {
	grid := &schema.StepGrid{
		Cells:  make(map[time.Time]map[int]string),
		Clocks: make(map[time.Time]map[int]time.Duration),
	}
	arrivals := make(map[time.Time]map[int]time.Time)
	hours := make(map[int]struct{})

	for _, o := range observations {
		cycle := o.StartTime.UTC()
		row, ok := arrivals[cycle]
		if !ok {
			row = make(map[int]time.Time)
			arrivals[cycle] = row
			grid.Cycles = append(grid.Cycles, cycle)
		}
		if prev, seen := row[o.ForecastHour]; !seen || o.ArrivalTime.Before(prev) {
			row[o.ForecastHour] = o.ArrivalTime
		}
		hours[o.ForecastHour] = struct{}{}
	}

	slices.SortFunc(grid.Cycles, func(a, b time.Time) int { return a.Compare(b) })
	for fh := range hours {
		grid.ForecastHours = append(grid.ForecastHours, fh)
	}
	slices.Sort(grid.ForecastHours)

	for cycle, row := range arrivals {
		cells := make(map[int]string, len(row))
		clocks := make(map[int]time.Duration, len(row))
		for fh, arrival := range row {
			cells[fh] = arrival.UTC().Format(arrivalLayout)
			clocks[fh] = arrival.Sub(cycle)
		}
		grid.Cells[cycle] = cells
		grid.Clocks[cycle] = clocks
	}
	return grid
}
