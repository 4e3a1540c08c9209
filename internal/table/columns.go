package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/leadtime/schema"
)

// Column names of the observation table.
const (
	StartTimeColumn    = "start_time"
	ForecastHourColumn = "forecast_hour"
	TimeColumn         = "time"
	ArrivalAliasColumn = "arrival_time"
)

// Header is the canonical header written by every table writer.
var Header = []string{StartTimeColumn, ForecastHourColumn, TimeColumn}

// timeLayouts are tried in order when a timestamp cell is parsed.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
}

// columnIndex maps each required column to its position in a header row.
type columnIndex struct {
	startTime    int
	forecastHour int
	arrival      int
}

// resolveHeader validates a header row. Unknown and repeated columns are rejected.
func resolveHeader(header []string) (columnIndex, error) {
	idx := columnIndex{startTime: -1, forecastHour: -1, arrival: -1}
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		var slot *int
		switch name {
		case StartTimeColumn:
			slot = &idx.startTime
		case ForecastHourColumn:
			slot = &idx.forecastHour
		case TimeColumn, ArrivalAliasColumn:
			slot = &idx.arrival
		default:
			return idx, fmt.Errorf("unknown column %q, expected %s", raw, strings.Join(Header, ", "))
		}
		if *slot >= 0 {
			return idx, fmt.Errorf("column %q appears more than once", raw)
		}
		*slot = i
	}
	switch {
	case idx.startTime < 0:
		return idx, fmt.Errorf("missing column %q", StartTimeColumn)
	case idx.forecastHour < 0:
		return idx, fmt.Errorf("missing column %q", ForecastHourColumn)
	case idx.arrival < 0:
		return idx, fmt.Errorf("missing column %q", TimeColumn)
	}
	return idx, nil
}

// parseRecord builds an observation from one row of string cells.
func (idx columnIndex) parseRecord(record []string, line int) (schema.Observation, error) {
	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	start, err := ParseTimestamp(cell(idx.startTime))
	if err != nil {
		return schema.Observation{}, fmt.Errorf("row %d: %s: %w", line, StartTimeColumn, err)
	}
	fh, err := parseForecastHour(cell(idx.forecastHour))
	if err != nil {
		return schema.Observation{}, fmt.Errorf("row %d: %s: %w", line, ForecastHourColumn, err)
	}
	arrival, err := ParseTimestamp(cell(idx.arrival))
	if err != nil {
		return schema.Observation{}, fmt.Errorf("row %d: %s: %w", line, TimeColumn, err)
	}
	return schema.Observation{StartTime: start, ForecastHour: fh, ArrivalTime: arrival}, nil
}

// ParseTimestamp parses an RFC 3339 or "YYYY-MM-DD HH:MM:SS" timestamp.
// Timestamps without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", s)
}

// parseForecastHour accepts integers, also when written as "6.0" by spreadsheet tools.
func parseForecastHour(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative forecast hour %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("forecast hour %q is not an integer", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative forecast hour %q", s)
	}
	return int(f), nil
}

// FormatTimestamp is how table writers print timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
