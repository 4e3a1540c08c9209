package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// FormatISODuration renders d as an ISO-8601 duration in the P{d}DT{h}H{m}M{s}S shape,
// always listing every component. Sub-second parts are written as a trimmed fraction.
func FormatISODuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / day
	d -= days * day
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	frac := d - seconds*time.Second

	secStr := strconv.FormatInt(int64(seconds), 10)
	if frac > 0 {
		secStr += "." + strings.TrimRight(fmt.Sprintf("%09d", int64(frac)), "0")
	}
	return fmt.Sprintf("%sP%dDT%dH%dM%sS", sign, days, hours, minutes, secStr)
}

var isoDurationPattern = regexp.MustCompile(`^(-)?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d{1,9}))?S)?)?$`)

// ParseISODuration parses the week, day and time components of an ISO-8601 duration.
// Year and month designators are rejected because their length is ambiguous.
func ParseISODuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || strings.HasSuffix(s, "P") || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}

	units := []time.Duration{7 * day, day, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		part := m[i+2]
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		if n > math.MaxInt64/int64(unit) {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: out of range", s)
		}
		if total, err = addDuration(total, time.Duration(n)*unit); err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
	}
	if frac := m[7]; frac != "" {
		padded := frac + strings.Repeat("0", 9-len(frac))
		ns, err := strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		if total, err = addDuration(total, time.Duration(ns)); err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
	}
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// addDuration adds two non-negative durations, failing instead of wrapping.
func addDuration(a, b time.Duration) (time.Duration, error) {
	if a > math.MaxInt64-b {
		return 0, fmt.Errorf("out of range")
	}
	return a + b, nil
}

// ToStandardTimes converts results into their serialized form, keeping order.
func ToStandardTimes(results []ProductionTimeResult) []StandardTimeEntry {
	entries := make([]StandardTimeEntry, len(results))
	for i, r := range results {
		times := make([]StandardTime, len(r.Times))
		for j, b := range r.Times {
			times[j] = StandardTime{
				ForecastHour:  b.ForecastHour,
				UpperDuration: FormatISODuration(b.Upper),
				LowerDuration: FormatISODuration(b.Lower),
			}
		}
		entries[i] = StandardTimeEntry{StartHour: r.StartHour, Times: times}
	}
	return entries
}

// FromStandardTimes parses serialized entries back into results. Stats are left empty.
func FromStandardTimes(entries []StandardTimeEntry) ([]ProductionTimeResult, error) {
	results := make([]ProductionTimeResult, len(entries))
	for i, e := range entries {
		bounds := make([]ConfidenceBound, len(e.Times))
		for j, st := range e.Times {
			upper, err := ParseISODuration(st.UpperDuration)
			if err != nil {
				return nil, fmt.Errorf("start hour %s, forecast hour %d: %w", e.StartHour, st.ForecastHour, err)
			}
			lower, err := ParseISODuration(st.LowerDuration)
			if err != nil {
				return nil, fmt.Errorf("start hour %s, forecast hour %d: %w", e.StartHour, st.ForecastHour, err)
			}
			bounds[j] = ConfidenceBound{ForecastHour: st.ForecastHour, Upper: upper, Lower: lower}
		}
		results[i] = ProductionTimeResult{StartHour: e.StartHour, Times: bounds}
	}
	return results, nil
}

// FindBounds returns the bounds configured for a start hour, if any.
func FindBounds(results []ProductionTimeResult, startHour string) (ProductionTimeResult, bool) {
	for _, r := range results {
		if r.StartHour == startHour {
			return r, true
		}
	}
	return ProductionTimeResult{}, false
}
