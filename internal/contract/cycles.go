package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/leadtime/schema"
)

// maxCycles bounds the size of a cycle range expansion.
const maxCycles = 100000

// ParseCycleTime parses a YYYYMMDDHH cycle time in UTC.
func ParseCycleTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(schema.CycleLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cycle time '%s'. must be YYYYMMDDHH", s)
	}
	return t, nil
}

// ParseFrequency parses a cycle range step. It accepts Go durations like "6h"
// as well as day or hour counts like "D", "2D", "H" and "12H".
func ParseFrequency(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultCycleFrequency
	}
	upper := strings.ToUpper(s)
	if unit := upper[len(upper)-1]; unit == 'D' || unit == 'H' {
		count := 1
		if digits := upper[:len(upper)-1]; digits != "" {
			n, err := strconv.Atoi(digits)
			if err != nil {
				return parseGoFrequency(s)
			}
			count = n
		}
		step := time.Hour
		if unit == 'D' {
			step = 24 * time.Hour
		}
		if count <= 0 {
			return 0, fmt.Errorf("invalid frequency '%s'. must be positive", s)
		}
		return time.Duration(count) * step, nil
	}
	return parseGoFrequency(s)
}

func parseGoFrequency(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid frequency '%s'. use D, 6H or a Go duration", s)
	}
	return d, nil
}

// ParseCycleSelection expands a cycle selection into cycle times in order.
// A selection is a single cycle, a comma separated list, or a "first/last" range
// stepped by freq, both ends included.
func ParseCycleSelection(s, freq string) ([]time.Time, error) {
	s = strings.TrimSpace(s)
	if first, last, ok := strings.Cut(s, "/"); ok {
		start, err := ParseCycleTime(first)
		if err != nil {
			return nil, err
		}
		end, err := ParseCycleTime(last)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, fmt.Errorf("invalid cycle range '%s'. end is before start", s)
		}
		step, err := ParseFrequency(freq)
		if err != nil {
			return nil, err
		}
		var cycles []time.Time
		for t := start; !t.After(end); t = t.Add(step) {
			if len(cycles) >= maxCycles {
				return nil, fmt.Errorf("cycle range '%s' expands to more than %d cycles", s, maxCycles)
			}
			cycles = append(cycles, t)
		}
		return cycles, nil
	}

	var cycles []time.Time
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseCycleTime(part)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, t)
	}
	if len(cycles) == 0 {
		return nil, fmt.Errorf("empty cycle selection")
	}
	return cycles, nil
}

// CycleSet turns cycles into a lookup set. A nil set means no restriction.
func CycleSet(cycles []time.Time) map[time.Time]struct{} {
	if len(cycles) == 0 {
		return nil
	}
	set := make(map[time.Time]struct{}, len(cycles))
	for _, c := range cycles {
		set[c.UTC()] = struct{}{}
	}
	return set
}
