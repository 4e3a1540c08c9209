package algo

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/huangsam/leadtime/schema"
)

// QuantileLevels returns the two-sided levels for a central confidence level q.
func QuantileLevels(q float64) (lower, upper float64) {
	tail := (1 - q) / 2
	return tail, q + tail
}

// RankIndex returns the nearest-rank index of level p in a sorted sequence of length n.
// The position p*(n-1) is rounded to the nearest integer, an exact half going to the
// lower index, and clamped to [0, n-1].
func RankIndex(p float64, n int) int {
	if n <= 0 {
		return 0
	}
	pos := p * float64(n-1)
	idx := int(math.Ceil(pos - 0.5))
	return min(max(idx, 0), n-1)
}

// NearestRank returns the element of sorted at the nearest-rank position of p.
// No interpolation happens, so the result is always one of the inputs.
func NearestRank(sorted []time.Duration, p float64) time.Duration {
	return sorted[RankIndex(p, len(sorted))]
}

// ConfidenceInterval sorts a copy of the bootstrap distribution and picks its lower and
// upper bounds for the confidence level q. want is the configured distribution size.
func ConfidenceInterval(dist []time.Duration, q float64, want int) (lower, upper time.Duration, err error) {
	if len(dist) == 0 || len(dist) != want {
		return 0, 0, &schema.SamplingError{Reason: fmt.Sprintf("distribution has %d values, want %d", len(dist), want)}
	}
	sorted := slices.Clone(dist)
	slices.Sort(sorted)

	lowerQ, upperQ := QuantileLevels(q)
	lower = NearestRank(sorted, lowerQ)
	upper = NearestRank(sorted, upperQ)
	if lower > upper {
		return 0, 0, &schema.SamplingError{Reason: fmt.Sprintf("lower bound %s exceeds upper bound %s", lower, upper)}
	}
	return lower, upper, nil
}
