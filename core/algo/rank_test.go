package algo

import (
	"testing"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileLevels(t *testing.T) {
	lower, upper := QuantileLevels(0.99)
	assert.InDelta(t, 0.005, lower, 1e-12)
	assert.InDelta(t, 0.995, upper, 1e-12)

	lower, upper = QuantileLevels(0.5)
	assert.InDelta(t, 0.25, lower, 1e-12)
	assert.InDelta(t, 0.75, upper, 1e-12)
}

func TestRankIndex(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		n    int
		want int
	}{
		{name: "upper 0.995 of 1000", p: 0.995, n: 1000, want: 994},
		{name: "lower 0.005 of 1000", p: 0.005, n: 1000, want: 5},
		{name: "exact half goes to lower index", p: 0.5, n: 4, want: 1},
		{name: "rounds up past half", p: 0.6, n: 4, want: 2},
		{name: "single element", p: 0.995, n: 1, want: 0},
		{name: "clamped low", p: -0.1, n: 10, want: 0},
		{name: "clamped high", p: 1.5, n: 10, want: 9},
		{name: "zero length", p: 0.5, n: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RankIndex(tt.p, tt.n))
		})
	}
}

func TestNearestRankNoInterpolation(t *testing.T) {
	sorted := []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second, 40 * time.Second}
	assert.Equal(t, 20*time.Second, NearestRank(sorted, 0.5))
	assert.Equal(t, 10*time.Second, NearestRank(sorted, 0))
	assert.Equal(t, 40*time.Second, NearestRank(sorted, 1))
}

func TestConfidenceInterval(t *testing.T) {
	dist := make([]time.Duration, 1000)
	for i := range dist {
		// Reverse order so the function has to sort.
		dist[i] = time.Duration(1000-i) * time.Second
	}
	original := append([]time.Duration(nil), dist...)

	lower, upper, err := ConfidenceInterval(dist, 0.99, 1000)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, lower)
	assert.Equal(t, 995*time.Second, upper)
	assert.Equal(t, original, dist, "input distribution must not be reordered")
}

func TestConfidenceIntervalLowerNeverAboveUpper(t *testing.T) {
	dist := []time.Duration{5 * time.Second, 1 * time.Second, 3 * time.Second, 3 * time.Second, 9 * time.Second}
	for _, q := range []float64{0.01, 0.1, 0.5, 0.9, 0.99, 0.999} {
		lower, upper, err := ConfidenceInterval(dist, q, len(dist))
		require.NoError(t, err)
		assert.LessOrEqual(t, lower, upper, "q=%v", q)
	}
}

func TestConfidenceIntervalSingleReplicate(t *testing.T) {
	for _, q := range []float64{0.01, 0.5, 0.99} {
		lower, upper, err := ConfidenceInterval([]time.Duration{42 * time.Second}, q, 1)
		require.NoError(t, err)
		assert.Equal(t, lower, upper)
	}
}

func TestConfidenceIntervalSizeMismatch(t *testing.T) {
	_, _, err := ConfidenceInterval([]time.Duration{time.Second}, 0.9, 2)
	assert.ErrorIs(t, err, schema.ErrSampling)

	_, _, err = ConfidenceInterval(nil, 0.9, 0)
	assert.ErrorIs(t, err, schema.ErrSampling)
}
