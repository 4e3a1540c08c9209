package core

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEstimator(t *testing.T) {
	tests := []struct {
		name    string
		cfg     schema.EstimatorConfig
		wantErr bool
	}{
		{"valid", schema.EstimatorConfig{BootstrapCount: 10, BootstrapSample: 3, Quantile: 0.5}, false},
		{"zero count", schema.EstimatorConfig{BootstrapCount: 0, BootstrapSample: 3, Quantile: 0.5}, true},
		{"zero sample", schema.EstimatorConfig{BootstrapCount: 10, BootstrapSample: 0, Quantile: 0.5}, true},
		{"quantile one", schema.EstimatorConfig{BootstrapCount: 10, BootstrapSample: 3, Quantile: 1}, true},
		{"quantile zero", schema.EstimatorConfig{BootstrapCount: 10, BootstrapSample: 3, Quantile: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := NewEstimator(tt.cfg, 0, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, schema.ErrConfiguration)
				assert.Nil(t, est)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg, est.Config())
			assert.Equal(t, 1, est.workers)
			assert.Equal(t, schema.FailOnEmpty, est.policy)
		})
	}
}

// noisyHistory returns n 00 UTC cycles whose fh 0 clock is normal around mean with the given spread.
func noisyHistory(n int, mean, spread time.Duration, seed uint64) []schema.Observation {
	rng := rand.New(rand.NewPCG(seed, 1))
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]schema.Observation, n)
	for i := range n {
		clock := mean + time.Duration(rng.NormFloat64()*float64(spread))
		out[i] = obs(first.AddDate(0, 0, i), 0, clock.Round(time.Second))
	}
	return out
}

func TestEstimator_NoisyBucketWindow(t *testing.T) {
	observations := noisyHistory(500, 300*time.Second, 10*time.Second, 11)
	specs := []schema.BucketSpec{{StartHour: "00", ForecastHours: []int{0}}}

	for _, seed := range []uint64{0, 1, 2, 3, 4} {
		est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 1000, BootstrapSample: 10, Quantile: 0.99, Seed: seed}, 4, schema.FailOnEmpty)
		require.NoError(t, err)

		out, err := est.Estimate(context.Background(), observations, specs)
		require.NoError(t, err)
		bound := out.Results[0].Times[0]

		assert.LessOrEqual(t, bound.Lower, 300*time.Second, "seed %d", seed)
		assert.GreaterOrEqual(t, bound.Upper, 300*time.Second, "seed %d", seed)
		assert.Less(t, bound.Upper-bound.Lower, 60*time.Second, "seed %d", seed)
		assert.Equal(t, 500, bound.Stats.Count)
	}
}

func TestEstimator_SingleReplicateCollapses(t *testing.T) {
	observations := noisyHistory(40, 3*time.Hour, 5*time.Minute, 5)
	specs := []schema.BucketSpec{{StartHour: "00", ForecastHours: []int{0}}}

	for _, q := range []float64{0.01, 0.5, 0.9, 0.99, 0.999} {
		est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 1, BootstrapSample: 10, Quantile: q, Seed: 9}, 2, schema.FailOnEmpty)
		require.NoError(t, err)

		out, err := est.Estimate(context.Background(), observations, specs)
		require.NoError(t, err)
		bound := out.Results[0].Times[0]
		assert.Equal(t, bound.Lower, bound.Upper, "quantile %v", q)
		assert.Zero(t, bound.Upper%time.Second, "quantile %v", q)
	}
}

func TestEstimator_ConstantBucket(t *testing.T) {
	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 100, BootstrapSample: 10, Quantile: 0.99, Seed: 3}, 4, schema.FailOnEmpty)
	require.NoError(t, err)

	out, err := est.Estimate(context.Background(), history(5), []schema.BucketSpec{{StartHour: "00", ForecastHours: []int{0, 6}}})
	require.NoError(t, err)

	require.Len(t, out.Results, 1)
	times := out.Results[0].Times
	require.Len(t, times, 2)
	assert.Equal(t, 0, times[0].ForecastHour)
	assert.Equal(t, 3*time.Hour+40*time.Minute, times[0].Lower)
	assert.Equal(t, 3*time.Hour+40*time.Minute, times[0].Upper)
	assert.Equal(t, 6, times[1].ForecastHour)
	assert.Equal(t, 4*time.Hour+10*time.Minute, times[1].Lower)
	assert.Equal(t, 4*time.Hour+10*time.Minute, times[1].Upper)
	assert.Equal(t, 5, times[0].Stats.Count)
	assert.Equal(t, 10, out.Observations)
	assert.Empty(t, out.Skipped)
}

func TestEstimator_BoundsWithinObservedRange(t *testing.T) {
	var observations []schema.Observation
	clocks := []time.Duration{3 * time.Hour, 3*time.Hour + 20*time.Minute, 3*time.Hour + 35*time.Minute, 4 * time.Hour}
	for d, clock := range clocks {
		observations = append(observations, obs(cycleAt(d+1, 12), 24, clock))
	}

	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 200, BootstrapSample: 6, Quantile: 0.9, Seed: 11}, 2, schema.FailOnEmpty)
	require.NoError(t, err)
	out, err := est.Estimate(context.Background(), observations, []schema.BucketSpec{{StartHour: "12", ForecastHours: []int{24}}})
	require.NoError(t, err)

	bound := out.Results[0].Times[0]
	assert.LessOrEqual(t, bound.Lower, bound.Upper)
	assert.GreaterOrEqual(t, bound.Lower, 3*time.Hour)
	assert.LessOrEqual(t, bound.Upper, 4*time.Hour)
	assert.Zero(t, bound.Lower%time.Second)
	assert.Zero(t, bound.Upper%time.Second)
}

func TestEstimator_DeterministicAcrossWorkers(t *testing.T) {
	var observations []schema.Observation
	for d := 1; d <= 20; d++ {
		for _, hour := range []int{0, 12} {
			c := cycleAt(d, hour)
			for fh := 0; fh <= 12; fh += 3 {
				jitter := time.Duration((d*7+fh*13+hour)%23) * time.Minute
				observations = append(observations, obs(c, fh, 3*time.Hour+jitter+time.Duration(fh)*time.Minute))
			}
		}
	}
	specs := []schema.BucketSpec{
		{StartHour: "00", ForecastHours: []int{0, 3, 6, 9, 12}},
		{StartHour: "12", ForecastHours: []int{12, 6, 0}},
	}
	cfg := schema.EstimatorConfig{BootstrapCount: 300, BootstrapSample: 8, Quantile: 0.95, Seed: 42}

	var baseline *schema.EstimateOutput
	for _, workers := range []int{1, 3, 16} {
		est, err := NewEstimator(cfg, workers, schema.FailOnEmpty)
		require.NoError(t, err)
		out, err := est.Estimate(context.Background(), observations, specs)
		require.NoError(t, err)
		if baseline == nil {
			baseline = out
			continue
		}
		assert.Equal(t, baseline.Results, out.Results, "workers=%d", workers)
	}

	// Output keeps configuration order, not sorted order.
	got := make([]int, 0, 3)
	for _, b := range baseline.Results[1].Times {
		got = append(got, b.ForecastHour)
	}
	assert.Equal(t, []int{12, 6, 0}, got)
}

func TestEstimator_DuplicateAndEmptyForecastHours(t *testing.T) {
	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 20, BootstrapSample: 4, Quantile: 0.8, Seed: 1}, 2, schema.FailOnEmpty)
	require.NoError(t, err)

	out, err := est.Estimate(context.Background(), history(3), []schema.BucketSpec{
		{StartHour: "00", ForecastHours: []int{6, 0, 6}},
		{StartHour: "12", ForecastHours: []int{}},
	})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	first := out.Results[0].Times
	require.Len(t, first, 3)
	assert.Equal(t, first[0], first[2])
	assert.Equal(t, "12", out.Results[1].StartHour)
	assert.NotNil(t, out.Results[1].Times)
	assert.Empty(t, out.Results[1].Times)
}

func TestEstimator_EmptyBucketFails(t *testing.T) {
	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 20, BootstrapSample: 4, Quantile: 0.8}, 4, schema.FailOnEmpty)
	require.NoError(t, err)

	_, err = est.Estimate(context.Background(), history(3), []schema.BucketSpec{
		{StartHour: "00", ForecastHours: []int{0, 3}},
		{StartHour: "12", ForecastHours: []int{0}},
	})
	require.ErrorIs(t, err, schema.ErrInsufficientData)

	var insufficient *schema.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, schema.BucketKey{StartHour: "00", ForecastHour: 3}, insufficient.Key())
}

func TestEstimator_StartHourMustMatchExactly(t *testing.T) {
	// Same forecast hour, different start hour: the 00 cycles never feed the 06 bucket.
	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 20, BootstrapSample: 4, Quantile: 0.8}, 1, schema.FailOnEmpty)
	require.NoError(t, err)

	_, err = est.Estimate(context.Background(), history(3), []schema.BucketSpec{{StartHour: "06", ForecastHours: []int{0}}})
	assert.ErrorIs(t, err, schema.ErrInsufficientData)
}

func TestEstimator_SkipEmpty(t *testing.T) {
	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 20, BootstrapSample: 4, Quantile: 0.8, Seed: 5}, 4, schema.SkipEmpty)
	require.NoError(t, err)

	out, err := est.Estimate(context.Background(), history(3), []schema.BucketSpec{
		{StartHour: "00", ForecastHours: []int{0, 3, 6}},
		{StartHour: "12", ForecastHours: []int{0}},
	})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	require.Len(t, out.Results[0].Times, 2)
	assert.Equal(t, 0, out.Results[0].Times[0].ForecastHour)
	assert.Equal(t, 6, out.Results[0].Times[1].ForecastHour)
	assert.Empty(t, out.Results[1].Times)

	require.Len(t, out.Skipped, 2)
	assert.Equal(t, "00", out.Skipped[0].StartHour)
	assert.Equal(t, 3, out.Skipped[0].ForecastHour)
	assert.Equal(t, "12", out.Skipped[1].StartHour)
	assert.Contains(t, out.Skipped[1].Reason, "no observations")
}

func TestEstimator_InputUnchanged(t *testing.T) {
	observations := history(4)
	before := make([]schema.Observation, len(observations))
	copy(before, observations)

	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 20, BootstrapSample: 4, Quantile: 0.8}, 2, schema.FailOnEmpty)
	require.NoError(t, err)
	_, err = est.Estimate(context.Background(), observations, []schema.BucketSpec{{StartHour: "00", ForecastHours: []int{6, 0}}})
	require.NoError(t, err)
	assert.Equal(t, before, observations)
}

func TestEstimator_Cancelled(t *testing.T) {
	est, err := NewEstimator(schema.EstimatorConfig{BootstrapCount: 20, BootstrapSample: 4, Quantile: 0.8}, 2, schema.FailOnEmpty)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = est.Estimate(ctx, history(3), []schema.BucketSpec{{StartHour: "00", ForecastHours: []int{0, 6}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBucketStream(t *testing.T) {
	a := bucketStream(schema.BucketKey{StartHour: "00", ForecastHour: 6})
	assert.Equal(t, a, bucketStream(schema.BucketKey{StartHour: "00", ForecastHour: 6}))
	assert.NotEqual(t, a, bucketStream(schema.BucketKey{StartHour: "12", ForecastHour: 6}))
	assert.NotEqual(t, a, bucketStream(schema.BucketKey{StartHour: "00", ForecastHour: 7}))
}
