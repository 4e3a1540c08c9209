package algo

import (
	"testing"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		clocks []time.Duration
		want   schema.BucketStats
	}{
		{name: "empty", clocks: nil, want: schema.BucketStats{}},
		{
			name:   "single value has no spread",
			clocks: []time.Duration{90 * time.Second},
			want:   schema.BucketStats{Count: 1, Mean: 90 * time.Second},
		},
		{
			name:   "sample standard deviation",
			clocks: []time.Duration{2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second, 7 * time.Second, 9 * time.Second},
			// mean 5s, sum of squared deviations 32, n-1 = 7
			want: schema.BucketStats{Count: 8, Mean: 5 * time.Second, StdDev: 2138089935 * time.Nanosecond},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.clocks)
			assert.Equal(t, tt.want.Count, got.Count)
			assert.Equal(t, tt.want.Mean, got.Mean)
			assert.InDelta(t, float64(tt.want.StdDev), float64(got.StdDev), float64(time.Microsecond))
		})
	}
}
