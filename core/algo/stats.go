package algo

import (
	"math"
	"time"

	"github.com/huangsam/leadtime/schema"
	"gonum.org/v1/gonum/stat"
)

// Summarize reports the size, mean and sample standard deviation of a bucket.
func Summarize(clocks []time.Duration) schema.BucketStats {
	if len(clocks) == 0 {
		return schema.BucketStats{}
	}
	secs := make([]float64, len(clocks))
	for i, c := range clocks {
		secs[i] = c.Seconds()
	}
	stats := schema.BucketStats{
		Count: len(clocks),
		Mean:  secondsToDuration(stat.Mean(secs, nil)),
	}
	if len(secs) > 1 {
		stats.StdDev = secondsToDuration(stat.StdDev(secs, nil))
	}
	return stats
}

func secondsToDuration(s float64) time.Duration {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}
