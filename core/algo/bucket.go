// Package algo has the statistical building blocks of standard time estimation.
package algo

import (
	"time"

	"github.com/huangsam/leadtime/schema"
)

// Sample is the projection of an observation used for bucketing.
type Sample struct {
	StartHour    string
	ForecastHour int
	Clock        time.Duration
}

// Project derives the clock and start hour of every observation.
// The input slice is left untouched.
func Project(observations []schema.Observation) []Sample {
	samples := make([]Sample, len(observations))
	for i, o := range observations {
		samples[i] = Sample{
			StartHour:    o.StartHour(),
			ForecastHour: o.ForecastHour,
			Clock:        o.Clock(),
		}
	}
	return samples
}

// Index groups sample clocks by bucket so each bucket lookup is a map access.
type Index map[schema.BucketKey][]time.Duration

// NewIndex builds an Index over the given samples, keeping input order inside each bucket.
func NewIndex(samples []Sample) Index {
	idx := make(Index)
	for _, s := range samples {
		key := schema.BucketKey{StartHour: s.StartHour, ForecastHour: s.ForecastHour}
		idx[key] = append(idx[key], s.Clock)
	}
	return idx
}

// Clocks returns the clocks of the bucket, or an InsufficientDataError when it is empty.
func (idx Index) Clocks(startHour string, forecastHour int) ([]time.Duration, error) {
	clocks := idx[schema.BucketKey{StartHour: startHour, ForecastHour: forecastHour}]
	if len(clocks) == 0 {
		return nil, &schema.InsufficientDataError{StartHour: startHour, ForecastHour: forecastHour}
	}
	return clocks, nil
}

// BucketClocks selects the clocks whose start hour and forecast hour both match exactly.
func BucketClocks(samples []Sample, startHour string, forecastHour int) ([]time.Duration, error) {
	var clocks []time.Duration
	for _, s := range samples {
		if s.StartHour == startHour && s.ForecastHour == forecastHour {
			clocks = append(clocks, s.Clock)
		}
	}
	if len(clocks) == 0 {
		return nil, &schema.InsufficientDataError{StartHour: startHour, ForecastHour: forecastHour}
	}
	return clocks, nil
}
