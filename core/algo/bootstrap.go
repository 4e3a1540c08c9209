package algo

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/huangsam/leadtime/schema"
)

// NewRand returns a PCG-backed random source for one bucket.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// Resample draws sample values with replacement from clocks, count times, and returns
// the mean of every draw rounded up to a whole second. sample may exceed len(clocks).
func Resample(clocks []time.Duration, count, sample int, rng *rand.Rand) ([]time.Duration, error) {
	if len(clocks) == 0 {
		return nil, &schema.SamplingError{Reason: "cannot resample an empty bucket"}
	}
	if count <= 0 || sample <= 0 {
		return nil, &schema.SamplingError{Reason: fmt.Sprintf("count %d and sample %d must be positive", count, sample)}
	}

	n := len(clocks)
	means := make([]time.Duration, count)
	for i := range count {
		var acc meanAccumulator
		for range sample {
			acc.add(int64(clocks[rng.IntN(n)]), int64(sample))
		}
		means[i] = acc.ceilSecond()
	}
	return means, nil
}

// meanAccumulator keeps the running mean as quotient plus remainder over n,
// so large draws never overflow an int64 sum.
type meanAccumulator struct {
	q, r int64
}

func (a *meanAccumulator) add(v, n int64) {
	a.q += v / n
	a.r += v % n
	switch {
	case a.r >= n:
		a.q++
		a.r -= n
	case a.r <= -n:
		a.q--
		a.r += n
	}
}

// ceilSecond rounds the accumulated mean up to the next whole second.
func (a *meanAccumulator) ceilSecond() time.Duration {
	ns := a.q
	if a.r > 0 {
		ns++
	}
	return time.Duration(ceilDiv(ns, int64(time.Second))) * time.Second
}

// CeilSecond rounds d up to a whole second.
func CeilSecond(d time.Duration) time.Duration {
	return time.Duration(ceilDiv(int64(d), int64(time.Second))) * time.Second
}

// ceilDiv divides a by a positive b, rounding towards positive infinity.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b > 0 {
		q++
	}
	return q
}
