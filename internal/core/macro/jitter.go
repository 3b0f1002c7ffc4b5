package macro

import (
	"math/rand"
	"time"
)

// MinInterval is the floor applied to every jittered interval. It keeps a
// misconfigured macro from flooding the OS input queue.
const MinInterval = 100 * time.Millisecond

// MaxInterval bounds both the base interval and the variance of a macro.
const MaxInterval = 24 * time.Hour

var maxIntervalMs = uint64(MaxInterval.Milliseconds())

// ComputeInterval returns the delay before the next firing. With zero variance
// the base is returned untouched; otherwise a uniform offset in
// [-varianceMs, +varianceMs] is applied and the result clamped to MinInterval.
// Inputs above MaxInterval saturate at MaxInterval.
func ComputeInterval(baseMs, varianceMs uint64, rng *rand.Rand) time.Duration {
	baseMs = min(baseMs, maxIntervalMs)
	varianceMs = min(varianceMs, maxIntervalMs)
	if varianceMs == 0 {
		return time.Duration(baseMs) * time.Millisecond
	}

	span := int64(varianceMs)
	offset := rng.Int63n(2*span+1) - span
	actual := int64(baseMs) + offset
	if floor := MinInterval.Milliseconds(); actual < floor {
		actual = floor
	}
	return time.Duration(actual) * time.Millisecond
}

func newJitterSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
