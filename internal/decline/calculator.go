package decline

import (
	"math"

	"github.com/trendpulse/backend/internal/contracts"
)

// SignalCalculator is the shared contract for the four decline signals:
// given an ordered metric history and the active stage's thresholds, produce
// one normalized score. Implementations must tolerate a 2-point history and
// treat any zero denominator as "no signal" rather than failing.
type SignalCalculator interface {
	Name() string
	Calculate(metrics []contracts.DailyMetric, th contracts.StageThresholds) contracts.SignalScore
}

// noSignal is the shared insufficient-data / zero-denominator result.
func noSignal(name string) contracts.SignalScore {
	return contracts.SignalScore{Name: name}
}

// dropScore maps a relative drop to a score: 0 at the stage threshold,
// scaling linearly to 100 at twice the threshold, clamped to [0,100].
// Triggered when the drop reaches the threshold.
func dropScore(drop, threshold float64) (float64, bool) {
	if threshold <= 0 || drop < threshold {
		return 0, false
	}
	score := (drop - threshold) / threshold * 100
	return clampScore(score), true
}

// clampScore bounds a score to [0,100] and maps NaN to 0.
func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clampMetric treats NaN and negative metric values as 0.
func clampMetric(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// baselineDrop returns the relative drop from the mean of all points except
// the last (the trailing baseline) to the latest value. ok is false when
// there are fewer than 2 usable points or the baseline is zero.
func baselineDrop(series []float64) (drop float64, ok bool) {
	if len(series) < 2 {
		return 0, false
	}
	var sum float64
	for _, v := range series[:len(series)-1] {
		sum += clampMetric(v)
	}
	baseline := sum / float64(len(series)-1)
	if baseline <= 0 {
		return 0, false
	}
	latest := clampMetric(series[len(series)-1])
	return (baseline - latest) / baseline, true
}

// combinedDrop averages the baseline drops of several series, skipping any
// with a zero baseline. ok is false when no series was usable.
func combinedDrop(series ...[]float64) (drop float64, ok bool) {
	var sum float64
	var n int
	for _, s := range series {
		if d, usable := baselineDrop(s); usable {
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
