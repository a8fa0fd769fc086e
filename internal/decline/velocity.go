package decline

import (
	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// VelocityDeclineCalculator measures deceleration: the second difference of
// the engagement series. It fires before an absolute drop is visible, which
// is what makes it the highest-weighted signal.
type VelocityDeclineCalculator struct {
	log zerolog.Logger
}

// NewVelocityDeclineCalculator creates the velocity decline calculator.
func NewVelocityDeclineCalculator(log zerolog.Logger) *VelocityDeclineCalculator {
	return &VelocityDeclineCalculator{
		log: log.With().Str("component", "decline.velocity").Logger(),
	}
}

func (c *VelocityDeclineCalculator) Name() string {
	return contracts.SignalVelocityDecline
}

// Calculate derives per-step growth rates from total engagement (views as
// fallback when engagement is absent), then scores the mean change of that
// rate against the stage's negative acceleration threshold.
func (c *VelocityDeclineCalculator) Calculate(metrics []contracts.DailyMetric, th contracts.StageThresholds) contracts.SignalScore {
	// Need at least 3 points for a second difference.
	if len(metrics) < 3 {
		return noSignal(c.Name())
	}

	series := make([]float64, len(metrics))
	allZero := true
	for i, m := range metrics {
		series[i] = clampMetric(float64(m.TotalEngagement))
		if series[i] > 0 {
			allZero = false
		}
	}
	if allZero {
		for i, m := range metrics {
			series[i] = clampMetric(float64(m.Views))
		}
	}

	rates := growthRates(series)
	accel, ok := meanAcceleration(rates)
	if !ok {
		return noSignal(c.Name())
	}

	score, triggered := accelScore(accel, th.VelocityAccel)

	c.log.Debug().
		Float64("acceleration", accel).
		Float64("threshold", th.VelocityAccel).
		Float64("score", score).
		Bool("triggered", triggered).
		Msg("velocity decline calculated")

	return contracts.SignalScore{
		Name:      c.Name(),
		Value:     score,
		Triggered: triggered,
		RawDelta:  accel,
	}
}

// growthRates returns the first-order growth rate per step. Steps with a
// zero base are skipped (no rate can be measured across them).
func growthRates(series []float64) []float64 {
	var rates []float64
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev <= 0 {
			continue
		}
		rates = append(rates, (series[i]-prev)/prev)
	}
	return rates
}

// meanAcceleration averages the change in growth rate across the window.
func meanAcceleration(rates []float64) (float64, bool) {
	if len(rates) < 2 {
		return 0, false
	}
	var sum float64
	for i := 1; i < len(rates); i++ {
		sum += rates[i] - rates[i-1]
	}
	return sum / float64(len(rates)-1), true
}

// accelScore maps a negative acceleration to a score using the same linear
// curve as the drop signals: 0 at the threshold, 100 at twice its magnitude.
func accelScore(accel, threshold float64) (float64, bool) {
	if threshold >= 0 || accel > threshold {
		return 0, false
	}
	mag, limit := -accel, -threshold
	score := (mag - limit) / limit * 100
	return clampScore(score), true
}
