package decline

import (
	"math"

	"github.com/rs/zerolog"
)

// criticalScore is the lower bound of the RED band.
const criticalScore = 80.0

// predictionHorizonDays caps how far out a critical date is forecastable.
// Anything further is reported as no forecast.
const predictionHorizonDays = 365

// Predictor extrapolates how many days remain until the risk score would
// cross into RED, given the current trajectory.
type Predictor struct {
	log zerolog.Logger
}

// NewPredictor creates a decline predictor.
func NewPredictor(log zerolog.Logger) *Predictor {
	return &Predictor{
		log: log.With().Str("component", "decline.predictor").Logger(),
	}
}

// Predict returns the estimated days to critical, or nil when no critical
// date is forecastable (flat or improving risk). riskTrajectory is the
// interim risk score per day across the request window, oldest first;
// velocityAccel is the velocity signal's acceleration term, applied as a
// correction: a decelerating trend shortens the estimate, a re-accelerating
// one lengthens or nulls it.
func (p *Predictor) Predict(riskTrajectory []float64, current, velocityAccel float64) *int {
	if current >= criticalScore {
		zero := 0
		return &zero
	}
	if len(riskTrajectory) < 2 {
		return nil
	}

	slope := linearSlope(riskTrajectory)
	if velocityAccel < 0 {
		slope *= 1 + math.Min(1, -velocityAccel)
	} else if velocityAccel > 0 {
		slope *= 1 - math.Min(0.9, velocityAccel)
	}

	// Flat or improving risk has no critical date. A zero slope must map to
	// nil, never to a division.
	if slope <= 1e-9 {
		return nil
	}

	days := int(math.Ceil((criticalScore - current) / slope))
	if days < 1 {
		days = 1
	}
	if days > predictionHorizonDays {
		p.log.Debug().
			Int("days", days).
			Msg("projected critical date beyond horizon, dropping forecast")
		return nil
	}

	p.log.Debug().
		Float64("slope", slope).
		Float64("current", current).
		Int("days_to_critical", days).
		Msg("days to critical predicted")

	return &days
}

// linearSlope fits a least-squares line over equally spaced points and
// returns its per-step slope.
func linearSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
