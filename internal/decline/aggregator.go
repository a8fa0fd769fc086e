package decline

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// Aggregator combines the four signal scores into one risk score with fixed
// deployment weights, and classifies it into an alert band.
type Aggregator struct {
	weights contracts.Weights
	log     zerolog.Logger
}

// NewAggregator creates an aggregator with the default weights.
func NewAggregator(log zerolog.Logger) *Aggregator {
	a, _ := NewAggregatorWithWeights(contracts.DefaultWeights(), log)
	return a
}

// NewAggregatorWithWeights creates an aggregator with custom weights.
// Weights must sum to exactly 1.0.
func NewAggregatorWithWeights(w contracts.Weights, log zerolog.Logger) (*Aggregator, error) {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return nil, fmt.Errorf("signal weights must sum to 1.0, got %v", w.Sum())
	}
	return &Aggregator{
		weights: w,
		log:     log.With().Str("component", "decline.aggregator").Logger(),
	}, nil
}

// Weights returns the weights in effect, for the response audit trail.
func (a *Aggregator) Weights() contracts.Weights {
	return a.weights
}

// Aggregate returns the weighted overall risk score, clamped to [0,100],
// and its alert level.
func (a *Aggregator) Aggregate(breakdown contracts.SignalBreakdown) (float64, contracts.AlertLevel) {
	var score float64
	for _, s := range breakdown.Scores() {
		score += a.weights.ForSignal(s.Name) * clampScore(s.Value)
	}
	score = clampScore(score)
	level := contracts.AlertLevelForScore(score)

	a.log.Debug().
		Float64("overall_risk_score", score).
		Str("alert_level", string(level)).
		Msg("signals aggregated")

	return score, level
}
