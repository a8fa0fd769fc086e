package decline

import (
	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// CreatorDeclineCalculator measures shrinking creator participation:
// creator counts and the reach of the creators still posting.
type CreatorDeclineCalculator struct {
	log zerolog.Logger
}

// NewCreatorDeclineCalculator creates the creator decline calculator.
func NewCreatorDeclineCalculator(log zerolog.Logger) *CreatorDeclineCalculator {
	return &CreatorDeclineCalculator{
		log: log.With().Str("component", "decline.creator").Logger(),
	}
}

func (c *CreatorDeclineCalculator) Name() string {
	return contracts.SignalCreatorDecline
}

func (c *CreatorDeclineCalculator) Calculate(metrics []contracts.DailyMetric, th contracts.StageThresholds) contracts.SignalScore {
	if len(metrics) < 2 {
		return noSignal(c.Name())
	}

	creators := make([]float64, len(metrics))
	followers := make([]float64, len(metrics))
	for i, m := range metrics {
		creators[i] = float64(m.CreatorsCount)
		followers[i] = m.AvgCreatorFollowers
	}

	drop, ok := combinedDrop(creators, followers)
	if !ok {
		return noSignal(c.Name())
	}

	score, triggered := dropScore(drop, th.CreatorDropPct)

	c.log.Debug().
		Float64("drop", drop).
		Float64("threshold", th.CreatorDropPct).
		Float64("score", score).
		Bool("triggered", triggered).
		Msg("creator decline calculated")

	return contracts.SignalScore{
		Name:      c.Name(),
		Value:     score,
		Triggered: triggered,
		RawDelta:  drop,
	}
}
