package decline

import (
	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// EngagementDropCalculator measures the relative fall of combined engagement
// (total engagement and per-post engagement) against the trailing baseline.
type EngagementDropCalculator struct {
	log zerolog.Logger
}

// NewEngagementDropCalculator creates the engagement drop calculator.
func NewEngagementDropCalculator(log zerolog.Logger) *EngagementDropCalculator {
	return &EngagementDropCalculator{
		log: log.With().Str("component", "decline.engagement").Logger(),
	}
}

func (c *EngagementDropCalculator) Name() string {
	return contracts.SignalEngagementDrop
}

// Calculate scores the drop from the trailing-window mean to the latest day.
func (c *EngagementDropCalculator) Calculate(metrics []contracts.DailyMetric, th contracts.StageThresholds) contracts.SignalScore {
	if len(metrics) < 2 {
		return noSignal(c.Name())
	}

	total := make([]float64, len(metrics))
	perPost := make([]float64, len(metrics))
	for i, m := range metrics {
		total[i] = float64(m.TotalEngagement)
		perPost[i] = m.AvgEngagementPerPost
	}

	drop, ok := combinedDrop(total, perPost)
	if !ok {
		return noSignal(c.Name())
	}

	score, triggered := dropScore(drop, th.EngagementDropPct)

	c.log.Debug().
		Float64("drop", drop).
		Float64("threshold", th.EngagementDropPct).
		Float64("score", score).
		Bool("triggered", triggered).
		Msg("engagement drop calculated")

	return contracts.SignalScore{
		Name:      c.Name(),
		Value:     score,
		Triggered: triggered,
		RawDelta:  drop,
	}
}
