package decline

import (
	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// QualityDeclineCalculator measures degrading content quality through the
// per-post ratios: comments per post and engagement per post.
type QualityDeclineCalculator struct {
	log zerolog.Logger
}

// NewQualityDeclineCalculator creates the quality decline calculator.
func NewQualityDeclineCalculator(log zerolog.Logger) *QualityDeclineCalculator {
	return &QualityDeclineCalculator{
		log: log.With().Str("component", "decline.quality").Logger(),
	}
}

func (c *QualityDeclineCalculator) Name() string {
	return contracts.SignalQualityDecline
}

func (c *QualityDeclineCalculator) Calculate(metrics []contracts.DailyMetric, th contracts.StageThresholds) contracts.SignalScore {
	if len(metrics) < 2 {
		return noSignal(c.Name())
	}

	comments := make([]float64, len(metrics))
	perPost := make([]float64, len(metrics))
	for i, m := range metrics {
		comments[i] = m.AvgCommentsPerPost
		perPost[i] = m.AvgEngagementPerPost
	}

	drop, ok := combinedDrop(comments, perPost)
	if !ok {
		return noSignal(c.Name())
	}

	score, triggered := dropScore(drop, th.QualityDropPct)

	c.log.Debug().
		Float64("drop", drop).
		Float64("threshold", th.QualityDropPct).
		Float64("score", score).
		Bool("triggered", triggered).
		Msg("quality decline calculated")

	return contracts.SignalScore{
		Name:      c.Name(),
		Value:     score,
		Triggered: triggered,
		RawDelta:  drop,
	}
}
