package decline

import "github.com/trendpulse/backend/internal/contracts"

// Confidence blend. History saturates at two weeks of daily metrics.
const (
	completenessWeight = 0.40
	lifecycleWeight    = 0.35
	historyWeight      = 0.25
	historySaturation  = 14
)

// estimateConfidence derives the advisory confidence in [0,1] from data
// completeness, the lifecycle confidence carried by the resolver, and the
// history length. It never feeds back into the risk score or alert level.
func estimateConfidence(metrics []contracts.DailyMetric, lifecycleConfidence float64) float64 {
	completeness := dataCompleteness(metrics)

	historyFactor := float64(len(metrics)) / historySaturation
	if historyFactor > 1 {
		historyFactor = 1
	}

	c := completenessWeight*completeness +
		lifecycleWeight*lifecycleConfidence +
		historyWeight*historyFactor

	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// dataCompleteness is the fraction of populated fields across all daily
// metrics. Zeroed fields degrade it.
func dataCompleteness(metrics []contracts.DailyMetric) float64 {
	if len(metrics) == 0 {
		return 0
	}

	var populated, total int
	for _, m := range metrics {
		fields := []float64{
			float64(m.TotalEngagement),
			float64(m.Views),
			float64(m.PostsCount),
			float64(m.CreatorsCount),
			m.AvgCreatorFollowers,
			m.AvgCommentsPerPost,
			m.AvgEngagementPerPost,
		}
		for _, v := range fields {
			total++
			if clampMetric(v) > 0 {
				populated++
			}
		}
	}
	return float64(populated) / float64(total)
}
