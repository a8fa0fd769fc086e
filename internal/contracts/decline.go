package contracts

import (
	"fmt"
	"time"
)

// Stage is a trend lifecycle phase produced by the upstream classifier.
// It controls how sensitively the decline signals fire.
type Stage string

const (
	StageEmerging       Stage = "EMERGING"
	StageViralExplosion Stage = "VIRAL_EXPLOSION"
	StagePlateau        Stage = "PLATEAU"
	StageDecline        Stage = "DECLINE"
	StageFaded          Stage = "FADED"
	StageUnknown        Stage = "UNKNOWN"
)

// Stages lists every lifecycle stage. The sensitivity table must be total
// over this set.
func Stages() []Stage {
	return []Stage{
		StageEmerging,
		StageViralExplosion,
		StagePlateau,
		StageDecline,
		StageFaded,
		StageUnknown,
	}
}

// AlertLevel is the four-band classification of the aggregated risk score.
type AlertLevel string

const (
	AlertGreen  AlertLevel = "GREEN"
	AlertYellow AlertLevel = "YELLOW"
	AlertOrange AlertLevel = "ORANGE"
	AlertRed    AlertLevel = "RED"
)

// AlertLevelForScore maps a risk score to its alert band.
// Bands are non-overlapping, lower bound inclusive:
// GREEN [0,30), YELLOW [30,60), ORANGE [60,80), RED [80,100].
func AlertLevelForScore(score float64) AlertLevel {
	switch {
	case score >= 80:
		return AlertRed
	case score >= 60:
		return AlertOrange
	case score >= 30:
		return AlertYellow
	default:
		return AlertGreen
	}
}

// DailyMetric is one calendar day's engagement snapshot for a trend.
// Produced by the metrics store, consumed read-only by the engine.
type DailyMetric struct {
	Date                 time.Time `json:"date"`
	TotalEngagement      int64     `json:"total_engagement"`
	Views                int64     `json:"views"`
	PostsCount           int       `json:"posts_count"`
	CreatorsCount        int       `json:"creators_count"`
	AvgCreatorFollowers  float64   `json:"avg_creator_followers"`
	AvgCommentsPerPost   float64   `json:"avg_comments_per_post"`
	AvgEngagementPerPost float64   `json:"avg_engagement_per_post"`
}

// LifecycleInfo is the optional hint from the upstream lifecycle classifier.
// A nil hint means the classifier is unavailable; that is a supported
// degraded mode, not an error.
type LifecycleInfo struct {
	TrendID     string  `json:"trend_id"`
	Stage       string  `json:"stage"`
	DaysInStage int     `json:"days_in_stage"`
	Confidence  float64 `json:"confidence"` // [0,1]
}

// DeclineSignalRequest is the engine's input snapshot.
type DeclineSignalRequest struct {
	TrendID      string         `json:"trend_id"`
	TrendName    string         `json:"trend_name"`
	Lifecycle    *LifecycleInfo `json:"lifecycle_info,omitempty"`
	DailyMetrics []DailyMetric  `json:"daily_metrics"`
}

// Validate rejects requests the engine must not score: fewer than 2 daily
// metrics, non-chronological ordering, or negative counts.
func (r *DeclineSignalRequest) Validate() error {
	if r.TrendID == "" {
		return &ValidationError{Field: "trend_id", Reason: "is required"}
	}
	if len(r.DailyMetrics) < 2 {
		return &ValidationError{
			Field:  "daily_metrics",
			Reason: fmt.Sprintf("need at least 2 daily metrics, got %d", len(r.DailyMetrics)),
		}
	}
	for i, m := range r.DailyMetrics {
		if i > 0 && !m.Date.After(r.DailyMetrics[i-1].Date) {
			return &ValidationError{
				Field:  "daily_metrics",
				Reason: fmt.Sprintf("not in chronological order at index %d", i),
			}
		}
		if m.TotalEngagement < 0 || m.Views < 0 || m.PostsCount < 0 || m.CreatorsCount < 0 {
			return &ValidationError{
				Field:  "daily_metrics",
				Reason: fmt.Sprintf("negative count at index %d", i),
			}
		}
	}
	return nil
}

// ValidationError rejects a request before any scoring happens.
// No partial response is produced for a validation failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// SignalScore is one calculator's normalized output.
type SignalScore struct {
	Name string `json:"name"`
	// Value is the normalized decline score, clamped to [0,100].
	Value     float64 `json:"value"`
	Triggered bool    `json:"triggered"`
	// RawDelta is the underlying measured change (relative drop or
	// acceleration), kept for explainability downstream.
	RawDelta float64 `json:"raw_metric_delta"`
}

// Signal names. The aggregator's weight lookup and the explanation layer
// both key on these.
const (
	SignalEngagementDrop  = "engagement_drop"
	SignalVelocityDecline = "velocity_decline"
	SignalCreatorDecline  = "creator_decline"
	SignalQualityDecline  = "quality_decline"
)

// Weights are the fixed per-deployment aggregation weights.
// They must sum to exactly 1.0.
type Weights struct {
	VelocityDecline float64 `json:"velocity_decline" yaml:"velocity_decline"`
	EngagementDrop  float64 `json:"engagement_drop" yaml:"engagement_drop"`
	CreatorDecline  float64 `json:"creator_decline" yaml:"creator_decline"`
	QualityDecline  float64 `json:"quality_decline" yaml:"quality_decline"`
}

// DefaultWeights returns the calibrated deployment defaults.
func DefaultWeights() Weights {
	return Weights{
		VelocityDecline: 0.35,
		EngagementDrop:  0.30,
		CreatorDecline:  0.25,
		QualityDecline:  0.10,
	}
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.VelocityDecline + w.EngagementDrop + w.CreatorDecline + w.QualityDecline
}

// ForSignal returns the weight assigned to a signal name, or 0 for an
// unknown name.
func (w Weights) ForSignal(name string) float64 {
	switch name {
	case SignalVelocityDecline:
		return w.VelocityDecline
	case SignalEngagementDrop:
		return w.EngagementDrop
	case SignalCreatorDecline:
		return w.CreatorDecline
	case SignalQualityDecline:
		return w.QualityDecline
	default:
		return 0
	}
}

// StageThresholds holds the per-stage sensitivity parameters.
// Drop thresholds are fractions (0.05 = 5%); the acceleration threshold is
// negative (decline fires at or below it).
type StageThresholds struct {
	EngagementDropPct float64 `json:"engagement_drop_pct" yaml:"engagement_drop_pct"`
	VelocityAccel     float64 `json:"velocity_accel" yaml:"velocity_accel"`
	CreatorDropPct    float64 `json:"creator_drop_pct" yaml:"creator_drop_pct"`
	QualityDropPct    float64 `json:"quality_drop_pct" yaml:"quality_drop_pct"`
}

// SignalBreakdown carries all four signal scores plus the weights that were
// applied, as an audit trail.
type SignalBreakdown struct {
	EngagementDrop  SignalScore `json:"engagement_drop"`
	VelocityDecline SignalScore `json:"velocity_decline"`
	CreatorDecline  SignalScore `json:"creator_decline"`
	QualityDecline  SignalScore `json:"quality_decline"`
	Weights         Weights     `json:"weights"`
}

// Scores returns the four scores in aggregation order.
func (b SignalBreakdown) Scores() []SignalScore {
	return []SignalScore{
		b.VelocityDecline,
		b.EngagementDrop,
		b.CreatorDecline,
		b.QualityDecline,
	}
}

// DeclineSignalResponse is the engine's structured output. Downstream
// consumers are the append-only history store and the explanation generator.
type DeclineSignalResponse struct {
	TrendID                 string          `json:"trend_id"`
	TrendName               string          `json:"trend_name,omitempty"`
	OverallRiskScore        float64         `json:"overall_risk_score"`
	AlertLevel              AlertLevel      `json:"alert_level"`
	SignalBreakdown         SignalBreakdown `json:"signal_breakdown"`
	PredictedDaysToCritical *int            `json:"predicted_days_to_critical"`
	Confidence              float64         `json:"confidence"`
	StageUsed               Stage           `json:"stage_used"`
	Timestamp               time.Time       `json:"timestamp"`
}
