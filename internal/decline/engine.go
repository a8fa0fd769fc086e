package decline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// Engine computes early decline signals for a trend. It is stateless per
// request and a pure function of the input snapshot: any number of
// evaluations may run in parallel, including for the same trend.
type Engine struct {
	resolver    *Resolver
	sensitivity SensitivityTable
	calculators []SignalCalculator
	aggregator  *Aggregator
	predictor   *Predictor
	log         zerolog.Logger
}

// NewEngine creates an engine with the default weights and sensitivity table.
func NewEngine(log zerolog.Logger) *Engine {
	e, _ := NewEngineWithConfig(contracts.DefaultWeights(), DefaultSensitivityTable(), log)
	return e
}

// NewEngineWithConfig creates an engine from deployment configuration.
// The weights and table are validated once here and immutable afterwards.
func NewEngineWithConfig(weights contracts.Weights, table SensitivityTable, log zerolog.Logger) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	aggregator, err := NewAggregatorWithWeights(weights, log)
	if err != nil {
		return nil, err
	}

	return &Engine{
		resolver:    NewResolver(log),
		sensitivity: table,
		calculators: []SignalCalculator{
			NewVelocityDeclineCalculator(log),
			NewEngagementDropCalculator(log),
			NewCreatorDeclineCalculator(log),
			NewQualityDeclineCalculator(log),
		},
		aggregator: aggregator,
		predictor:  NewPredictor(log),
		log:        log.With().Str("component", "decline.engine").Logger(),
	}, nil
}

// Evaluate scores one trend. It rejects invalid requests with a
// *contracts.ValidationError and otherwise always produces a response, even
// when the lifecycle classifier is degraded.
func (e *Engine) Evaluate(ctx context.Context, req contracts.DeclineSignalRequest) (*contracts.DeclineSignalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	stage, lifecycleConfidence, degraded := e.resolver.Resolve(req.Lifecycle)
	if degraded {
		e.log.Warn().
			Str("trend_id", req.TrendID).
			Msg("lifecycle classifier unavailable, scoring with UNKNOWN stage")
	}
	thresholds := e.sensitivity.Thresholds(stage)

	breakdown := e.computeBreakdown(req.DailyMetrics, thresholds)
	overall, level := e.aggregator.Aggregate(breakdown)

	trajectory := e.riskTrajectory(req.DailyMetrics, thresholds)
	daysToCritical := e.predictor.Predict(trajectory, overall, breakdown.VelocityDecline.RawDelta)

	confidence := estimateConfidence(req.DailyMetrics, lifecycleConfidence)

	resp := &contracts.DeclineSignalResponse{
		TrendID:                 req.TrendID,
		TrendName:               req.TrendName,
		OverallRiskScore:        overall,
		AlertLevel:              level,
		SignalBreakdown:         breakdown,
		PredictedDaysToCritical: daysToCritical,
		Confidence:              confidence,
		StageUsed:               stage,
		Timestamp:               time.Now().UTC(),
	}

	e.log.Info().
		Str("trend_id", req.TrendID).
		Str("stage", string(stage)).
		Float64("overall_risk_score", overall).
		Str("alert_level", string(level)).
		Float64("confidence", confidence).
		Msg("trend evaluated")

	return resp, nil
}

// computeBreakdown runs all four calculators over the metric window.
// A calculator failure is isolated to its own score: the others still run.
func (e *Engine) computeBreakdown(metrics []contracts.DailyMetric, th contracts.StageThresholds) contracts.SignalBreakdown {
	breakdown := contracts.SignalBreakdown{Weights: e.aggregator.Weights()}

	for _, calc := range e.calculators {
		score := e.safeCalculate(calc, metrics, th)
		switch score.Name {
		case contracts.SignalEngagementDrop:
			breakdown.EngagementDrop = score
		case contracts.SignalVelocityDecline:
			breakdown.VelocityDecline = score
		case contracts.SignalCreatorDecline:
			breakdown.CreatorDecline = score
		case contracts.SignalQualityDecline:
			breakdown.QualityDecline = score
		}
	}

	return breakdown
}

// safeCalculate guards a single calculator: an arithmetic fault downgrades
// that signal to "no signal" instead of aborting the evaluation.
func (e *Engine) safeCalculate(calc SignalCalculator, metrics []contracts.DailyMetric, th contracts.StageThresholds) (score contracts.SignalScore) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().
				Str("signal", calc.Name()).
				Interface("panic", r).
				Msg("signal calculator failed, treating as no signal")
			score = noSignal(calc.Name())
		}
	}()
	return calc.Calculate(metrics, th)
}

// riskTrajectory replays the calculators over each prefix of the window to
// obtain the interim risk score per day. The predictor extrapolates from
// this series, which keeps the engine a pure function of the request rather
// than a consumer of stored history.
func (e *Engine) riskTrajectory(metrics []contracts.DailyMetric, th contracts.StageThresholds) []float64 {
	var trajectory []float64
	for k := 2; k <= len(metrics); k++ {
		b := e.computeBreakdown(metrics[:k], th)
		risk, _ := e.aggregator.Aggregate(b)
		trajectory = append(trajectory, risk)
	}
	return trajectory
}
