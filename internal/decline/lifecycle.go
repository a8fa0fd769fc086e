package decline

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/trendpulse/backend/internal/contracts"
)

// DefaultLifecycleConfidence is assumed when the upstream classifier gave no
// hint. It keeps a degraded evaluation from looking either certain or broken.
const DefaultLifecycleConfidence = 0.5

// Resolver normalizes the optional upstream lifecycle hint into a stage.
// A missing hint is a supported degraded mode (classifier down), never an
// error: the resolver falls back to UNKNOWN and the default confidence, and
// no stage is inferred from the metrics themselves so an upstream outage
// cannot masquerade as a real classification.
type Resolver struct {
	log zerolog.Logger
}

// NewResolver creates a lifecycle stage resolver.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{
		log: log.With().Str("component", "decline.lifecycle").Logger(),
	}
}

// Resolve returns the stage to score with, the lifecycle confidence to carry
// forward, and whether the evaluation is running degraded.
func (r *Resolver) Resolve(info *contracts.LifecycleInfo) (stage contracts.Stage, confidence float64, degraded bool) {
	if info == nil {
		r.log.Debug().Msg("no lifecycle hint, falling back to UNKNOWN stage")
		return contracts.StageUnknown, DefaultLifecycleConfidence, true
	}

	stage = parseStage(info.Stage)
	confidence = info.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	if stage == contracts.StageUnknown && !strings.EqualFold(info.Stage, string(contracts.StageUnknown)) {
		r.log.Warn().
			Str("stage", info.Stage).
			Msg("unrecognized lifecycle stage from classifier")
	}

	return stage, confidence, false
}

// parseStage maps a classifier stage string to the enum, case-insensitively.
// Anything unrecognized maps to UNKNOWN.
func parseStage(s string) contracts.Stage {
	for _, stage := range contracts.Stages() {
		if strings.EqualFold(s, string(stage)) {
			return stage
		}
	}
	return contracts.StageUnknown
}
