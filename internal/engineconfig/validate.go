package engineconfig

import (
	"fmt"
	"math"
)

// Validate checks the invariants deployment config must hold before the
// engine is allowed to start: weights summing to exactly 1.0 and a
// sensitivity table that is total over the stage enum.
func Validate(cfg *Config) error {
	if cfg.Meta.EngineID == "" {
		return fmt.Errorf("meta.engine_id is required")
	}

	if sum := cfg.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	if cfg.Weights.VelocityDecline < 0 || cfg.Weights.EngagementDrop < 0 ||
		cfg.Weights.CreatorDecline < 0 || cfg.Weights.QualityDecline < 0 {
		return fmt.Errorf("weights must be non-negative")
	}

	return cfg.Table().Validate()
}
