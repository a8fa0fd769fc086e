package decline

import (
	"fmt"

	"github.com/trendpulse/backend/internal/contracts"
)

// SensitivityTable maps each lifecycle stage to its threshold parameters.
// It is pure configuration: built once at process start, never mutated.
type SensitivityTable map[contracts.Stage]contracts.StageThresholds

// DefaultSensitivityTable returns the calibrated per-stage thresholds.
// VIRAL_EXPLOSION is maximally sensitive (a hot trend cooling is the most
// valuable early warning), PLATEAU least. UNKNOWN uses the PLATEAU midpoint
// so a missing classifier neither over- nor under-alerts.
func DefaultSensitivityTable() SensitivityTable {
	plateau := contracts.StageThresholds{
		EngagementDropPct: 0.15,
		VelocityAccel:     -0.08,
		CreatorDropPct:    0.15,
		QualityDropPct:    0.18,
	}
	return SensitivityTable{
		contracts.StageEmerging: {
			EngagementDropPct: 0.10,
			VelocityAccel:     -0.06,
			CreatorDropPct:    0.10,
			QualityDropPct:    0.12,
		},
		contracts.StageViralExplosion: {
			EngagementDropPct: 0.05,
			VelocityAccel:     -0.05,
			CreatorDropPct:    0.07,
			QualityDropPct:    0.08,
		},
		contracts.StagePlateau: plateau,
		contracts.StageDecline: {
			EngagementDropPct: 0.08,
			VelocityAccel:     -0.06,
			CreatorDropPct:    0.10,
			QualityDropPct:    0.10,
		},
		contracts.StageFaded: {
			EngagementDropPct: 0.12,
			VelocityAccel:     -0.07,
			CreatorDropPct:    0.12,
			QualityDropPct:    0.15,
		},
		contracts.StageUnknown: plateau,
	}
}

// Thresholds returns the parameters for a stage, falling back to the
// UNKNOWN entry for anything outside the enum.
func (t SensitivityTable) Thresholds(stage contracts.Stage) contracts.StageThresholds {
	if th, ok := t[stage]; ok {
		return th
	}
	return t[contracts.StageUnknown]
}

// Validate checks the table is total over the stage enum with sane values:
// positive drop thresholds, strictly negative acceleration thresholds.
func (t SensitivityTable) Validate() error {
	for _, stage := range contracts.Stages() {
		th, ok := t[stage]
		if !ok {
			return fmt.Errorf("sensitivity table missing stage %s", stage)
		}
		if th.EngagementDropPct <= 0 || th.CreatorDropPct <= 0 || th.QualityDropPct <= 0 {
			return fmt.Errorf("stage %s: drop thresholds must be positive", stage)
		}
		if th.VelocityAccel >= 0 {
			return fmt.Errorf("stage %s: velocity acceleration threshold must be negative", stage)
		}
	}
	return nil
}
