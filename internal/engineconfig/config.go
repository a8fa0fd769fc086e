package engineconfig

import (
	"time"

	"github.com/trendpulse/backend/internal/contracts"
	"github.com/trendpulse/backend/internal/decline"
)

// Config is the engine's deployment-time configuration: the aggregation
// weights and the per-stage sensitivity table. Loaded once at process start
// and immutable for the process lifetime; never a request parameter.
type Config struct {
	Meta        Meta                                 `yaml:"meta" json:"meta"`
	Weights     contracts.Weights                    `yaml:"weights" json:"weights"`
	Sensitivity map[string]contracts.StageThresholds `yaml:"sensitivity" json:"sensitivity"`
}

// Meta identifies a configuration revision.
type Meta struct {
	EngineID string `yaml:"engine_id" json:"engine_id"`
	Version  string `yaml:"version" json:"version"`
}

// Table converts the YAML stage map into the engine's sensitivity table.
func (c *Config) Table() decline.SensitivityTable {
	table := make(decline.SensitivityTable, len(c.Sensitivity))
	for stage, th := range c.Sensitivity {
		table[contracts.Stage(stage)] = th
	}
	return table
}

// Default returns the built-in configuration used when no YAML file is
// deployed. It matches config/engine.yaml.
func Default() *Config {
	sensitivity := make(map[string]contracts.StageThresholds)
	for stage, th := range decline.DefaultSensitivityTable() {
		sensitivity[string(stage)] = th
	}
	return &Config{
		Meta:        Meta{EngineID: "trend_decline_v1", Version: "1.0"},
		Weights:     contracts.DefaultWeights(),
		Sensitivity: sensitivity,
	}
}

// ConfigSnapshot records which configuration produced a batch of
// evaluations, for audit.
type ConfigSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	EngineID   string    `json:"engine_id"`
	CreatedAt  time.Time `json:"created_at"`
}
