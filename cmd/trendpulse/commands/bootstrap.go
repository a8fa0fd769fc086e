package commands

import (
	"fmt"
	"os"

	"github.com/trendpulse/backend/internal/decline"
	"github.com/trendpulse/backend/internal/engineconfig"
	"github.com/trendpulse/backend/pkg/config"
	"github.com/trendpulse/backend/pkg/logger"
)

// buildEngine loads the deployment config (weights + sensitivity table) and
// constructs the decline engine. The config is loaded once here and
// immutable afterwards; a missing file falls back to the built-in defaults.
func buildEngine(cfg *config.Config, log *logger.Logger) (*decline.Engine, error) {
	engineCfg := engineconfig.Default()

	if _, err := os.Stat(cfg.EngineConfigPath); err == nil {
		loaded, yamlData, err := engineconfig.Load(cfg.EngineConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load engine config: %w", err)
		}
		engineCfg = loaded

		snapshot, err := engineconfig.NewConfigSnapshot(engineCfg, yamlData)
		if err != nil {
			return nil, fmt.Errorf("snapshot engine config: %w", err)
		}
		log.WithFields(map[string]interface{}{
			"engine_id":   snapshot.EngineID,
			"config_hash": snapshot.ConfigHash,
		}).Info("Engine config loaded")
	} else {
		log.WithField("path", cfg.EngineConfigPath).Warn("Engine config file not found, using defaults")
	}

	return decline.NewEngineWithConfig(engineCfg.Weights, engineCfg.Table(), log.Zerolog())
}
