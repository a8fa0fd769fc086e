package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendpulse/backend/internal/contracts"
)

const validYAML = `meta:
  engine_id: trend_decline_v1
  version: "1.0"

weights:
  velocity_decline: 0.35
  engagement_drop: 0.30
  creator_decline: 0.25
  quality_decline: 0.10

sensitivity:
  EMERGING:
    engagement_drop_pct: 0.10
    velocity_accel: -0.06
    creator_drop_pct: 0.10
    quality_drop_pct: 0.12
  VIRAL_EXPLOSION:
    engagement_drop_pct: 0.05
    velocity_accel: -0.05
    creator_drop_pct: 0.07
    quality_drop_pct: 0.08
  PLATEAU:
    engagement_drop_pct: 0.15
    velocity_accel: -0.08
    creator_drop_pct: 0.15
    quality_drop_pct: 0.18
  DECLINE:
    engagement_drop_pct: 0.08
    velocity_accel: -0.06
    creator_drop_pct: 0.10
    quality_drop_pct: 0.10
  FADED:
    engagement_drop_pct: 0.12
    velocity_accel: -0.07
    creator_drop_pct: 0.12
    quality_drop_pct: 0.15
  UNKNOWN:
    engagement_drop_pct: 0.15
    velocity_accel: -0.08
    creator_drop_pct: 0.15
    quality_drop_pct: 0.18
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, raw, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotEmpty(t, raw)

	assert.Equal(t, "trend_decline_v1", cfg.Meta.EngineID)
	assert.Equal(t, 0.35, cfg.Weights.VelocityDecline)
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)

	table := cfg.Table()
	require.NoError(t, table.Validate())
	assert.Equal(t, -0.05, table[contracts.StageViralExplosion].VelocityAccel)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	// A typo in a threshold name must fail loudly, not score with defaults.
	_, _, err := Load(writeConfig(t, validYAML+`
extra_section:
  foo: 1
`))
	assert.Error(t, err)
}

func TestLoad_WeightsMustSumToOne(t *testing.T) {
	broken := `meta:
  engine_id: trend_decline_v1
weights:
  velocity_decline: 0.35
  engagement_drop: 0.30
  creator_decline: 0.25
  quality_decline: 0.20
sensitivity:
  UNKNOWN:
    engagement_drop_pct: 0.15
    velocity_accel: -0.08
    creator_drop_pct: 0.15
    quality_drop_pct: 0.18
`
	_, _, err := Load(writeConfig(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	// The built-in defaults and the deployed YAML must agree.
	loaded, _, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, cfg.Weights, loaded.Weights)
	assert.Equal(t, cfg.Sensitivity, loaded.Sensitivity)
}

func TestHash_Deterministic(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := Default()
	changed.Weights.VelocityDecline = 0.40
	changed.Weights.EngagementDrop = 0.25
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestNewConfigSnapshot(t *testing.T) {
	cfg, raw, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	snap, err := NewConfigSnapshot(cfg, raw)
	require.NoError(t, err)

	assert.Equal(t, "trend_decline_v1", snap.EngineID)
	assert.Len(t, snap.ConfigHash, 64)
	assert.Equal(t, validYAML, snap.ConfigYAML)
}
