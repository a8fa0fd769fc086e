package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/trendpulse")
	t.Setenv("LIFECYCLE_BASE_URL", "http://localhost:8091")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("Port = %s, want 8090", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %s, want development", cfg.Env)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.EngineConfigPath != "config/engine.yaml" {
		t.Errorf("EngineConfigPath = %s, want config/engine.yaml", cfg.EngineConfigPath)
	}
	if cfg.EvaluateSchedule != "0 0 * * * *" {
		t.Errorf("EvaluateSchedule = %s, want hourly", cfg.EvaluateSchedule)
	}
	if cfg.Lifecycle.Timeout != 5*time.Second {
		t.Errorf("Lifecycle.Timeout = %v, want 5s", cfg.Lifecycle.Timeout)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LIFECYCLE_BASE_URL", "http://localhost:8091")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_RequiresLifecycleURLWhenEnabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/trendpulse")
	t.Setenv("LIFECYCLE_BASE_URL", "")
	t.Setenv("LIFECYCLE_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error with LIFECYCLE_ENABLED and no base URL")
	}

	// Disabling the classifier makes the URL optional.
	t.Setenv("LIFECYCLE_ENABLED", "false")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with classifier disabled error = %v", err)
	}
	if cfg.Lifecycle.Enabled {
		t.Error("Lifecycle.Enabled = true, want false")
	}
}

func TestLoad_RejectsUnknownEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/trendpulse")
	t.Setenv("LIFECYCLE_BASE_URL", "http://localhost:8091")
	t.Setenv("ENV", "qa")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown ENV")
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("LIFECYCLE_RPS", "fast")
	t.Setenv("REDIS_ENABLED", "maybe")
	t.Setenv("DB_MAX_CONN_LIFETIME", "forever")

	if got := getEnvAsInt("DB_MAX_CONNS", 25); got != 25 {
		t.Errorf("getEnvAsInt = %d, want fallback 25", got)
	}
	if got := getEnvAsFloat("LIFECYCLE_RPS", 5); got != 5 {
		t.Errorf("getEnvAsFloat = %v, want fallback 5", got)
	}
	if got := getEnvAsBool("REDIS_ENABLED", true); got != true {
		t.Errorf("getEnvAsBool = %v, want fallback true", got)
	}
	if got := getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"); got != time.Hour {
		t.Errorf("getEnvAsDuration = %v, want fallback 1h", got)
	}
}
