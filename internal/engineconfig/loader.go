package engineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and returns the Config with the raw bytes.
// KnownFields(true) makes a typo or stale field fail immediately instead of
// silently scoring with defaults.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, data, err
	}

	return &cfg, data, nil
}

// Hash generates a SHA-256 hash of the config via canonical JSON.
// Structs, not maps of interface{}, keep the field order deterministic.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewConfigSnapshot creates an audit snapshot of the loaded configuration.
func NewConfigSnapshot(cfg *Config, yamlData []byte) (*ConfigSnapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &ConfigSnapshot{
		ConfigHash: hash,
		ConfigYAML: string(yamlData),
		EngineID:   cfg.Meta.EngineID,
		CreatedAt:  time.Now(),
	}, nil
}
