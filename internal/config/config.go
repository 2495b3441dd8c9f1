// Package config loads engine configuration from YAML with sane defaults
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration. Every field has a default so an
// absent or partial file still yields a working engine.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
	Quality QualityConfig `yaml:"quality"`
	Merge   MergeConfig   `yaml:"merge"`
	Notify  NotifyConfig  `yaml:"notify"`
	Obs     ObsConfig     `yaml:"observability"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// JournalConfig controls durable persistence. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// QualityConfig controls scorer wrapping.
type QualityConfig struct {
	TimeoutMS int `yaml:"timeout_ms"`
	CacheSize int `yaml:"cache_size"`
}

// MergeConfig holds the tunable merge-policy thresholds.
type MergeConfig struct {
	ManualConflictThreshold     int     `yaml:"manual_conflict_threshold"`
	ManualModificationThreshold int     `yaml:"manual_modification_threshold"`
	ImprovementNote             float64 `yaml:"improvement_note"`
	ModificationNote            int     `yaml:"modification_note"`
	QualityConflictThreshold    float64 `yaml:"quality_conflict_threshold"`
}

// NotifyConfig controls the notification bus.
type NotifyConfig struct {
	Buffer int `yaml:"buffer"`
}

// ObsConfig controls the observability HTTP server.
type ObsConfig struct {
	Port int `yaml:"port"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Journal: JournalConfig{
			Path: "revstore.journal",
		},
		Quality: QualityConfig{
			TimeoutMS: 5000,
			CacheSize: 1024,
		},
		Merge: MergeConfig{
			ManualConflictThreshold:     5,
			ManualModificationThreshold: 20,
			ImprovementNote:             0.1,
			ModificationNote:            10,
			QualityConflictThreshold:    0.2,
		},
		Notify: NotifyConfig{
			Buffer: 256,
		},
		Obs: ObsConfig{
			Port: 9090,
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error;
// the defaults apply unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
