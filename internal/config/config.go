// Package config loads and saves the fintrack.yaml configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level fintrack.yaml configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Quota     QuotaConfig     `yaml:"quota"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
	Audit     AuditConfig     `yaml:"audit"`
}

// StorageConfig locates and sizes the substrate.
type StorageConfig struct {
	Path          string `yaml:"path"`
	CapacityBytes int64  `yaml:"capacity_bytes"`
}

// QuotaConfig controls the capacity monitor.
type QuotaConfig struct {
	WarningRatio   float64       `yaml:"warning_ratio"`
	CriticalRatio  float64       `yaml:"critical_ratio"`
	EmergencyRatio float64       `yaml:"emergency_ratio"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	// ArchiveDays is the age horizon for the archive cleanup strategy.
	ArchiveDays int `yaml:"archive_days"`
}

// SnapshotsConfig bounds the rollback ring.
type SnapshotsConfig struct {
	Max int `yaml:"max"`
}

// AuditConfig controls the CSV audit trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a fintrack.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new store.
func Default(storagePath string) *Config {
	return &Config{
		Storage: StorageConfig{
			Path:          storagePath,
			CapacityBytes: 10 << 20, // mirrors a browser storage quota
		},
		Quota: QuotaConfig{
			WarningRatio:   0.80,
			CriticalRatio:  0.95,
			EmergencyRatio: 0.98,
			PollInterval:   60 * time.Second,
			ArchiveDays:    365,
		},
		Snapshots: SnapshotsConfig{
			Max: 5,
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    "fintrack-audit.csv",
		},
	}
}
