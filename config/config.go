// Package config loads the FinLens YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/finlens/finlens/types"
)

// Config represents the main configuration
type Config struct {
	Provider      string        `yaml:"provider"`
	Regions       []string      `yaml:"regions"`
	ResourceTypes []string      `yaml:"resource_types,omitempty"`
	MockSeed      int64         `yaml:"mock_seed,omitempty"`
	Workers       int           `yaml:"workers,omitempty"`
	ScanInterval  time.Duration `yaml:"scan_interval,omitempty"`

	Storage Storage `yaml:"storage,omitempty"`
	Server  Server  `yaml:"server,omitempty"`
	Alerts  Alerts  `yaml:"alerts,omitempty"`
	OTEL    OTEL    `yaml:"otel,omitempty"`
}

// Storage configures persistence paths.
type Storage struct {
	Dir              string `yaml:"dir"`
	ScanLogDir       string `yaml:"scan_log_dir"`
	ScanLogRetention int    `yaml:"scan_log_retention_days"`
}

// Server configures the HTTP surfaces.
type Server struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Alerts configures Slack notification behavior.
type Alerts struct {
	SlackWebhookURL    string  `yaml:"slack_webhook_url,omitempty"`
	BudgetThresholdUSD float64 `yaml:"budget_threshold_usd,omitempty"`
}

// OTEL configures trace export.
type OTEL struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Provider:     "mock",
		Regions:      []string{"us-east-1"},
		MockSeed:     42,
		Workers:      16,
		ScanInterval: 6 * time.Hour,
		Storage: Storage{
			Dir:              "data",
			ScanLogDir:       "data/scanlog",
			ScanLogRetention: 30,
		},
		Server: Server{
			ListenAddr:  ":8080",
			MetricsAddr: ":9090",
		},
	}
	for _, t := range types.AllResourceTypes() {
		cfg.ResourceTypes = append(cfg.ResourceTypes, string(t))
	}
	return cfg
}

// Load reads configuration from file, filling gaps with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}
	if len(c.ResourceTypes) == 0 {
		return fmt.Errorf("at least one resource type is required")
	}
	for _, raw := range c.ResourceTypes {
		if _, err := types.ParseResourceType(raw); err != nil {
			return err
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.ScanInterval < 0 {
		return fmt.Errorf("scan_interval must not be negative")
	}
	if c.Alerts.BudgetThresholdUSD < 0 {
		return fmt.Errorf("budget_threshold_usd must not be negative")
	}
	return nil
}
