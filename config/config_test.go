package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mock", cfg.Provider)
	assert.Len(t, cfg.ResourceTypes, 12)
	assert.Equal(t, 6*time.Hour, cfg.ScanInterval)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
provider: aws
regions:
  - us-east-1
  - eu-west-1
resource_types:
  - EC2
  - S3
workers: 8
scan_interval: 1h
storage:
  dir: /var/lib/finlens
  scan_log_dir: /var/lib/finlens/scanlog
  scan_log_retention_days: 14
alerts:
  slack_webhook_url: https://hooks.slack.com/services/T/B/x
  budget_threshold_usd: 1000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "aws", cfg.Provider)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.Regions)
	assert.Equal(t, []string{"EC2", "S3"}, cfg.ResourceTypes)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, time.Hour, cfg.ScanInterval)
	assert.Equal(t, "/var/lib/finlens", cfg.Storage.Dir)
	assert.Equal(t, 14, cfg.Storage.ScanLogRetention)
	assert.Equal(t, 1000.0, cfg.Alerts.BudgetThresholdUSD)

	// Unset fields keep defaults.
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, int64(42), cfg.MockSeed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/finlens.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "provider: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no provider", func(c *Config) { c.Provider = "" }, "provider is required"},
		{"no regions", func(c *Config) { c.Regions = nil }, "at least one region"},
		{"no types", func(c *Config) { c.ResourceTypes = nil }, "at least one resource type"},
		{"unknown type", func(c *Config) { c.ResourceTypes = []string{"FOO"} }, "unknown resource type"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"negative interval", func(c *Config) { c.ScanInterval = -time.Hour }, "scan_interval"},
		{"negative budget", func(c *Config) { c.Alerts.BudgetThresholdUSD = -5 }, "budget_threshold_usd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
