package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cards", cfg.Collection.Dir)
	assert.Equal(t, 78, cfg.Collection.ExpectedCount)
	assert.Equal(t, ByteSize(0), cfg.Collection.MaxAssetSize)
	assert.Equal(t, time.Hour, cfg.Collection.TempMaxAge.Duration())
	assert.Empty(t, cfg.Backup.Dir)
	assert.False(t, cfg.Policy.AllowAlphaWebP)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "index.html", cfg.Refs.Document)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cardpress.yaml")
	content := `
collection:
  dir: artwork
  expected_count: 10
  max_asset_size: 50MB
  temp_max_age: 2d
policy:
  allow_alpha_webp: true
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "artwork", cfg.Collection.Dir)
	assert.Equal(t, 10, cfg.Collection.ExpectedCount)
	assert.Equal(t, int64(50*1024*1024), cfg.Collection.MaxAssetSize.Bytes())
	assert.Equal(t, 48*time.Hour, cfg.Collection.TempMaxAge.Duration())
	assert.True(t, cfg.Policy.AllowAlphaWebP)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cardpress.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		v := viper.New()
		SetDefaults(v)
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"missing collection dir", func(c *Config) { c.Collection.Dir = "" }, "collection.dir"},
		{"negative expected count", func(c *Config) { c.Collection.ExpectedCount = -1 }, "expected_count"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad db log level", func(c *Config) { c.Database.LogLevel = "chatty" }, "database.log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestBackupRoot(t *testing.T) {
	cfg := BackupConfig{}
	assert.Equal(t, "/data/cards", cfg.BackupRoot("/data/cards"))

	cfg.Dir = "/backups"
	assert.Equal(t, "/backups", cfg.BackupRoot("/data/cards"))
}

func TestLedgerDSN(t *testing.T) {
	cfg := DatabaseConfig{}
	assert.Equal(t, filepath.Join("/backups", "ledger.db"), cfg.LedgerDSN("/backups"))

	cfg.DSN = "custom.db"
	assert.Equal(t, "custom.db", cfg.LedgerDSN("/backups"))
}
