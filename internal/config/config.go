// Package config provides configuration management for cardpress using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultCollectionDir = "cards"
	defaultExpectedCount = 78
	defaultTempMaxAge    = time.Hour
	defaultRefsDocument  = "index.html"
)

// Config holds all configuration for the application.
type Config struct {
	Collection CollectionConfig `mapstructure:"collection"`
	Backup     BackupConfig     `mapstructure:"backup"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Refs       RefsConfig       `mapstructure:"refs"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// CollectionConfig describes the managed image collection.
type CollectionConfig struct {
	// Dir is the collection root containing the image assets.
	Dir string `mapstructure:"dir"`
	// ExpectedCount is the expected number of live assets after a run.
	// A shortfall is flagged in the final report. 0 disables the check.
	ExpectedCount int `mapstructure:"expected_count"`
	// MaxAssetSize skips assets larger than this size. 0 = unlimited.
	// Supports human-readable values like "50MB".
	MaxAssetSize ByteSize `mapstructure:"max_asset_size"`
	// TempMaxAge is the age after which orphaned candidate files left by a
	// crashed run are removed at startup.
	TempMaxAge Duration `mapstructure:"temp_max_age"`
}

// BackupConfig holds backup area configuration.
type BackupConfig struct {
	// Dir is the parent directory for backup areas.
	// Empty = inside the collection directory (matching the layout the
	// collection scanner skips).
	Dir string `mapstructure:"dir"`
}

// PolicyConfig holds format policy options.
type PolicyConfig struct {
	// AllowAlphaWebP permits converting transparent PNGs to WebP in the
	// aggressive and convertwebp modes. Disabled by default because the
	// container change requires the markup references to be rewritten.
	AllowAlphaWebP bool `mapstructure:"allow_alpha_webp"`
}

// DatabaseConfig holds the backup-ledger index configuration.
type DatabaseConfig struct {
	// Enabled controls whether backup metadata is indexed in sqlite.
	// The filesystem remains the authoritative backup record either way.
	Enabled bool `mapstructure:"enabled"`
	// DSN is the sqlite database path. Empty = "ledger.db" inside the
	// backup parent directory.
	DSN string `mapstructure:"dsn"`
	// LogLevel controls GORM logging: silent, error, warn, info.
	LogLevel string `mapstructure:"log_level"`
}

// RefsConfig holds markup reference-updater configuration.
type RefsConfig struct {
	// Document is the markup file whose literal filename references are
	// rewritten after container changes. Empty disables the stage.
	Document string `mapstructure:"document"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with CARDPRESS_ and use underscores
// for nesting. Example: CARDPRESS_COLLECTION_DIR=./cards.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("cardpress")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cardpress")
	}

	v.SetEnvPrefix("CARDPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	// The extra TextUnmarshaller hook lets ByteSize and Duration fields
	// accept human-readable strings like "50MB" and "2d12h".
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("collection.dir", defaultCollectionDir)
	v.SetDefault("collection.expected_count", defaultExpectedCount)
	v.SetDefault("collection.max_asset_size", 0)
	v.SetDefault("collection.temp_max_age", defaultTempMaxAge)

	v.SetDefault("backup.dir", "")

	v.SetDefault("policy.allow_alpha_webp", false)

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("refs.document", defaultRefsDocument)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Collection.Dir == "" {
		return fmt.Errorf("collection.dir is required")
	}
	if c.Collection.ExpectedCount < 0 {
		return fmt.Errorf("collection.expected_count must not be negative")
	}
	if c.Collection.MaxAssetSize < 0 {
		return fmt.Errorf("collection.max_asset_size must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	validDBLevels := map[string]bool{"silent": true, "error": true, "warn": true, "info": true}
	if !validDBLevels[c.Database.LogLevel] {
		return fmt.Errorf("database.log_level must be one of: silent, error, warn, info")
	}

	return nil
}

// BackupRoot returns the parent directory for backup areas.
// If Dir is set, returns it directly; otherwise the collection directory.
func (c *BackupConfig) BackupRoot(collectionDir string) string {
	if c.Dir != "" {
		return c.Dir
	}
	return collectionDir
}

// LedgerDSN returns the sqlite path for the backup-ledger index.
func (c *DatabaseConfig) LedgerDSN(backupRoot string) string {
	if c.DSN != "" {
		return c.DSN
	}
	return filepath.Join(backupRoot, "ledger.db")
}
