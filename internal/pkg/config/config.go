package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Report   ReportConfig   `yaml:"report"`
	Postgres PostgresConfig `yaml:"postgres"`
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type EngineConfig struct {
	KickoffBucket       string  `yaml:"kickoff_bucket"`       // e.g. "15m", default 15m
	SimilarityThreshold float64 `yaml:"similarity_threshold"` // default 0.85
	RequireLeagueMatch  bool    `yaml:"require_league_match"`
	ReferenceTimezone   string  `yaml:"reference_timezone"` // default UTC
	AliasesPath         string  `yaml:"aliases_path"`
}

type IngestConfig struct {
	RawDir string `yaml:"raw_dir"`
}

type ReportConfig struct {
	TotalStake float64 `yaml:"total_stake"` // default 1000
	Top        int     `yaml:"top"`         // default 10
	OutputFile string  `yaml:"output_file"` // opportunities NDJSON, empty = don't write
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebhookConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional log file, in addition to stdout
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.KickoffBucket == "" {
		c.Engine.KickoffBucket = "15m"
	}
	if c.Engine.SimilarityThreshold <= 0 || c.Engine.SimilarityThreshold > 1 {
		c.Engine.SimilarityThreshold = 0.85
	}
	if c.Engine.ReferenceTimezone == "" {
		c.Engine.ReferenceTimezone = "UTC"
	}
	if c.Ingest.RawDir == "" {
		c.Ingest.RawDir = "data/raw"
	}
	if c.Report.TotalStake <= 0 {
		c.Report.TotalStake = 1000
	}
	if c.Report.Top <= 0 {
		c.Report.Top = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// BucketDuration parses the configured kickoff bucket width.
func (c *EngineConfig) BucketDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.KickoffBucket)
	if err != nil {
		return 0, fmt.Errorf("invalid kickoff_bucket %q: %w", c.KickoffBucket, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("kickoff_bucket must be positive, got %q", c.KickoffBucket)
	}
	return d, nil
}

// ReferenceLocation resolves the configured timezone name.
func (c *EngineConfig) ReferenceLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reference_timezone %q: %w", c.ReferenceTimezone, err)
	}
	return loc, nil
}
