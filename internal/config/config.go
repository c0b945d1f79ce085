package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Strangekim/jabdonsani/pkg/crawler"
)

// FieldAuto marks a source whose field should be inferred per item.
const FieldAuto = "auto"

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Sources   []SourceConfig  `yaml:"sources"`
	Alerts    AlertsConfig    `yaml:"alerts"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig configures when scheduled batch runs fire. Cron
// expressions are evaluated in UTC.
type ScheduleConfig struct {
	Crons []string `yaml:"crons"`
}

// AnthropicConfig configures the translation model.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// SourceConfig is one crawl target. Field is a fixed field name or
// "auto" to let the model infer it per item.
type SourceConfig struct {
	Source string `yaml:"source"`
	Field  string `yaml:"field"`
	Limit  int    `yaml:"limit"`
}

// CrawlerConfig converts the YAML entry into a crawler config.
func (s SourceConfig) CrawlerConfig() (crawler.Config, error) {
	cfg := crawler.Config{
		Source: crawler.Source(s.Source),
		Limit:  s.Limit,
	}

	if s.Field == FieldAuto || s.Field == "" {
		cfg.Classification = crawler.InferredField()
		return cfg, nil
	}

	f := crawler.Field(s.Field)
	if !crawler.ValidField(f) {
		return crawler.Config{}, fmt.Errorf("source %s: unknown field %q", s.Source, s.Field)
	}
	cfg.Classification = crawler.FixedField(f)
	return cfg, nil
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./jabdonsani.db"},
		Server:   ServerConfig{Port: 4000},
		Schedule: ScheduleConfig{
			// 07:00 and 19:00 KST.
			Crons: []string{"0 22 * * *", "0 10 * * *"},
		},
		Sources: []SourceConfig{
			{Source: "hn", Field: FieldAuto, Limit: 15},
			{Source: "hfpapers", Field: "ai", Limit: 12},
			{Source: "devto", Field: "ai", Limit: 10},
			{Source: "lobsters", Field: "dev", Limit: 10},
			{Source: "devto", Field: "robotics", Limit: 8},
		},
		Alerts: AlertsConfig{},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// CrawlerConfigs converts all source entries, failing on the first
// invalid one.
func (c *Config) CrawlerConfigs() ([]crawler.Config, error) {
	out := make([]crawler.Config, 0, len(c.Sources))
	for _, s := range c.Sources {
		cc, err := s.CrawlerConfig()
		if err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JABDONSANI_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
}
