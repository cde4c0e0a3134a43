// Package config loads the application configuration. Values come from a
// YAML file layered over defaults; credentials and webhook URLs may also
// arrive via environment variables, which take precedence so secrets can
// stay out of the config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StatePath string `yaml:"state_path"`
	Timezone  string `yaml:"timezone"`

	Canvas struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token,omitempty"`
	} `yaml:"canvas"`

	Webhooks struct {
		Alerts       string `yaml:"alerts,omitempty"`
		DailyBrief   string `yaml:"daily_brief,omitempty"`
		StudyPlan    string `yaml:"study_plan,omitempty"`
		AI           string `yaml:"ai,omitempty"`
		Earnings     string `yaml:"earnings,omitempty"`
		Macro        string `yaml:"macro,omitempty"`
		MarketAlerts string `yaml:"market_alerts,omitempty"`
		Analyst      string `yaml:"analyst,omitempty"`
		Valuation    string `yaml:"valuation,omitempty"`
		Bridge       string `yaml:"bridge,omitempty"`
	} `yaml:"webhooks"`

	News struct {
		MinScore      int    `yaml:"min_score"`
		WatchlistPath string `yaml:"watchlist_path"`
	} `yaml:"news"`

	Dedup struct {
		MaxAgeDays int `yaml:"max_age_days"`
	} `yaml:"dedup"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.StatePath = "./data/state.json"
	cfg.Timezone = "America/New_York"
	cfg.News.MinScore = 50
	cfg.News.WatchlistPath = "./config/watchlists.toml"
	cfg.Dedup.MaxAgeDays = 30
	return cfg
}

// envOverrides maps environment variables onto config fields. Set vars
// always win over file values.
func (c *Config) envOverrides() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Canvas.BaseURL, "CANVAS_BASE_URL")
	set(&c.Canvas.Token, "CANVAS_TOKEN")
	set(&c.Webhooks.Alerts, "DISCORD_WEBHOOK_ALERTS")
	set(&c.Webhooks.DailyBrief, "DISCORD_WEBHOOK_DAILY")
	set(&c.Webhooks.StudyPlan, "DISCORD_WEBHOOK_STUDYPLAN")
	set(&c.Webhooks.AI, "DISCORD_WEBHOOK_AI")
	set(&c.Webhooks.Earnings, "DISCORD_WEBHOOK_EARNINGS")
	set(&c.Webhooks.Macro, "DISCORD_WEBHOOK_MACRO")
	set(&c.Webhooks.MarketAlerts, "DISCORD_WEBHOOK_MARKET_ALERTS")
	set(&c.Webhooks.Analyst, "DISCORD_WEBHOOK_ANALYST")
	set(&c.Webhooks.Valuation, "DISCORD_WEBHOOK_VALUATION")
	set(&c.Webhooks.Bridge, "DISCORD_WEBHOOK_BRIDGE")
}

// Load reads the config file at path, layered over defaults and under
// environment overrides. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.envOverrides()
	return cfg, nil
}
