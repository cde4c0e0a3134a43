package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StatePath != "./data/state.json" {
		t.Errorf("state path = %q", cfg.StatePath)
	}
	if cfg.News.MinScore != 50 || cfg.Dedup.MaxAgeDays != 30 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
state_path: /var/lib/beacon/state.json
timezone: America/Chicago
canvas:
  base_url: https://school.instructure.com
news:
  min_score: 60
webhooks:
  alerts: https://discord.com/api/webhooks/1/a
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "America/Chicago" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.Canvas.BaseURL != "https://school.instructure.com" {
		t.Errorf("canvas base url = %q", cfg.Canvas.BaseURL)
	}
	if cfg.News.MinScore != 60 {
		t.Errorf("min score = %d", cfg.News.MinScore)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Dedup.MaxAgeDays != 30 {
		t.Errorf("max age = %d", cfg.Dedup.MaxAgeDays)
	}
	if cfg.Webhooks.Alerts != "https://discord.com/api/webhooks/1/a" {
		t.Errorf("alerts webhook = %q", cfg.Webhooks.Alerts)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config should error")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
canvas:
  token: from-file
webhooks:
  alerts: https://file.example/hook
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CANVAS_TOKEN", "from-env")
	t.Setenv("DISCORD_WEBHOOK_ALERTS", "https://env.example/hook")
	t.Setenv("DISCORD_WEBHOOK_ANALYST", "https://env.example/analyst")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Canvas.Token != "from-env" {
		t.Errorf("token = %q, want env value", cfg.Canvas.Token)
	}
	if cfg.Webhooks.Alerts != "https://env.example/hook" {
		t.Errorf("alerts = %q, want env value", cfg.Webhooks.Alerts)
	}
	if cfg.Webhooks.Analyst != "https://env.example/analyst" {
		t.Errorf("analyst = %q, want env value", cfg.Webhooks.Analyst)
	}
}

func TestEmptyEnvDoesNotClobber(t *testing.T) {
	t.Setenv("CANVAS_TOKEN", "")
	cfg := DefaultConfig()
	cfg.Canvas.Token = "keep"
	cfg.envOverrides()
	if cfg.Canvas.Token != "keep" {
		t.Errorf("token = %q", cfg.Canvas.Token)
	}
}
