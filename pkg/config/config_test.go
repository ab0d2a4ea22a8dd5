package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
llm:
  base_url: https://api.groq.com/openai/v1
  api_key: test-key
  model: llama-3.3-70b-versatile
sources:
  use_mock: false
  linkedin:
    enabled: true
    timeout: 25
    rps: 0.5
  glassdoor:
    enabled: true
    partner_id: pid
    partner_key: pkey
search:
  overall_timeout: 12
cache:
  expiry: 600
refresh:
  spec: "@every 30m"
  max_searches: 25
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.LLM.APIKey != "test-key" || cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if !cfg.Sources.LinkedIn.Enabled || cfg.Sources.LinkedIn.RPS != 0.5 {
		t.Errorf("linkedin = %+v", cfg.Sources.LinkedIn)
	}
	if cfg.Sources.Glassdoor.PartnerID != "pid" || !cfg.Sources.Glassdoor.Enabled {
		t.Errorf("glassdoor = %+v", cfg.Sources.Glassdoor)
	}
	if got := cfg.Sources.TimeoutFor("LinkedIn"); got != 25*time.Second {
		t.Errorf("TimeoutFor(LinkedIn) = %s", got)
	}
	if got := cfg.Search.OverallTimeout(); got != 12*time.Second {
		t.Errorf("OverallTimeout = %s", got)
	}
	if got := cfg.Cache.Expiry(); got != 10*time.Minute {
		t.Errorf("Expiry = %s", got)
	}
	if cfg.Refresh.CronSpec() != "@every 30m" || cfg.Refresh.Limit() != 25 {
		t.Errorf("refresh = %+v", cfg.Refresh)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	if got := cfg.Sources.TimeoutFor("Indeed"); got != 20*time.Second {
		t.Errorf("TimeoutFor default = %s, want 20s", got)
	}
	if got := cfg.Sources.TimeoutFor("Unknown"); got != 20*time.Second {
		t.Errorf("TimeoutFor unknown source = %s, want 20s", got)
	}
	if got := cfg.Search.OverallTimeout(); got != 30*time.Second {
		t.Errorf("OverallTimeout default = %s", got)
	}
	if got := cfg.Search.ScoreTimeout(); got != 10*time.Second {
		t.Errorf("ScoreTimeout default = %s", got)
	}
	if got := cfg.Search.RefreshScoreTimeout(); got != 15*time.Second {
		t.Errorf("RefreshScoreTimeout default = %s", got)
	}
	if got := cfg.Cache.Expiry(); got != time.Hour {
		t.Errorf("Expiry default = %s", got)
	}
	if cfg.Refresh.CronSpec() != "@every 1h" {
		t.Errorf("CronSpec default = %q", cfg.Refresh.CronSpec())
	}
	if cfg.Refresh.Limit() != 10 || cfg.Refresh.Enrich() != 6 {
		t.Errorf("refresh defaults = %d/%d", cfg.Refresh.Limit(), cfg.Refresh.Enrich())
	}
}
