package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the engine configuration loaded from yaml.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Sources     SourcesConfig     `yaml:"sources"`
	Search      SearchConfig      `yaml:"search"`
	Cache       CacheConfig       `yaml:"cache"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Log         LogConfig         `yaml:"log"`
	DB          DBConfig          `yaml:"db"`
}

// LLMConfig configures the relevance scorer backend. An empty APIKey
// disables the LLM path entirely; the scorer then runs keyword fallback.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SourcesConfig selects and tunes the job sources.
type SourcesConfig struct {
	UseMock   bool            `yaml:"use_mock"`
	LinkedIn  SourceConfig    `yaml:"linkedin"`
	Indeed    SourceConfig    `yaml:"indeed"`
	Glassdoor GlassdoorConfig `yaml:"glassdoor"`
}

// TimeoutFor returns the scrape deadline configured for the named
// source, falling back to the 20s default for unknown names.
func (c SourcesConfig) TimeoutFor(name string) time.Duration {
	switch name {
	case "LinkedIn":
		return c.LinkedIn.Timeout()
	case "Indeed":
		return c.Indeed.Timeout()
	case "Glassdoor":
		return c.Glassdoor.Timeout()
	}
	return SourceConfig{}.Timeout()
}

// SourceConfig is the per-source tuning shared by all fetchers.
type SourceConfig struct {
	Enabled        bool    `yaml:"enabled"`
	TimeoutSeconds int     `yaml:"timeout"`
	RPS            float64 `yaml:"rps"`
}

// Timeout returns the per-source scrape deadline, defaulting to 20s.
func (c SourceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GlassdoorConfig extends SourceConfig with partner API credentials.
type GlassdoorConfig struct {
	SourceConfig `yaml:",inline"`
	PartnerID    string `yaml:"partner_id"`
	PartnerKey   string `yaml:"partner_key"`
}

// SearchConfig bounds the fan-out and scoring steps.
type SearchConfig struct {
	OverallTimeoutSeconds      int `yaml:"overall_timeout"`
	ScoreTimeoutSeconds        int `yaml:"score_timeout"`
	RefreshScoreTimeoutSeconds int `yaml:"refresh_score_timeout"`
}

// OverallTimeout is the ceiling on the collective fan-out wait (default 30s).
func (c SearchConfig) OverallTimeout() time.Duration {
	if c.OverallTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.OverallTimeoutSeconds) * time.Second
}

// ScoreTimeout is the per-batch LLM deadline on the request path (default 10s).
func (c SearchConfig) ScoreTimeout() time.Duration {
	if c.ScoreTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ScoreTimeoutSeconds) * time.Second
}

// RefreshScoreTimeout is the per-batch LLM deadline for background
// refreshes (default 15s), which can afford to wait a little longer.
func (c SearchConfig) RefreshScoreTimeout() time.Duration {
	if c.RefreshScoreTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RefreshScoreTimeoutSeconds) * time.Second
}

// CacheConfig tunes the result cache.
type CacheConfig struct {
	ExpirySeconds int `yaml:"expiry"`
}

// Expiry is the window during which a cached entry is served without a
// refresh (default 3600s).
func (c CacheConfig) Expiry() time.Duration {
	if c.ExpirySeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.ExpirySeconds) * time.Second
}

// RefreshConfig drives the periodic cache warmer.
type RefreshConfig struct {
	Spec        string `yaml:"spec"`
	MaxSearches int    `yaml:"max_searches"`
	EnrichLimit int    `yaml:"enrich_limit"`
}

// CronSpec returns the warmer schedule, defaulting to hourly.
func (c RefreshConfig) CronSpec() string {
	if c.Spec == "" {
		return "@every 1h"
	}
	return c.Spec
}

// Limit returns how many recent searches one warm cycle replays.
func (c RefreshConfig) Limit() int {
	if c.MaxSearches <= 0 {
		return 10
	}
	return c.MaxSearches
}

// Enrich returns how many postings per refresh get full-text enrichment.
func (c RefreshConfig) Enrich() int {
	if c.EnrichLimit <= 0 {
		return 6
	}
	return c.EnrichLimit
}

// ConcurrencyConfig throttles LLM calls.
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LogConfig configures the engine logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DBConfig configures the optional search-log database.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LoadConfig reads the yaml config from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
