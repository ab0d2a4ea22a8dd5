package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/jobradar/jobfinder/pkg/cache"
	"github.com/jobradar/jobfinder/pkg/config"
	"github.com/jobradar/jobfinder/pkg/engine"
	fLogger "github.com/jobradar/jobfinder/pkg/logger"
	"github.com/jobradar/jobfinder/pkg/refresh"
	"github.com/jobradar/jobfinder/pkg/scorer"
	"github.com/jobradar/jobfinder/pkg/source/factory"
	"github.com/jobradar/jobfinder/pkg/storage"

	"github.com/jobradar/jobfinder/internal/conf"
)

// NewFinderEngine builds the search engine and its cache warmer from
// bootstrap config. The search log is optional: a missing db section
// only disables logging and warming, never startup.
func NewFinderEngine(c *conf.Finder, logger log.Logger) (*engine.Engine, *refresh.Warmer, func(), error) {
	helper := log.NewHelper(logger)
	cfg := toEngineConfig(c)

	if err := fLogger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("failed to init finder logger: %v", err)
		_ = fLogger.Init("info", "")
	}

	var store *storage.Storage
	if cfg.DB.Host != "" {
		s, err := storage.New(cfg.DB)
		if err != nil {
			helper.Errorf("search log unavailable, continuing without it: %v", err)
		} else {
			store = s
		}
	}

	ctx := context.Background()
	sc := scorer.New(ctx, cfg.LLM, cfg.Concurrency)
	scrapers := factory.Build(cfg.Sources)
	eng := engine.New(cfg, scrapers, sc, cache.New(), store)

	warmer := refresh.New(eng, cfg.Refresh)
	if err := warmer.Start(ctx); err != nil {
		helper.Errorf("cache warmer failed to start: %v", err)
	}

	cleanup := func() {
		warmer.Stop()
		if store != nil {
			if err := store.Close(); err != nil {
				helper.Errorf("closing search log: %v", err)
			}
		}
	}
	return eng, warmer, cleanup, nil
}

// toEngineConfig converts bootstrap conf into the engine's own config
// shape, tolerating missing sections.
func toEngineConfig(c *conf.Finder) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		return cfg
	}

	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			BaseURL: c.Llm.BaseUrl,
			APIKey:  c.Llm.ApiKey,
			Model:   c.Llm.Model,
		}
	}
	if c.Sources != nil {
		cfg.Sources.UseMock = c.Sources.UseMock
		if c.Sources.Linkedin != nil {
			cfg.Sources.LinkedIn = config.SourceConfig{
				Enabled:        c.Sources.Linkedin.Enabled,
				TimeoutSeconds: int(c.Sources.Linkedin.Timeout),
				RPS:            c.Sources.Linkedin.Rps,
			}
		}
		if c.Sources.Indeed != nil {
			cfg.Sources.Indeed = config.SourceConfig{
				Enabled:        c.Sources.Indeed.Enabled,
				TimeoutSeconds: int(c.Sources.Indeed.Timeout),
				RPS:            c.Sources.Indeed.Rps,
			}
		}
		if c.Sources.Glassdoor != nil {
			cfg.Sources.Glassdoor = config.GlassdoorConfig{
				SourceConfig: config.SourceConfig{
					Enabled:        c.Sources.Glassdoor.Enabled,
					TimeoutSeconds: int(c.Sources.Glassdoor.Timeout),
					RPS:            c.Sources.Glassdoor.Rps,
				},
				PartnerID:  c.Sources.Glassdoor.PartnerId,
				PartnerKey: c.Sources.Glassdoor.PartnerKey,
			}
		}
	}
	if c.Search != nil {
		cfg.Search = config.SearchConfig{
			OverallTimeoutSeconds:      int(c.Search.OverallTimeout),
			ScoreTimeoutSeconds:        int(c.Search.ScoreTimeout),
			RefreshScoreTimeoutSeconds: int(c.Search.RefreshScoreTimeout),
		}
	}
	if c.Cache != nil {
		cfg.Cache = config.CacheConfig{ExpirySeconds: int(c.Cache.Expiry)}
	}
	if c.Refresh != nil {
		cfg.Refresh = config.RefreshConfig{
			Spec:        c.Refresh.Spec,
			MaxSearches: int(c.Refresh.MaxSearches),
			EnrichLimit: int(c.Refresh.EnrichLimit),
		}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS: int(c.Concurrency.Qps),
			RPM: int(c.Concurrency.Rpm),
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Db != nil {
		cfg.DB = config.DBConfig{
			Host:     c.Db.Host,
			Port:     int(c.Db.Port),
			User:     c.Db.User,
			Password: c.Db.Password,
			Name:     c.Db.Name,
		}
	}
	return cfg
}
