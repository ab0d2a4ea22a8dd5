// Package factory assembles the configured job sources.
package factory

import (
	"github.com/jobradar/jobfinder/pkg/config"
	"github.com/jobradar/jobfinder/pkg/logger"
	"github.com/jobradar/jobfinder/pkg/source"
	"github.com/jobradar/jobfinder/pkg/source/glassdoor"
	"github.com/jobradar/jobfinder/pkg/source/indeed"
	"github.com/jobradar/jobfinder/pkg/source/linkedin"
	"github.com/jobradar/jobfinder/pkg/source/mock"
)

// Build creates the scrapers selected by cfg, in configuration order.
// A real source that cannot be constructed is substituted with a mock of
// the same name so the fan-out shape stays stable.
func Build(cfg config.SourcesConfig) []source.Scraper {
	if cfg.UseMock {
		logger.Log.Info("using mock scrapers for job data")
		return []source.Scraper{
			mock.New("LinkedIn"),
			mock.New("Indeed"),
			mock.New("Glassdoor"),
		}
	}

	var scrapers []source.Scraper
	if cfg.LinkedIn.Enabled {
		scrapers = append(scrapers, linkedin.New(cfg.LinkedIn.RPS))
	}
	if cfg.Indeed.Enabled {
		scrapers = append(scrapers, indeed.New(cfg.Indeed.RPS))
	}
	if cfg.Glassdoor.Enabled {
		gd, err := glassdoor.New(cfg.Glassdoor.PartnerID, cfg.Glassdoor.PartnerKey, cfg.Glassdoor.RPS)
		if err != nil {
			logger.Log.Errorf("glassdoor source unavailable, substituting mock: %v", err)
			scrapers = append(scrapers, mock.New("Glassdoor"))
		} else {
			scrapers = append(scrapers, gd)
		}
	}
	return scrapers
}
