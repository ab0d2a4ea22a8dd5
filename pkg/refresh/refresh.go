// Package refresh wires up the cron job that periodically replays the
// most frequent recent searches to keep their cache entries warm.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jobradar/jobfinder/pkg/config"
	"github.com/jobradar/jobfinder/pkg/engine"
	"github.com/jobradar/jobfinder/pkg/logger"
)

// warmWindow bounds how far back the warmer looks for searches worth
// refreshing.
const warmWindow = 24 * time.Hour

// Warmer schedules background cache refreshes. It needs the search log
// to know what to warm; without a store it stays idle.
type Warmer struct {
	cron *cron.Cron
	eng  *engine.Engine
	cfg  config.RefreshConfig
}

// New creates a Warmer on the configured schedule.
func New(eng *engine.Engine, cfg config.RefreshConfig) *Warmer {
	return &Warmer{
		cron: cron.New(),
		eng:  eng,
		cfg:  cfg,
	}
}

// Start registers the warm cycle and starts the scheduler, running one
// cycle immediately so a restart does not wait for the first tick.
func (w *Warmer) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.cfg.CronSpec(), func() {
		w.run(ctx)
	}); err != nil {
		return err
	}

	w.cron.Start()
	logger.Log.Infof("cache warmer started, spec %q", w.cfg.CronSpec())

	go w.run(ctx)
	return nil
}

// Stop shuts the scheduler down; running cycles finish on their own.
func (w *Warmer) Stop() {
	w.cron.Stop()
	logger.Log.Info("cache warmer stopped")
}

// run replays the most frequent recent searches through the engine.
func (w *Warmer) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("warm cycle panic: %v", r)
		}
	}()

	store := w.eng.Store()
	if store == nil {
		logger.Log.Debug("no search log configured, skipping warm cycle")
		return
	}

	reqs, err := store.FrequentSearches(ctx, warmWindow, w.cfg.Limit())
	if err != nil {
		logger.Log.Errorf("warm cycle: load frequent searches: %v", err)
		return
	}
	if len(reqs) == 0 {
		logger.Log.Debug("warm cycle: nothing to refresh")
		return
	}

	logger.Log.Infof("warm cycle: refreshing %d search(es)", len(reqs))
	for i := range reqs {
		w.eng.Refresh(ctx, &reqs[i])
	}
	logger.Log.Info("warm cycle complete")
}
