// Package engine coordinates the concurrent multi-source search: fan
// out one guarded fetch per source, merge whatever settles within the
// overall deadline, score the merge, and keep the result cache warm.
package engine

import (
	"context"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/jobradar/jobfinder/pkg/cache"
	"github.com/jobradar/jobfinder/pkg/config"
	"github.com/jobradar/jobfinder/pkg/fetch"
	"github.com/jobradar/jobfinder/pkg/logger"
	"github.com/jobradar/jobfinder/pkg/model"
	"github.com/jobradar/jobfinder/pkg/scorer"
	"github.com/jobradar/jobfinder/pkg/source"
	"github.com/jobradar/jobfinder/pkg/storage"
	"github.com/jobradar/jobfinder/pkg/textutil"
)

// Engine owns the scrapers, scorer, cache and optional search log for
// the lifetime of the process. It is constructed once at startup and
// handed to the HTTP layer; there is no ambient global state.
type Engine struct {
	cfg      *config.Config
	scrapers []source.Scraper
	scorer   *scorer.Scorer
	cache    *cache.ResultCache
	store    *storage.Storage // nil disables search logging and warming
}

// New wires an engine. store may be nil.
func New(cfg *config.Config, scrapers []source.Scraper, sc *scorer.Scorer, c *cache.ResultCache, store *storage.Storage) *Engine {
	return &Engine{
		cfg:      cfg,
		scrapers: scrapers,
		scorer:   sc,
		cache:    c,
		store:    store,
	}
}

// Result is the outcome of one handled search.
type Result struct {
	Postings []model.Posting
	// Degraded marks partial fetch results or fallback scoring.
	Degraded bool
	// Cached marks a result served from the cache.
	Cached bool
}

// Search serves one request: cache first, then fan-out plus scoring.
// A stale cache hit is returned immediately while a background refresh
// replaces it. Search never returns an error; the worst case is an
// empty, degraded result.
func (e *Engine) Search(ctx context.Context, req *model.SearchRequest) *Result {
	fp := req.Fingerprint()

	if postings, age, ok := e.cache.Get(fp); ok {
		if age < e.cfg.Cache.Expiry() {
			logger.Log.Debugf("cache hit for %.8s (age %s)", fp, age.Round(time.Second))
			return &Result{Postings: postings, Cached: true}
		}
		logger.Log.Infof("stale cache hit for %.8s (age %s), serving and refreshing", fp, age.Round(time.Second))
		e.refreshDetached(req)
		return &Result{Postings: postings, Cached: true}
	}

	startedAt := time.Now()
	merged, incomplete := e.fanOut(ctx, req, startedAt)
	scored, fellBack := e.scorer.Score(ctx, merged, req, scorer.Options{BatchTimeout: e.cfg.Search.ScoreTimeout()})

	degraded := incomplete || fellBack
	e.cache.Put(fp, startedAt, scored)
	e.logSearch(req, len(scored), degraded)

	if len(scored) == 0 {
		logger.Log.Warnf("no postings for %.8s (degraded=%v)", fp, degraded)
	}
	return &Result{Postings: scored, Degraded: degraded}
}

type indexedOutcome struct {
	idx int
	out fetch.Outcome
}

// fanOut launches one guarded fetch per source and waits for all of
// them, bounded by the overall deadline. When the deadline fires first
// it returns what has settled so far and lets the remainder finish in
// the background purely to warm the cache.
func (e *Engine) fanOut(ctx context.Context, req *model.SearchRequest, startedAt time.Time) ([]model.Posting, bool) {
	n := len(e.scrapers)
	if n == 0 {
		return nil, false
	}

	// Fetches are detached from the request context: an abandoned fetch
	// keeps running so its result can still warm the cache.
	fetchCtx := context.WithoutCancel(ctx)
	ch := make(chan indexedOutcome, n)
	for i, s := range e.scrapers {
		go func(i int, s source.Scraper) {
			ch <- indexedOutcome{i, fetch.Do(fetchCtx, s, req, e.cfg.Sources.TimeoutFor(s.Name()))}
		}(i, s)
	}

	outcomes := make([]*fetch.Outcome, n)
	settled := 0
	timer := time.NewTimer(e.cfg.Search.OverallTimeout())
	defer timer.Stop()

	incomplete := false
collect:
	for settled < n {
		select {
		case r := <-ch:
			o := r.out
			outcomes[r.idx] = &o
			settled++
		case <-timer.C:
			incomplete = true
			break collect
		}
	}

	if incomplete {
		logger.Log.Warnf("overall deadline hit with %d/%d sources settled, returning partial results", settled, n)
		go e.completeLate(req, outcomes, ch, n-settled, startedAt)
	}

	return e.merge(outcomes), incomplete
}

// merge concatenates successful outcomes in source configuration order.
// Failures and empty sources are logged, never surfaced.
func (e *Engine) merge(outcomes []*fetch.Outcome) []model.Posting {
	var merged []model.Posting
	for i, o := range outcomes {
		switch {
		case o == nil:
			logger.Log.Warnf("source [%s] did not settle before the overall deadline", e.scrapers[i].Name())
		case !o.OK():
			logger.Log.Errorf("source [%s] failed: %v", o.Source, o.Err)
		case len(o.Postings) == 0:
			logger.Log.Infof("source [%s] returned no postings", o.Source)
		default:
			merged = append(merged, o.Postings...)
		}
	}
	return merged
}

// completeLate drains the outcomes that missed the overall deadline,
// rescores the now-complete merge and offers it to the cache. The write
// loses against any entry produced by a later round.
func (e *Engine) completeLate(req *model.SearchRequest, settled []*fetch.Outcome, ch <-chan indexedOutcome, remaining int, startedAt time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("late fan-out completion panic: %v", r)
		}
	}()

	outcomes := make([]*fetch.Outcome, len(settled))
	copy(outcomes, settled)
	for j := 0; j < remaining; j++ {
		r := <-ch
		outcomes[r.idx] = &r.out
	}

	merged := e.merge(outcomes)
	scored, _ := e.scorer.Score(context.Background(), merged, req,
		scorer.Options{BatchTimeout: e.cfg.Search.RefreshScoreTimeout()})

	if e.cache.Put(req.Fingerprint(), startedAt, scored) {
		logger.Log.Infof("late fan-out completion warmed cache for %.8s (%d postings)", req.Fingerprint(), len(scored))
	} else {
		logger.Log.Debugf("late fan-out completion for %.8s discarded, newer entry present", req.Fingerprint())
	}
}

// Refresh re-runs the full search for req and replaces the cache entry
// unless a newer one appeared meanwhile. Used by the stale-hit path and
// the periodic warmer; it also enriches thin descriptions, which the
// interactive path cannot afford.
func (e *Engine) Refresh(ctx context.Context, req *model.SearchRequest) {
	startedAt := time.Now()
	merged, _ := e.fanOut(ctx, req, startedAt)
	e.enrich(merged)
	scored, _ := e.scorer.Score(ctx, merged, req,
		scorer.Options{BatchTimeout: e.cfg.Search.RefreshScoreTimeout()})

	if e.cache.Put(req.Fingerprint(), startedAt, scored) {
		logger.Log.Infof("refresh completed for %.8s (%d postings)", req.Fingerprint(), len(scored))
	} else {
		logger.Log.Infof("refresh result for %.8s discarded, newer entry present", req.Fingerprint())
	}
}

// refreshDetached runs Refresh on its own goroutine, fire and forget.
// The terminal state is always logged; a subsequent cache read is the
// only way callers observe the result.
func (e *Engine) refreshDetached(req *model.SearchRequest) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Errorf("background refresh panic: %v", r)
			}
		}()
		e.Refresh(context.Background(), req)
	}()
}

// enrich replaces thin descriptions with readable text from the apply
// URL, bounded per cycle so one refresh cannot fan out into dozens of
// page fetches.
func (e *Engine) enrich(postings []model.Posting) {
	enriched := 0
	for i := range postings {
		if enriched >= e.cfg.Refresh.Enrich() {
			break
		}
		if len(postings[i].Description) >= 120 || postings[i].ApplyLink == "" {
			continue
		}

		article, err := readability.FromURL(postings[i].ApplyLink, 15*time.Second)
		if err != nil {
			logger.Log.Debugf("enrich [%s] failed: %v", postings[i].ApplyLink, err)
			continue
		}
		text := textutil.Clean(article.TextContent)
		if len(text) > 5000 {
			text = text[:5000]
		}
		if len(text) > len(postings[i].Description) {
			postings[i].Description = text
		}
		enriched++
	}
}

func (e *Engine) logSearch(req *model.SearchRequest, resultCount int, degraded bool) {
	if e.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.store.LogSearch(ctx, req, resultCount, degraded); err != nil {
		logger.Log.Warnf("search log write failed: %v", err)
	}
}

// SourceNames lists the configured sources in fan-out order.
func (e *Engine) SourceNames() []string {
	names := make([]string, len(e.scrapers))
	for i, s := range e.scrapers {
		names[i] = s.Name()
	}
	return names
}

// CacheLen reports the number of cached result sets.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// Store exposes the optional search log, nil when disabled.
func (e *Engine) Store() *storage.Storage {
	return e.store
}
