package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jobradar/jobfinder/pkg/cache"
	"github.com/jobradar/jobfinder/pkg/config"
	"github.com/jobradar/jobfinder/pkg/model"
	"github.com/jobradar/jobfinder/pkg/scorer"
	"github.com/jobradar/jobfinder/pkg/source"
)

// fakeScraper scripts one source's behavior and counts invocations.
type fakeScraper struct {
	name     string
	postings []model.Posting
	err      error
	delay    time.Duration
	calls    atomic.Int64
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(ctx context.Context, req *model.SearchRequest) ([]model.Posting, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.postings, f.err
}

var searchReq = &model.SearchRequest{
	Position:   "Backend Developer",
	Experience: "2 years",
	Salary:     "80k-120k PKR",
	JobNature:  "remote",
	Location:   "Lahore, Pakistan",
	Skills:     "Node.js, SQL",
}

func testConfig() *config.Config {
	return &config.Config{
		Sources: config.SourcesConfig{
			LinkedIn: config.SourceConfig{TimeoutSeconds: 2},
			Indeed:   config.SourceConfig{TimeoutSeconds: 2},
		},
		Search: config.SearchConfig{OverallTimeoutSeconds: 1},
	}
}

func testEngine(cfg *config.Config, scrapers ...source.Scraper) *Engine {
	sc := scorer.New(context.Background(), config.LLMConfig{}, config.ConcurrencyConfig{})
	return New(cfg, scrapers, sc, cache.New(), nil)
}

// same titles keep fallback scores equal, so merge order survives the
// stable sort and can be asserted.
func posting(company string) model.Posting {
	return model.Posting{Title: "Backend Developer", Company: company, ApplyLink: "https://jobs.example.com/1"}
}

func TestSearchMergesInSourceOrder(t *testing.T) {
	a := &fakeScraper{name: "LinkedIn", postings: []model.Posting{posting("Alpha"), posting("Beta")}}
	b := &fakeScraper{name: "Indeed", postings: []model.Posting{posting("Gamma")}}
	e := testEngine(testConfig(), a, b)

	res := e.Search(context.Background(), searchReq)
	if len(res.Postings) != 3 {
		t.Fatalf("len = %d, want 3", len(res.Postings))
	}
	want := []string{"Alpha", "Beta", "Gamma"}
	for i, w := range want {
		if res.Postings[i].Company != w {
			t.Errorf("postings[%d].Company = %q, want %q", i, res.Postings[i].Company, w)
		}
	}
}

func TestSearchOneSourceSucceeds(t *testing.T) {
	failing := &fakeScraper{name: "LinkedIn", err: errors.New("blocked")}
	working := &fakeScraper{name: "Indeed", postings: []model.Posting{posting("Alpha"), posting("Beta"), posting("Gamma")}}
	e := testEngine(testConfig(), failing, working)

	res := e.Search(context.Background(), searchReq)
	if len(res.Postings) != 3 {
		t.Fatalf("len = %d, want the 3 postings from the surviving source", len(res.Postings))
	}
	for _, p := range res.Postings {
		if p.Source != "" && p.Source != "Indeed" {
			t.Errorf("unexpected source %q", p.Source)
		}
	}
}

func TestSearchAllSourcesFailIsEmptyNotError(t *testing.T) {
	a := &fakeScraper{name: "LinkedIn", err: errors.New("blocked")}
	b := &fakeScraper{name: "Indeed", err: errors.New("timeout upstream")}
	e := testEngine(testConfig(), a, b)

	res := e.Search(context.Background(), searchReq)
	if len(res.Postings) != 0 {
		t.Errorf("len = %d, want 0", len(res.Postings))
	}
}

func TestSearchNoScrapers(t *testing.T) {
	e := testEngine(testConfig())
	res := e.Search(context.Background(), searchReq)
	if len(res.Postings) != 0 {
		t.Errorf("len = %d, want 0", len(res.Postings))
	}
}

func TestSearchBoundedByOverallDeadline(t *testing.T) {
	hung := &fakeScraper{name: "LinkedIn", delay: 10 * time.Second}
	fast := &fakeScraper{name: "Indeed", postings: []model.Posting{posting("Alpha"), posting("Beta"), posting("Gamma")}}

	cfg := testConfig()
	cfg.Sources.LinkedIn.TimeoutSeconds = 20 // per-source limit is not what saves us here
	e := testEngine(cfg, hung, fast)

	start := time.Now()
	res := e.Search(context.Background(), searchReq)
	elapsed := time.Since(start)

	if elapsed > 3*time.Second {
		t.Fatalf("Search took %s, must settle near the 1s overall deadline", elapsed)
	}
	if len(res.Postings) != 3 {
		t.Errorf("len = %d, want the fast source's 3 postings", len(res.Postings))
	}
	if !res.Degraded {
		t.Error("partial results must be flagged degraded")
	}
}

func TestSearchServedFromCacheSecondTime(t *testing.T) {
	s := &fakeScraper{name: "LinkedIn", postings: []model.Posting{posting("Alpha")}}
	e := testEngine(testConfig(), s)

	first := e.Search(context.Background(), searchReq)
	if first.Cached {
		t.Fatal("first call must not be cached")
	}
	second := e.Search(context.Background(), searchReq)
	if !second.Cached {
		t.Fatal("second call within the expiry window must hit the cache")
	}
	if got := s.calls.Load(); got != 1 {
		t.Errorf("scrape calls = %d, want 1 (no scraping on a cache hit)", got)
	}
}

func TestSearchStaleHitServesAndRefreshes(t *testing.T) {
	s := &fakeScraper{name: "LinkedIn", postings: []model.Posting{posting("Fresh")}}
	cfg := testConfig()
	e := testEngine(cfg, s)

	stale := []model.Posting{posting("Stale")}
	e.cache.Put(searchReq.Fingerprint(), time.Now().Add(-2*time.Hour), stale)

	res := e.Search(context.Background(), searchReq)
	if !res.Cached || len(res.Postings) != 1 || res.Postings[0].Company != "Stale" {
		t.Fatalf("stale entry must be served immediately, got %+v", res)
	}

	// The detached refresh must eventually replace the stale entry.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		postings, age, ok := e.cache.Get(searchReq.Fingerprint())
		if ok && age < time.Hour && len(postings) == 1 && postings[0].Company == "Fresh" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("background refresh did not replace the stale entry")
}
