package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobradar/jobfinder/pkg/model"
)

// fakeScraper scripts one scrape behavior per test.
type fakeScraper struct {
	name     string
	postings []model.Posting
	err      error
	delay    time.Duration
	panics   bool
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(ctx context.Context, req *model.SearchRequest) ([]model.Posting, error) {
	if f.panics {
		panic("selector went missing")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.postings, f.err
}

var testReq = &model.SearchRequest{Position: "Backend Developer", Location: "Lahore, Pakistan"}

func TestDoSuccess(t *testing.T) {
	s := &fakeScraper{name: "Fast", postings: []model.Posting{{Title: "Backend Developer"}}}

	out := Do(context.Background(), s, testReq, time.Second)
	if !out.OK() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}
	if out.Source != "Fast" || len(out.Postings) != 1 {
		t.Errorf("outcome = %+v, want one posting from Fast", out)
	}
}

func TestDoTimeout(t *testing.T) {
	s := &fakeScraper{name: "Slow", delay: 5 * time.Second}

	start := time.Now()
	out := Do(context.Background(), s, testReq, 50*time.Millisecond)
	elapsed := time.Since(start)

	if out.OK() {
		t.Fatal("expected a timeout failure")
	}
	if out.Err.Reason != ReasonTimeout {
		t.Errorf("reason = %s, want %s", out.Err.Reason, ReasonTimeout)
	}
	if elapsed > time.Second {
		t.Errorf("Do took %s, must settle near the 50ms timeout", elapsed)
	}
}

func TestDoTimeoutIgnoringContext(t *testing.T) {
	// A scraper that never observes ctx must still not block Do.
	blocked := &blockingScraper{name: "Deaf"}

	start := time.Now()
	out := Do(context.Background(), blocked, testReq, 50*time.Millisecond)
	if out.OK() || out.Err.Reason != ReasonTimeout {
		t.Fatalf("outcome = %+v, want timeout", out)
	}
	if time.Since(start) > time.Second {
		t.Error("Do must abandon a hung scraper, not wait for it")
	}
}

// blockingScraper sleeps without ever checking the context.
type blockingScraper struct{ name string }

func (b *blockingScraper) Name() string { return b.name }

func (b *blockingScraper) Scrape(ctx context.Context, req *model.SearchRequest) ([]model.Posting, error) {
	time.Sleep(3 * time.Second)
	return nil, nil
}

func TestDoTransportError(t *testing.T) {
	s := &fakeScraper{name: "Broken", err: errors.New("connection refused")}

	out := Do(context.Background(), s, testReq, time.Second)
	if out.OK() {
		t.Fatal("expected a failure")
	}
	if out.Err.Reason != ReasonTransport {
		t.Errorf("reason = %s, want %s", out.Err.Reason, ReasonTransport)
	}
}

func TestDoRecoversPanic(t *testing.T) {
	s := &fakeScraper{name: "Panicky", panics: true}

	out := Do(context.Background(), s, testReq, time.Second)
	if out.OK() {
		t.Fatal("expected a failure")
	}
	if out.Err.Reason != ReasonParse {
		t.Errorf("reason = %s, want %s", out.Err.Reason, ReasonParse)
	}
}
