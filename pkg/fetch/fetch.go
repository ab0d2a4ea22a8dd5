// Package fetch wraps one scraper call with a hard deadline so a hanging
// source can never stall the fan-out around it.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/jobradar/jobfinder/pkg/logger"
	"github.com/jobradar/jobfinder/pkg/model"
	"github.com/jobradar/jobfinder/pkg/source"
)

// Reason classifies a failed fetch.
type Reason string

const (
	ReasonTimeout   Reason = "timeout"
	ReasonTransport Reason = "transport-error"
	ReasonParse     Reason = "parse-error"
)

// Error is a failed fetch from one source.
type Error struct {
	Source string
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Outcome is the settled result of one guarded fetch: either a posting
// list or a typed failure, never both.
type Outcome struct {
	Source   string
	Postings []model.Posting
	Err      *Error
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

type scrapeResult struct {
	postings []model.Posting
	err      error
	panicked bool
}

// Do invokes the scraper on its own goroutine and settles within timeout.
// On deadline the underlying scrape is abandoned, not awaited: it may run
// to completion in the background but its result is discarded. A panic
// inside the scraper is recovered and reported as a parse failure.
func Do(ctx context.Context, s source.Scraper, req *model.SearchRequest, timeout time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so the scrape goroutine never blocks after abandonment.
	ch := make(chan scrapeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- scrapeResult{err: fmt.Errorf("scraper panic: %v", r), panicked: true}
			}
		}()
		postings, err := s.Scrape(ctx, req)
		ch <- scrapeResult{postings: postings, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			reason := ReasonTransport
			switch {
			case res.panicked:
				reason = ReasonParse
			case ctx.Err() == context.DeadlineExceeded:
				reason = ReasonTimeout
			}
			return Outcome{Source: s.Name(), Err: &Error{Source: s.Name(), Reason: reason, Err: res.err}}
		}
		return Outcome{Source: s.Name(), Postings: res.postings}
	case <-ctx.Done():
		logger.Log.Warnf("source [%s] exceeded %s, abandoning fetch", s.Name(), timeout)
		return Outcome{Source: s.Name(), Err: &Error{Source: s.Name(), Reason: ReasonTimeout, Err: ctx.Err()}}
	}
}
