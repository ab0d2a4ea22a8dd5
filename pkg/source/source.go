package source

import (
	"context"

	"github.com/jobradar/jobfinder/pkg/model"
)

// Scraper is one external job-listing provider. Implementations must be
// safe to invoke concurrently with other sources and must report every
// failure as a returned error, never a panic that escapes the call.
type Scraper interface {
	// Name identifies the source in results and logs.
	Name() string
	// Scrape fetches postings matching the request.
	Scrape(ctx context.Context, req *model.SearchRequest) ([]model.Posting, error)
}

// Query formats the request into a search query string the way most job
// boards expect it.
func Query(req *model.SearchRequest) string {
	parts := []string{req.Position, req.JobNature, req.Location}
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
