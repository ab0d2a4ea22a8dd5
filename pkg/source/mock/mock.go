// Package mock provides an in-process job source used when real
// scrapers are disabled or fail to construct, and by tests.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/jobradar/jobfinder/pkg/model"
	"github.com/jobradar/jobfinder/pkg/source"
)

var companies = []string{
	"TechSolutions Inc.",
	"DigitalCraft Labs",
	"WebFusion Technologies",
	"ByteWorks Software",
	"CodeNest Systems",
	"InnovateTech",
	"DevHarbor",
	"PixelPulse Media",
}

var salaries = []string{
	"60,000 - 90,000 PKR",
	"70,000 - 100,000 PKR",
	"80,000 - 120,000 PKR",
	"90,000 - 130,000 PKR",
}

var experiences = []string{"1-2 years", "2+ years", "2-3 years", "Mid-level"}

// Scraper generates deterministic postings shaped after the request, so
// repeated calls with the same request yield the same listings.
type Scraper struct {
	name  string
	delay time.Duration
}

// New builds a mock source reporting the given name.
func New(name string) *Scraper {
	return &Scraper{name: name}
}

// NewWithDelay builds a mock source that sleeps before answering, to
// exercise timeout handling.
func NewWithDelay(name string, delay time.Duration) *Scraper {
	return &Scraper{name: name, delay: delay}
}

var _ source.Scraper = (*Scraper)(nil)

func (s *Scraper) Name() string { return s.name }

// Scrape fabricates listings derived from the requested position and
// location.
func (s *Scraper) Scrape(ctx context.Context, req *model.SearchRequest) ([]model.Posting, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	titles := []string{
		req.Position,
		"Senior " + req.Position,
		req.Position + " Developer",
	}

	natures := []string{req.JobNature, "remote", "onsite"}

	postings := make([]model.Posting, 0, len(titles)*2)
	for i, title := range titles {
		for j := 0; j < 2; j++ {
			n := i*2 + j
			postings = append(postings, model.Posting{
				Title:       title,
				Company:     companies[n%len(companies)],
				Experience:  experiences[n%len(experiences)],
				JobNature:   natures[n%len(natures)],
				Location:    req.Location,
				Salary:      salaries[n%len(salaries)],
				ApplyLink:   fmt.Sprintf("https://jobs.example.com/%s/%d", s.name, n),
				Source:      s.name,
				Description: fmt.Sprintf("%s role requiring %s. Skills: %s.", title, req.Experience, req.Skills),
			})
		}
	}
	return postings, nil
}
