package mock

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/jobradar/jobfinder/pkg/model"
)

var req = &model.SearchRequest{
	Position:   "Backend Developer",
	Experience: "2 years",
	JobNature:  "remote",
	Location:   "Lahore, Pakistan",
	Skills:     "Node.js, SQL",
}

func TestScrapeDeterministic(t *testing.T) {
	s := New("LinkedIn")

	first, err := s.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	second, err := s.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same request must yield identical postings")
	}
}

func TestScrapeShape(t *testing.T) {
	s := New("Indeed")
	postings, err := s.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(postings) != 6 {
		t.Fatalf("len = %d, want 6", len(postings))
	}
	for i, p := range postings {
		if p.Source != "Indeed" {
			t.Errorf("postings[%d].Source = %q", i, p.Source)
		}
		if p.Location != req.Location {
			t.Errorf("postings[%d].Location = %q", i, p.Location)
		}
		if p.ApplyLink == "" || p.Title == "" || p.Company == "" {
			t.Errorf("postings[%d] missing required fields: %+v", i, p)
		}
	}
	if postings[0].Title != "Backend Developer" {
		t.Errorf("postings[0].Title = %q", postings[0].Title)
	}
	if postings[2].Title != "Senior Backend Developer" {
		t.Errorf("postings[2].Title = %q", postings[2].Title)
	}
}

func TestScrapeDelayHonorsContext(t *testing.T) {
	s := NewWithDelay("LinkedIn", 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Scrape(ctx, req)
	if err == nil {
		t.Fatal("want context error from a cancelled delayed scrape")
	}
	if time.Since(start) > time.Second {
		t.Errorf("scrape did not return promptly on cancellation")
	}
}
