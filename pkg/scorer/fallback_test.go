package scorer

import (
	"testing"

	"github.com/jobradar/jobfinder/pkg/model"
)

var fallbackReq = &model.SearchRequest{
	Position: "Backend Developer",
	Location: "Lahore, Pakistan",
}

func TestFallbackScoreValues(t *testing.T) {
	postings := []model.Posting{
		{Title: "Backend Developer", Location: "Lahore, Pakistan"}, // 50+30+10
		{Title: "Backend Engineer", Location: "Karachi"},           // 50+15
		{Title: "Graphic Designer"},                                // 50
	}

	got := Fallback(postings, fallbackReq)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	wantScores := []float64{90, 65, 50}
	for i, want := range wantScores {
		if got[i].Score() != want {
			t.Errorf("postings[%d] score = %v, want %v (title %q)", i, got[i].Score(), want, got[i].Title)
		}
	}
}

func TestFallbackDeterministic(t *testing.T) {
	postings := []model.Posting{
		{Title: "Backend Developer"},
		{Title: "Developer"},
		{Title: "Backend Lead"},
	}

	a := Fallback(postings, fallbackReq)
	b := Fallback(postings, fallbackReq)
	if len(a) != len(b) {
		t.Fatal("fallback must be repeatable")
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].Score() != b[i].Score() {
			t.Errorf("run mismatch at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFallbackSortedDescendingStable(t *testing.T) {
	postings := []model.Posting{
		{Title: "Developer", Company: "First"},
		{Title: "Backend Developer"},
		{Title: "Developer", Company: "Second"},
	}

	got := Fallback(postings, fallbackReq)
	for i := 1; i < len(got); i++ {
		if got[i].Score() > got[i-1].Score() {
			t.Fatalf("not sorted descending at %d: %v then %v", i, got[i-1].Score(), got[i].Score())
		}
	}
	// Equal scores keep input order.
	if got[1].Company != "First" || got[2].Company != "Second" {
		t.Errorf("ties must keep input order, got %q then %q", got[1].Company, got[2].Company)
	}
}

func TestFallbackCap(t *testing.T) {
	postings := make([]model.Posting, 40)
	for i := range postings {
		postings[i] = model.Posting{Title: "Backend Developer"}
	}

	got := Fallback(postings, fallbackReq)
	if len(got) != fallbackCap {
		t.Errorf("len = %d, want cap %d", len(got), fallbackCap)
	}
}

func TestFallbackNeverExceeds100(t *testing.T) {
	got := Fallback([]model.Posting{
		{Title: "Backend Developer Backend Developer", Location: "Lahore, Pakistan"},
	}, fallbackReq)
	if got[0].Score() > 100 {
		t.Errorf("score = %v, must clamp to 100", got[0].Score())
	}
}
