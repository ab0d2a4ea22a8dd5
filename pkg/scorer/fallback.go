package scorer

import (
	"math"
	"sort"
	"strings"

	"github.com/jobradar/jobfinder/pkg/model"
)

// fallbackCap bounds the fallback result set. The cap applies whenever
// the fallback runs, whether the LLM is unconfigured or failed
// mid-flight, so both degraded modes behave the same.
const fallbackCap = 15

// Fallback scores postings deterministically by keyword overlap: base 50,
// up to 30 for the fraction of position words found in the title, 10 when
// the requested location is a substring of the posting location. The
// result is sorted descending, ties kept in input order, and is never
// filtered by threshold.
func Fallback(postings []model.Posting, req *model.SearchRequest) []model.Posting {
	words := strings.Fields(strings.ToLower(req.Position))

	out := make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		score := 50.0

		if len(words) > 0 && p.Title != "" {
			title := strings.ToLower(p.Title)
			matched := 0
			for _, w := range words {
				if strings.Contains(title, w) {
					matched++
				}
			}
			score += float64(matched) / float64(len(words)) * 30
		}

		if req.Location != "" && p.Location != "" &&
			strings.Contains(strings.ToLower(p.Location), strings.ToLower(req.Location)) {
			score += 10
		}

		score = math.Round(score)
		if score > 100 {
			score = 100
		}
		out = append(out, p.WithScore(score))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})

	if len(out) > fallbackCap {
		out = out[:fallbackCap]
	}
	return out
}
