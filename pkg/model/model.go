package model

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// SearchRequest carries the six search criteria submitted by the caller.
// It is immutable after creation: every field feeds both the cache
// fingerprint and the relevance prompt.
type SearchRequest struct {
	Position   string `json:"position"`
	Experience string `json:"experience"`
	Salary     string `json:"salary"`
	JobNature  string `json:"jobNature"`
	Location   string `json:"location"`
	Skills     string `json:"skills"`
}

// Fingerprint derives the cache key from the normalized request fields.
// Two requests differing only in case or surrounding whitespace map to
// the same entry.
func (r *SearchRequest) Fingerprint() string {
	fields := []string{
		r.Position,
		r.Experience,
		r.Salary,
		r.JobNature,
		r.Location,
		r.Skills,
	}
	for i, f := range fields {
		fields[i] = strings.ToLower(strings.TrimSpace(f))
	}
	sum := sha1.Sum([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

// SkillList splits the comma separated skills field.
func (r *SearchRequest) SkillList() []string {
	parts := strings.Split(r.Skills, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// Posting is one job listing normalized to a common shape, whichever
// source produced it. Relevance stays nil until the scorer attaches a
// score; the scorer returns a new list instead of mutating shared state.
type Posting struct {
	Title       string   `json:"job_title"`
	Company     string   `json:"company"`
	Experience  string   `json:"experience,omitempty"`
	JobNature   string   `json:"jobNature,omitempty"`
	Location    string   `json:"location,omitempty"`
	Salary      string   `json:"salary,omitempty"`
	ApplyLink   string   `json:"apply_link"`
	Source      string   `json:"source"`
	Description string   `json:"description,omitempty"`
	Relevance   *float64 `json:"relevance_score,omitempty"`
}

// Score returns the attached relevance score, or 0 when unscored.
func (p *Posting) Score() float64 {
	if p.Relevance == nil {
		return 0
	}
	return *p.Relevance
}

// WithScore returns a copy of the posting carrying the given score.
func (p Posting) WithScore(score float64) Posting {
	p.Relevance = &score
	return p
}
