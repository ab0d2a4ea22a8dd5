// Package scorer ranks postings against a search request. The primary
// path asks an LLM for a 0-100 relevance score per posting; every
// failure mode degrades to the deterministic keyword path, never to an
// error for the caller.
package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"golang.org/x/time/rate"

	"github.com/jobradar/jobfinder/pkg/config"
	"github.com/jobradar/jobfinder/pkg/logger"
	"github.com/jobradar/jobfinder/pkg/model"
)

const (
	// batchSize bounds how many postings one LLM call evaluates.
	batchSize = 5
	// relevanceThreshold filters the LLM-scored result set.
	relevanceThreshold = 60
)

const systemPrompt = `You are an expert job recruiter comparing job listings against a candidate's search criteria.
Score each listing from 0 to 100 by how well it matches, weighing (in order): job title match, required skills, experience level, job nature (remote/onsite/hybrid), location, salary range.
Return only a JSON array of objects, each with:
- index: the original index of the job
- score: the relevance score (0-100)
- reasons: a short explanation`

// Scorer scores postings, by LLM when configured and by keyword overlap
// otherwise.
type Scorer struct {
	cm      einomodel.ChatModel
	limiter *rate.Limiter
}

// New builds a Scorer from config. A missing API key or a failed model
// init yields a scorer that only runs the fallback path; construction
// itself never fails.
func New(ctx context.Context, cfg config.LLMConfig, conc config.ConcurrencyConfig) *Scorer {
	if cfg.APIKey == "" {
		logger.Log.Warn("LLM api key not configured, relevance scoring falls back to keyword matching")
		return &Scorer{}
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		logger.Log.Errorf("LLM init failed, falling back to keyword matching: %v", err)
		return &Scorer{}
	}

	rpm := conc.RPM
	if rpm <= 0 {
		rpm = 60
	}
	burst := conc.QPS
	if burst <= 0 {
		burst = 1
	}

	return &Scorer{
		cm:      cm,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// NewWithModel wires an explicit chat model, used by tests.
func NewWithModel(cm einomodel.ChatModel, limiter *rate.Limiter) *Scorer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Scorer{cm: cm, limiter: limiter}
}

// Available reports whether the LLM path is configured.
func (s *Scorer) Available() bool { return s.cm != nil }

// Options tunes one scoring run.
type Options struct {
	// BatchTimeout bounds each LLM call. Zero means 10s.
	BatchTimeout time.Duration
}

// Score returns the postings ranked by relevance, descending, ties kept
// in merge order. The second return reports whether the keyword fallback
// was used. Score never returns an error: any LLM failure downgrades the
// whole set to the fallback path.
func (s *Scorer) Score(ctx context.Context, postings []model.Posting, req *model.SearchRequest, opts Options) ([]model.Posting, bool) {
	if len(postings) == 0 {
		return nil, false
	}
	if !s.Available() {
		return Fallback(postings, req), true
	}

	timeout := opts.BatchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	scored, err := s.scoreLLM(ctx, postings, req, timeout)
	if err != nil {
		logger.Log.Errorf("LLM scoring failed: %v", err)
		logger.Log.Info("falling back to keyword-based scoring")
		return Fallback(postings, req), true
	}
	return scored, false
}

// scoreLLM runs the batched primary path. One failed batch fails the
// whole run; the caller then falls back for the entire posting set
// rather than recovering per batch.
func (s *Scorer) scoreLLM(ctx context.Context, postings []model.Posting, req *model.SearchRequest, timeout time.Duration) ([]model.Posting, error) {
	out := make([]model.Posting, len(postings))
	copy(out, postings)

	for start := 0; start < len(out); start += batchSize {
		end := start + batchSize
		if end > len(out) {
			end = len(out)
		}

		scores, err := s.scoreBatch(ctx, out[start:end], req, timeout)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		for _, sc := range scores {
			if sc.Index < 0 || sc.Index >= end-start {
				continue
			}
			v := sc.Score
			if v < 0 {
				v = 0
			}
			if v > 100 {
				v = 100
			}
			out[start+sc.Index] = out[start+sc.Index].WithScore(v)
		}
	}

	relevant := make([]model.Posting, 0, len(out))
	for _, p := range out {
		if p.Relevance != nil && *p.Relevance > relevanceThreshold {
			relevant = append(relevant, p)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Score() > relevant[j].Score()
	})
	return relevant, nil
}

type batchScore struct {
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Reasons string  `json:"reasons"`
}

// scoreBatch sends one batch to the LLM, retrying on rate-limit errors
// with exponential backoff.
func (s *Scorer) scoreBatch(ctx context.Context, batch []model.Posting, req *model.SearchRequest, timeout time.Duration) ([]batchScore, error) {
	userPrompt := buildPrompt(batch, req)

	const maxRetries = 3
	baseDelay := 2 * time.Second
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: systemPrompt},
			{Role: schema.User, Content: userPrompt},
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := s.cm.Generate(callCtx, messages)
		cancel()
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					time.Sleep(baseDelay * time.Duration(1<<i))
					continue
				}
			}
			return nil, err
		}

		scores, err := parseScores(resp.Content)
		if err != nil {
			lastErr = err
			if i < maxRetries {
				continue
			}
			return nil, err
		}
		return scores, nil
	}
	return nil, lastErr
}

func buildPrompt(batch []model.Posting, req *model.SearchRequest) string {
	var sb strings.Builder
	sb.WriteString("SEARCH CRITERIA:\n")
	fmt.Fprintf(&sb, "Position: %s\n", req.Position)
	fmt.Fprintf(&sb, "Skills needed: %s\n", req.Skills)
	fmt.Fprintf(&sb, "Experience required: %s\n", req.Experience)
	fmt.Fprintf(&sb, "Job Nature: %s\n", req.JobNature)
	fmt.Fprintf(&sb, "Location: %s\n", req.Location)
	fmt.Fprintf(&sb, "Salary range: %s\n\n", req.Salary)

	sb.WriteString("JOB LISTINGS TO EVALUATE:\n")
	for i, p := range batch {
		fmt.Fprintf(&sb, "[JOB %d]\n", i)
		fmt.Fprintf(&sb, "Title: %s\n", p.Title)
		fmt.Fprintf(&sb, "Company: %s\n", p.Company)
		fmt.Fprintf(&sb, "Location: %s\n", orUnspecified(p.Location))
		fmt.Fprintf(&sb, "Job Nature: %s\n", orUnspecified(p.JobNature))
		fmt.Fprintf(&sb, "Experience: %s\n", orUnspecified(p.Experience))
		fmt.Fprintf(&sb, "Salary: %s\n", orUnspecified(p.Salary))
		fmt.Fprintf(&sb, "Description: %s\n\n", orUnspecified(p.Description))
	}

	sb.WriteString("Analyze each listing against the criteria and return the scores as JSON.")
	return sb.String()
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

var jsonArrayExpr = regexp.MustCompile(`(?s)\[.*\]`)

// parseScores accepts the raw model output, tolerating markdown fences
// and surrounding prose around the JSON array.
func parseScores(content string) ([]batchScore, error) {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var scores []batchScore
	if err := json.Unmarshal([]byte(clean), &scores); err == nil {
		return scores, nil
	}

	match := jsonArrayExpr.FindString(clean)
	if match == "" {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	if err := json.Unmarshal([]byte(match), &scores); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return scores, nil
}
