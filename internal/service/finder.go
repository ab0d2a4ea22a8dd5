package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/jobradar/jobfinder/pkg/engine"
	"github.com/jobradar/jobfinder/pkg/model"
)

// FinderService is the HTTP-facing orchestrator. It owns the policy
// that a search never fails the user-visible request: whatever breaks
// underneath, the caller gets a 200 with a (possibly empty) job list.
type FinderService struct {
	eng     *engine.Engine
	version string
	log     *log.Helper
}

// NewFinderService wires the service to the search engine.
func NewFinderService(eng *engine.Engine, version string, logger log.Logger) *FinderService {
	return &FinderService{
		eng:     eng,
		version: version,
		log:     log.NewHelper(logger),
	}
}

// SearchReply is the /api/search response body.
type SearchReply struct {
	RelevantJobs []model.Posting `json:"relevant_jobs"`
	// Degraded flags partial or fallback-scored results.
	Degraded bool `json:"degraded,omitempty"`
	Cached   bool `json:"cached,omitempty"`
}

// Validate returns the names of required request fields that are empty.
func (s *FinderService) Validate(req *model.SearchRequest) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"position", req.Position},
		{"experience", req.Experience},
		{"salary", req.Salary},
		{"jobNature", req.JobNature},
		{"location", req.Location},
		{"skills", req.Skills},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Search runs one job search. It never returns an error: a fatal
// problem inside the engine is caught here and converted into an empty
// degraded reply.
func (s *FinderService) Search(ctx context.Context, req *model.SearchRequest) (reply *SearchReply) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("search failed fatally, returning empty result: %v", r)
			reply = &SearchReply{RelevantJobs: []model.Posting{}, Degraded: true}
		}
	}()

	res := s.eng.Search(ctx, req)
	jobs := res.Postings
	if jobs == nil {
		jobs = []model.Posting{}
	}
	return &SearchReply{RelevantJobs: jobs, Degraded: res.Degraded, Cached: res.Cached}
}

// SourceStatus is one configured source in the /api/sources reply.
type SourceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// SourcesReply is the /api/sources response body.
type SourcesReply struct {
	Sources []SourceStatus `json:"sources"`
}

// Sources lists the configured sources. Status is static; there is no
// live health probe per source.
func (s *FinderService) Sources() *SourcesReply {
	names := s.eng.SourceNames()
	reply := &SourcesReply{Sources: make([]SourceStatus, 0, len(names))}
	for _, n := range names {
		reply.Sources = append(reply.Sources, SourceStatus{Name: n, Status: "active"})
	}
	return reply
}

// HealthReply is the /health response body.
type HealthReply struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	CacheSize int    `json:"cache_size"`
}

// Health reports liveness and cache diagnostics.
func (s *FinderService) Health() *HealthReply {
	return &HealthReply{
		Status:    "ok",
		Service:   "jobfinder",
		Version:   s.version,
		CacheSize: s.eng.CacheLen(),
	}
}
