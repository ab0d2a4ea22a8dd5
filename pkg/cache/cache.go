// Package cache keeps the last scored result set per request
// fingerprint. The map is process-lifetime and unbounded; the expected
// fingerprint cardinality does not warrant an eviction policy.
package cache

import (
	"sync"
	"time"

	"github.com/jobradar/jobfinder/pkg/model"
)

type entry struct {
	postings  []model.Posting
	fetchedAt time.Time
}

// ResultCache maps request fingerprints to the last computed result set.
// A single mutex around insert/lookup is enough for the expected volume.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New builds an empty cache.
func New() *ResultCache {
	return &ResultCache{entries: make(map[string]entry)}
}

// Get returns the cached postings and their age. Expired entries are
// still returned; the caller decides whether to also trigger a refresh.
func (c *ResultCache) Get(fp string) ([]model.Posting, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[fp]
	if !ok {
		return nil, 0, false
	}
	return e.postings, time.Since(e.fetchedAt), true
}

// Put stores postings under fp, stamped with fetchedAt (the moment the
// producing search started). The write is skipped when a strictly newer
// entry is already present, so a late-arriving background result never
// clobbers fresher data. An entry with the same timestamp is replaced:
// that is a round's background completion superseding the partial set
// the same round cached earlier. Reports whether the write happened.
func (c *ResultCache) Put(fp string, fetchedAt time.Time, postings []model.Posting) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[fp]; ok && existing.fetchedAt.After(fetchedAt) {
		return false
	}
	c.entries[fp] = entry{postings: postings, fetchedAt: fetchedAt}
	return true
}

// Len reports the number of cached fingerprints.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
