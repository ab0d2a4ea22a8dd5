// Package antiblock applies the request-shaping tricks the job boards
// expect from a browser: rotating user agents and referers plus a
// per-source rate limiter.
package antiblock

import (
	"math/rand"
	"net/http"

	"golang.org/x/time/rate"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/114.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var referers = []string{
	"https://www.google.com/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
}

// Apply sets browser-like headers on the request.
func Apply(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Referer", referers[rand.Intn(len(referers))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
}

// NewLimiter builds the per-source limiter. A non-positive rps yields a
// conservative 1 req/s default.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		rps = 1
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
