// Package indeed scrapes the Indeed jobs search page.
package indeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/jobradar/jobfinder/pkg/model"
	"github.com/jobradar/jobfinder/pkg/source"
	"github.com/jobradar/jobfinder/pkg/source/antiblock"
	"github.com/jobradar/jobfinder/pkg/textutil"
)

const (
	baseURL     = "https://www.indeed.com/jobs"
	siteURL     = "https://www.indeed.com"
	maxPostings = 10
)

// cardSelectors are tried in order; Indeed reshuffles its markup often.
var cardSelectors = []string{
	".jobsearch-ResultsList .cardOutline",
	".job_seen_beacon",
	"[data-testid='jobListing']",
	".resultWithShelf",
}

// Client scrapes Indeed job cards.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
}

// New wires an HTTP client and a per-source limiter.
func New(rps float64) *Client {
	return &Client{
		client:  &http.Client{Timeout: 20 * time.Second},
		limiter: antiblock.NewLimiter(rps),
	}
}

var _ source.Scraper = (*Client)(nil)

func (c *Client) Name() string { return "Indeed" }

// Scrape fetches the first page of results for the request.
func (c *Client) Scrape(ctx context.Context, req *model.SearchRequest) ([]model.Posting, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", req.Position)
	if req.Location != "" {
		q.Set("l", req.Location)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	antiblock.Apply(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indeed returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return parseCards(doc, c.Name()), nil
}

// Parse extracts postings from raw search-page HTML, for fixture tests.
func Parse(html string, sourceName string) ([]model.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return parseCards(doc, sourceName), nil
}

func parseCards(doc *goquery.Document, sourceName string) []model.Posting {
	var cards *goquery.Selection
	for _, sel := range cardSelectors {
		cards = doc.Find(sel)
		if cards.Length() > 0 {
			break
		}
	}
	if cards == nil || cards.Length() == 0 {
		return nil
	}

	var postings []model.Posting
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(postings) >= maxPostings {
			return false
		}

		titleEl := firstOf(card,
			"h2.jobTitle a",
			"h2.jobTitle",
			"[data-testid='jobTitle']",
			"a.jcs-JobTitle",
			".jobTitle",
		)
		title := textutil.Clean(titleEl.Text())
		if title == "" {
			return true
		}

		linkEl := firstOf(card,
			"h2.jobTitle a",
			"a[data-testid='jobLink']",
			"a.jcs-JobTitle",
		)
		link := ""
		if href, ok := linkEl.Attr("href"); ok {
			if strings.HasPrefix(href, "/") {
				link = siteURL + href
			} else {
				link = href
			}
		} else if jk, ok := linkEl.Attr("data-jk"); ok {
			link = siteURL + "/viewjob?jk=" + jk
		}
		if link == "" {
			return true
		}

		company := textutil.Clean(firstOf(card,
			"[data-testid='company-name']",
			".companyName",
			".company",
		).Text())
		location := textutil.Clean(firstOf(card,
			"[data-testid='text-location']",
			".companyLocation",
			".location",
		).Text())
		snippet := textutil.Clean(card.Find(".job-snippet").First().Text())
		salary := textutil.Clean(firstOf(card,
			"[data-testid='attribute_snippet_testid']",
			".salary-snippet",
		).Text())
		if salary == "" {
			salary = textutil.ExtractSalary(snippet)
		}

		postings = append(postings, model.Posting{
			Title:       title,
			Company:     company,
			Location:    location,
			Salary:      salary,
			Experience:  textutil.ExtractExperience(snippet),
			JobNature:   textutil.ExtractJobNature(snippet + " " + location),
			ApplyLink:   link,
			Source:      sourceName,
			Description: snippet,
		})
		return true
	})
	return postings
}

// firstOf returns the first non-empty match among the selector chain.
func firstOf(card *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, sel := range selectors {
		if m := card.Find(sel).First(); m.Length() > 0 {
			return m
		}
	}
	return card.Find(selectors[len(selectors)-1]).First()
}
