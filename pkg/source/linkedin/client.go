// Package linkedin scrapes the public LinkedIn jobs search page.
package linkedin

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
	baseURL     = "https://www.linkedin.com/jobs/search/"
	maxPostings = 10
)

// Client scrapes LinkedIn job cards. Selectors track the public search
// page markup, which changes often.
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

func (c *Client) Name() string { return "LinkedIn" }

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
	q.Set("keywords", req.Position)
	if req.Location != "" {
		q.Set("location", req.Location)
	}
	u.RawQuery = q.Encode()

	doc, err := c.fetchDocument(ctx, u.String())
	if err != nil {
		return nil, err
	}
	return parseCards(doc, c.Name()), nil
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
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
		return nil, fmt.Errorf("linkedin returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Parse extracts postings from raw search-page HTML; split out so
// selector changes can be verified against saved fixtures.
func Parse(html string, sourceName string) ([]model.Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return parseCards(doc, sourceName), nil
}

func parseCards(doc *goquery.Document, sourceName string) []model.Posting {
	var postings []model.Posting
	doc.Find("ul.jobs-search__results-list > li").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(postings) >= maxPostings {
			return false
		}

		title := textutil.Clean(card.Find("h3.base-search-card__title").First().Text())
		if title == "" {
			title = textutil.Clean(card.Find("a.base-card__full-link").First().Text())
		}
		link, _ := card.Find("a.base-card__full-link").First().Attr("href")
		if title == "" || link == "" {
			return true
		}

		snippet := textutil.Clean(card.Find(".job-search-card__snippet").First().Text())
		postings = append(postings, model.Posting{
			Title:       title,
			Company:     textutil.Clean(card.Find(".base-search-card__subtitle").First().Text()),
			Location:    textutil.Clean(card.Find(".job-search-card__location").First().Text()),
			Salary:      textutil.ExtractSalary(snippet),
			Experience:  textutil.ExtractExperience(snippet),
			JobNature:   textutil.ExtractJobNature(snippet + " " + title),
			ApplyLink:   link,
			Source:      sourceName,
			Description: snippet,
		})
		return true
	})
	return postings
}
