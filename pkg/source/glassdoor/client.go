// Package glassdoor queries the Glassdoor partner jobs API.
package glassdoor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobradar/jobfinder/pkg/model"
	"github.com/jobradar/jobfinder/pkg/source"
	"github.com/jobradar/jobfinder/pkg/source/antiblock"
)

const (
	baseURL     = "https://api.glassdoor.com/api/api.htm"
	maxPostings = 10
)

// Client calls the partner API with a JSON response format.
type Client struct {
	partnerID  string
	partnerKey string
	client     *http.Client
	limiter    *rate.Limiter
}

// New builds a client; partner credentials are required.
func New(partnerID, partnerKey string, rps float64) (*Client, error) {
	if partnerID == "" || partnerKey == "" {
		return nil, fmt.Errorf("glassdoor partner credentials are missing")
	}
	return &Client{
		partnerID:  partnerID,
		partnerKey: partnerKey,
		client:     &http.Client{Timeout: 20 * time.Second},
		limiter:    antiblock.NewLimiter(rps),
	}, nil
}

var _ source.Scraper = (*Client)(nil)

func (c *Client) Name() string { return "Glassdoor" }

// apiResponse mirrors the top-level partner API JSON envelope.
type apiResponse struct {
	Success  bool `json:"success"`
	Response struct {
		Listings []apiListing `json:"jobListings"`
	} `json:"response"`
}

// apiListing mirrors a single job listing.
type apiListing struct {
	JobTitle    string `json:"jobTitle"`
	Employer    string `json:"employer"`
	Location    string `json:"location"`
	PayLow      int    `json:"payLow"`
	PayHigh     int    `json:"payHigh"`
	PayCurrency string `json:"payCurrency"`
	JobLink     string `json:"jobViewUrl"`
	Descr       string `json:"descriptionFragment"`
}

// Scrape fetches listings for the request.
func (c *Client) Scrape(ctx context.Context, req *model.SearchRequest) ([]model.Posting, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("v", "1.1")
	params.Set("format", "json")
	params.Set("action", "jobs")
	params.Set("t.p", c.partnerID)
	params.Set("t.k", c.partnerKey)
	params.Set("q", req.Position)
	if req.Location != "" {
		params.Set("l", req.Location)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	antiblock.Apply(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("glassdoor api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if !apiResp.Success {
		return nil, fmt.Errorf("glassdoor api reported failure")
	}

	listings := apiResp.Response.Listings
	if len(listings) > maxPostings {
		listings = listings[:maxPostings]
	}

	postings := make([]model.Posting, 0, len(listings))
	for _, l := range listings {
		salary := ""
		if l.PayLow > 0 && l.PayHigh > 0 {
			salary = fmt.Sprintf("%d - %d %s", l.PayLow, l.PayHigh, l.PayCurrency)
		}
		postings = append(postings, model.Posting{
			Title:       l.JobTitle,
			Company:     l.Employer,
			Location:    l.Location,
			Salary:      salary,
			ApplyLink:   l.JobLink,
			Source:      c.Name(),
			Description: l.Descr,
		})
	}
	return postings, nil
}
