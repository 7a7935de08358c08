// Package ingest pulls procurement notices from upstream feeds and
// lands them in the opportunity store through idempotent upserts.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// SAMBaseURL is the public opportunities search endpoint.
const SAMBaseURL = "https://api.sam.gov/opportunities/v2/search"

// SourceSAMGov identifies the SAM.gov feed in stored rows.
const SourceSAMGov = "sam.gov"

// feedLimitMax is the upstream API's per-request ceiling.
const feedLimitMax = 1000

// Notice is one raw feed record, kept schemaless until parsing.
type Notice map[string]interface{}

// Query narrows a feed fetch. Zero values fall back to the feed's
// defaults: the last 30 days of postings, up to 100 records.
type Query struct {
	NAICSCodes    []string
	NoticeTypes   []string
	SetAsideCodes []string
	PostedFrom    time.Time
	PostedTo      time.Time
	Limit         int
}

// Fetcher retrieves raw notices from one source system.
type Fetcher interface {
	Source() string
	Fetch(ctx context.Context, q Query) ([]Notice, error)
}

// SAMClient fetches notices from the SAM.gov opportunities API. Calls
// go through a token bucket and a circuit breaker; with no API key
// configured the client serves a fixed sample set instead of calling
// out, which keeps local development working.
type SAMClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

// NewSAMClient creates a SAM.gov feed client.
func NewSAMClient(apiKey string, log zerolog.Logger) *SAMClient {
	return &SAMClient{
		apiKey:  apiKey,
		baseURL: SAMBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "sam.gov",
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		log:     log,
		now:     time.Now,
	}
}

// WithBaseURL points the client at an alternate endpoint. Used in tests.
func (c *SAMClient) WithBaseURL(u string) *SAMClient {
	c.baseURL = u
	return c
}

func (c *SAMClient) Source() string { return SourceSAMGov }

// Fetch retrieves one page of notices matching q.
func (c *SAMClient) Fetch(ctx context.Context, q Query) ([]Notice, error) {
	if c.apiKey == "" {
		c.log.Warn().Msg("no SAM.gov API key configured, returning sample data")
		return sampleNotices(c.now()), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doFetch(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Notice), nil
}

func (c *SAMClient) doFetch(ctx context.Context, q Query) ([]Notice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.URL.RawQuery = c.queryParams(q).Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		c.log.Error().
			Int("status_code", resp.StatusCode).
			Str("detail", string(body)).
			Msg("SAM.gov API error")
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var payload struct {
		TotalRecords      int      `json:"totalRecords"`
		OpportunitiesData []Notice `json:"opportunitiesData"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	c.log.Debug().
		Int("count", len(payload.OpportunitiesData)).
		Int("total", payload.TotalRecords).
		Msg("fetched opportunities from SAM.gov")

	return payload.OpportunitiesData, nil
}

func (c *SAMClient) queryParams(q Query) url.Values {
	now := c.now()
	from := q.PostedFrom
	if from.IsZero() {
		from = now.AddDate(0, 0, -30)
	}
	to := q.PostedTo
	if to.IsZero() {
		to = now
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > feedLimitMax {
		limit = feedLimitMax
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("postedFrom", from.UTC().Format("01/02/2006"))
	params.Set("postedTo", to.UTC().Format("01/02/2006"))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", "0")

	if len(q.NAICSCodes) > 0 {
		params.Set("ncode", strings.Join(q.NAICSCodes, ","))
	}
	if len(q.NoticeTypes) > 0 {
		params.Set("ptype", strings.Join(q.NoticeTypes, ","))
	}
	if len(q.SetAsideCodes) > 0 {
		params.Set("typeOfSetAside", strings.Join(q.SetAsideCodes, ","))
	}
	return params
}

func sampleNotices(now time.Time) []Notice {
	day := func(offset int) string {
		return now.UTC().AddDate(0, 0, offset).Format("2006-01-02")
	}
	return []Notice{
		{
			"noticeId":                  "SAMPLE-001",
			"title":                     "Cloud Migration Services for Federal Agency",
			"description":               "Professional services for migrating legacy systems to cloud infrastructure. Includes assessment, planning, migration, and ongoing support.",
			"type":                      "k",
			"solicitationNumber":        "SOL-2025-001",
			"naicsCode":                 "541512",
			"naicsDescription":          "Computer Systems Design Services",
			"typeOfSetAsideDescription": "Small Business Set-Aside",
			"postedDate":                day(0),
			"responseDeadLine":          day(30),
			"placeOfPerformance": map[string]interface{}{
				"city":  map[string]interface{}{"name": "Washington"},
				"state": map[string]interface{}{"code": "DC"},
			},
			"office": map[string]interface{}{"name": "Department of Example"},
			"pointOfContact": []interface{}{
				map[string]interface{}{
					"fullName": "Jane Smith",
					"email":    "jane.smith@example.gov",
					"phone":    "202-555-0100",
				},
			},
		},
		{
			"noticeId":                  "SAMPLE-002",
			"title":                     "Cybersecurity Assessment and Monitoring",
			"description":               "Comprehensive cybersecurity services including vulnerability assessments, penetration testing, and continuous monitoring.",
			"type":                      "o",
			"solicitationNumber":        "RFP-2025-002",
			"naicsCode":                 "541519",
			"naicsDescription":          "Other Computer Related Services",
			"typeOfSetAsideDescription": "8(a) Set-Aside",
			"postedDate":                day(0),
			"responseDeadLine":          day(45),
			"placeOfPerformance": map[string]interface{}{
				"city":  map[string]interface{}{"name": "Arlington"},
				"state": map[string]interface{}{"code": "VA"},
			},
			"office": map[string]interface{}{"name": "Defense Information Systems Agency"},
			"pointOfContact": []interface{}{
				map[string]interface{}{
					"fullName": "John Doe",
					"email":    "john.doe@example.gov",
					"phone":    "703-555-0200",
				},
			},
		},
		{
			"noticeId":                  "SAMPLE-003",
			"title":                     "Environmental Remediation Services",
			"description":               "Environmental consulting and remediation services for contaminated site cleanup.",
			"type":                      "p",
			"solicitationNumber":        "PRE-2025-003",
			"naicsCode":                 "562910",
			"naicsDescription":          "Remediation Services",
			"typeOfSetAsideDescription": "Women-Owned Small Business Set-Aside",
			"postedDate":                day(0),
			"responseDeadLine":          day(60),
			"placeOfPerformance": map[string]interface{}{
				"city":  map[string]interface{}{"name": "Denver"},
				"state": map[string]interface{}{"code": "CO"},
			},
			"office": map[string]interface{}{"name": "Environmental Protection Agency"},
			"pointOfContact": []interface{}{
				map[string]interface{}{
					"fullName": "Mary Johnson",
					"email":    "mary.johnson@example.gov",
					"phone":    "303-555-0300",
				},
			},
		},
	}
}
