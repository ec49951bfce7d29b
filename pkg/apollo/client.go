// Package apollo is a minimal client for Apollo's people search API.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.apollo.io"
	searchPath     = "/v1/mixed_people/search"

	// maxDetailBytes caps how much of an unparseable error body is surfaced.
	maxDetailBytes = 512
)

// Client searches the upstream contact database.
type Client interface {
	SearchPeople(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest is the request body for POST /v1/mixed_people/search.
type SearchRequest struct {
	Keywords        string   `json:"q_keywords"`
	PersonLocations []string `json:"person_locations,omitempty"`
	Page            int      `json:"page"`
	PerPage         int      `json:"per_page"`
}

// RawContact is a single upstream record. Its shape differs across API
// versions, so it is kept as a loosely typed map.
type RawContact map[string]any

// SearchResponse is the decoded search payload. Older accounts return
// matches under "contacts", newer ones under "people".
type SearchResponse struct {
	Contacts   []RawContact `json:"contacts"`
	People     []RawContact `json:"people"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// Pagination is the upstream's own paging summary. Informational only.
type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

// Records returns the contact list, preferring "contacts" and falling back to
// "people" when the former is absent. A missing list is returned as nil.
func (r *SearchResponse) Records() []RawContact {
	if r == nil {
		return nil
	}
	if r.Contacts != nil {
		return r.Contacts
	}
	return r.People
}

// APIError is returned for non-2xx upstream responses.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("apollo: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("apollo: unexpected status %d: %s", e.StatusCode, e.Detail)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apollo API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchPeople(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "apollo: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal response")
	}

	return &result, nil
}

// errorDetail pulls a human-readable message out of an error body.
func errorDetail(body []byte) string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Error.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > maxDetailBytes {
		detail = detail[:maxDetailBytes]
	}
	return detail
}
