package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/oakwood-commons/formulabar/internal/formula"
)

// maxPayloadBytes bounds how much of a response body is read.
const maxPayloadBytes = 1 << 20

// Fetcher retrieves raw candidates for a non-empty, trimmed query.
type Fetcher interface {
	Fetch(ctx context.Context, query string) ([]formula.Candidate, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, query string) ([]formula.Candidate, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, query string) ([]formula.Candidate, error) {
	return f(ctx, query)
}

// HTTPClient queries `GET <endpoint>?search=<query>` and decodes a JSON array of
// {id, name} objects.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPClient) {
		h.client.Timeout = d
	}
}

// NewHTTPClient validates the endpoint and returns a client backed by a pooled cleanhttp client.
func NewHTTPClient(endpoint string, opts ...HTTPOption) (*HTTPClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("autocomplete endpoint is empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse autocomplete endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("autocomplete endpoint %q must be http or https", endpoint)
	}
	h := &HTTPClient{
		endpoint: endpoint,
		client:   cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Endpoint returns the configured endpoint.
func (h *HTTPClient) Endpoint() string {
	return h.endpoint
}

// Fetch issues one request. Transport errors and non-2xx statuses return a
// *FetchFailure. A body that is not a JSON array returns an empty list together
// with ErrMalformedPayload.
func (h *HTTPClient) Fetch(ctx context.Context, query string) ([]formula.Candidate, error) {
	u, err := url.Parse(h.endpoint)
	if err != nil {
		return nil, &FetchFailure{Query: query, Err: err}
	}
	q := u.Query()
	q.Set("search", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchFailure{Query: query, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &FetchFailure{Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return nil, &FetchFailure{Query: query, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &FetchFailure{Query: query, StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}
	return DecodeCandidates(body)
}

type wireCandidate struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
}

// DecodeCandidates decodes a JSON array of candidates. Elements that are not
// objects or carry no name are skipped. Non-array payloads yield an empty list
// and ErrMalformedPayload.
func DecodeCandidates(body []byte) ([]formula.Candidate, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		return []formula.Candidate{}, ErrMalformedPayload
	}
	out := make([]formula.Candidate, 0, len(items))
	for _, raw := range items {
		var w wireCandidate
		if err := json.Unmarshal(raw, &w); err != nil {
			continue
		}
		if strings.TrimSpace(w.Name) == "" {
			continue
		}
		out = append(out, formula.Candidate{ID: decodeID(w.ID), Name: w.Name})
	}
	return out, nil
}

// decodeID accepts string or numeric ids.
func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
