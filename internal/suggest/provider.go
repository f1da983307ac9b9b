// Package suggest retrieves autocomplete candidates for the formula input and
// narrows them by formula context.
package suggest

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	"github.com/oakwood-commons/formulabar/internal/formula"
)

// Provider answers FetchSuggestions from its cache or the Fetcher. Concurrent
// lookups of the same key share one outbound request.
type Provider struct {
	fetcher Fetcher
	cache   *Cache
	group   singleflight.Group
	log     logr.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithCache replaces the default cache.
func WithCache(c *Cache) ProviderOption {
	return func(p *Provider) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithLogger sets the logger used for failures and malformed payloads.
func WithLogger(l logr.Logger) ProviderOption {
	return func(p *Provider) {
		p.log = l
	}
}

// NewProvider returns a provider over fetcher. A nil fetcher yields a provider
// that always answers with an empty list.
func NewProvider(fetcher Fetcher, opts ...ProviderOption) *Provider {
	p := &Provider{
		fetcher: fetcher,
		cache:   NewCache(0),
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cache exposes the provider's query cache.
func (p *Provider) Cache() *Cache {
	return p.cache
}

// Cached returns fresh candidates for query without fetching.
func (p *Provider) Cached(query string) ([]formula.Candidate, bool) {
	if Key(query) == "" {
		return []formula.Candidate{}, true
	}
	return p.cache.Fresh(query)
}

// FetchSuggestions returns candidates for the trimmed query. An empty query
// answers immediately with an empty list and leaves the cache untouched.
// Transport and status failures come back as *FetchFailure; malformed payloads
// are logged and replaced by an empty list.
func (p *Provider) FetchSuggestions(ctx context.Context, query string) ([]formula.Candidate, error) {
	key := Key(query)
	if key == "" || p.fetcher == nil {
		return []formula.Candidate{}, nil
	}
	if data, ok := p.cache.Fresh(key); ok {
		return data, nil
	}

	v, err, shared := p.group.Do(key, func() (interface{}, error) {
		p.cache.Set(key, Entry{Status: StatusPending})
		data, err := p.fetcher.Fetch(ctx, key)
		if errors.Is(err, ErrMalformedPayload) {
			p.log.V(1).Info("autocomplete payload is not a list, using empty suggestions", "query", key)
			data, err = []formula.Candidate{}, nil
		}
		if err != nil {
			var ff *FetchFailure
			if !errors.As(err, &ff) {
				err = &FetchFailure{Query: key, Err: err}
			}
			p.cache.Set(key, Entry{Status: StatusError, Err: err})
			return nil, err
		}
		if data == nil {
			data = []formula.Candidate{}
		}
		p.cache.Set(key, Entry{Status: StatusSuccess, Data: data})
		return data, nil
	})
	if err != nil {
		var status int
		var ff *FetchFailure
		if errors.As(err, &ff) {
			status = ff.StatusCode
		}
		p.log.Error(err, "autocomplete fetch failed", "query", key, "status", status, "shared", shared)
		return nil, err
	}
	return cloneCandidates(v.([]formula.Candidate)), nil
}

// Suggestions is FetchSuggestions with the failure policy applied: any error is
// logged by the provider and degrades to an empty list.
func (p *Provider) Suggestions(ctx context.Context, query string) []formula.Candidate {
	data, err := p.FetchSuggestions(ctx, query)
	if err != nil {
		return []formula.Candidate{}
	}
	return data
}
