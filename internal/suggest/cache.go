package suggest

import (
	"strings"
	"sync"
	"time"

	"github.com/oakwood-commons/formulabar/internal/formula"
)

// Status is the lifecycle state of a cached query.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is what the cache remembers about one query key.
type Entry struct {
	Status    Status
	Data      []formula.Candidate
	Err       error
	UpdatedAt time.Time
}

// Key is the cache key function: the query with surrounding whitespace removed.
func Key(query string) string {
	return strings.TrimSpace(query)
}

// Cache maps query keys to entries. Successful entries expire after ttl
// (zero keeps them forever); pending and error entries are never served as fresh.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache returns an empty cache.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the entry stored for the query's key.
func (c *Cache) Get(query string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[Key(query)]
	if !ok {
		return Entry{}, false
	}
	e.Data = cloneCandidates(e.Data)
	return e, true
}

// Fresh returns the cached candidates when the key holds an unexpired success.
func (c *Cache) Fresh(query string) ([]formula.Candidate, bool) {
	e, ok := c.Get(query)
	if !ok || e.Status != StatusSuccess {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.UpdatedAt) > c.ttl {
		return nil, false
	}
	return e.Data, true
}

// Set stores an entry under the query's key, stamping UpdatedAt.
func (c *Cache) Set(query string, e Entry) {
	e.UpdatedAt = c.now()
	e.Data = cloneCandidates(e.Data)
	c.mu.Lock()
	c.entries[Key(query)] = e
	c.mu.Unlock()
}

// Invalidate drops the entry for the query's key.
func (c *Cache) Invalidate(query string) {
	c.mu.Lock()
	delete(c.entries, Key(query))
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}

// Len returns the number of keys held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneCandidates(in []formula.Candidate) []formula.Candidate {
	if in == nil {
		return nil
	}
	out := make([]formula.Candidate, len(in))
	copy(out, in)
	return out
}
