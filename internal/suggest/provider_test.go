package suggest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/formulabar/internal/formula"
)

func countingFetcher(calls *int32, data []formula.Candidate, err error) Fetcher {
	return FetcherFunc(func(_ context.Context, _ string) ([]formula.Candidate, error) {
		atomic.AddInt32(calls, 1)
		return data, err
	})
}

func TestFetchSuggestionsEmptyQueryShortCircuits(t *testing.T) {
	var calls int32
	p := NewProvider(countingFetcher(&calls, []formula.Candidate{{Name: "x"}}, nil))

	for _, q := range []string{"", "   ", "\t\n"} {
		got, err := p.FetchSuggestions(context.Background(), q)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, p.Cache().Len(), "no cache entry recorded for empty queries")
}

func TestFetchSuggestionsCachesByTrimmedKey(t *testing.T) {
	var calls int32
	p := NewProvider(countingFetcher(&calls, []formula.Candidate{{ID: "1", Name: "revenue"}}, nil))

	first, err := p.FetchSuggestions(context.Background(), "rev")
	require.NoError(t, err)
	second, err := p.FetchSuggestions(context.Background(), "  rev  ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	e, ok := p.Cache().Get("rev")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, e.Status)
}

func TestFetchSuggestionsDeduplicatesConcurrentQueries(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	fetcher := FetcherFunc(func(_ context.Context, _ string) ([]formula.Candidate, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []formula.Candidate{{Name: "x"}}, nil
	})
	p := NewProvider(fetcher)

	var wg sync.WaitGroup
	results := make([][]formula.Candidate, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.FetchSuggestions(context.Background(), "x")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, []formula.Candidate{{Name: "x"}}, r)
	}
}

func TestFetchSuggestionsFailureIsTyped(t *testing.T) {
	var calls int32
	p := NewProvider(countingFetcher(&calls, nil, &FetchFailure{Query: "x", StatusCode: 500, Status: "500 Internal Server Error"}))

	got, err := p.FetchSuggestions(context.Background(), "x")
	require.Error(t, err)
	assert.Nil(t, got)

	var ff *FetchFailure
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, 500, ff.StatusCode)

	e, ok := p.Cache().Get("x")
	require.True(t, ok)
	assert.Equal(t, StatusError, e.Status)

	// Error entries are not served from cache; the next lookup fetches again.
	_, _ = p.FetchSuggestions(context.Background(), "x")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	assert.Empty(t, p.Suggestions(context.Background(), "x"))
}

func TestFetchSuggestionsWrapsPlainErrors(t *testing.T) {
	var calls int32
	p := NewProvider(countingFetcher(&calls, nil, errors.New("boom")))
	_, err := p.FetchSuggestions(context.Background(), "x")
	assert.True(t, IsFetchFailure(err))
}

func TestFetchSuggestionsMalformedPayloadDegradesToEmpty(t *testing.T) {
	var calls int32
	p := NewProvider(countingFetcher(&calls, nil, ErrMalformedPayload))
	got, err := p.FetchSuggestions(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, got)

	e, ok := p.Cache().Get("x")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, e.Status)
}

func TestProviderWithoutFetcher(t *testing.T) {
	p := NewProvider(nil)
	got, err := p.FetchSuggestions(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachedReportsFreshEntriesOnly(t *testing.T) {
	var calls int32
	p := NewProvider(countingFetcher(&calls, []formula.Candidate{{Name: "x"}}, nil))

	_, ok := p.Cached("x")
	assert.False(t, ok)

	_, _ = p.FetchSuggestions(context.Background(), "x")
	got, ok := p.Cached(" x ")
	assert.True(t, ok)
	assert.Len(t, got, 1)

	got, ok = p.Cached("")
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestProviderOverHTTP(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Query().Get("search") == "broken" {
			http.Error(w, "nope", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","name":"` + r.URL.Query().Get("search") + `"}]`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL)
	require.NoError(t, err)
	p := NewProvider(client)

	got, err := p.FetchSuggestions(context.Background(), " sales ")
	require.NoError(t, err)
	assert.Equal(t, []formula.Candidate{{ID: "1", Name: "sales"}}, got)

	_, err = p.FetchSuggestions(context.Background(), "broken")
	var ff *FetchFailure
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, http.StatusBadGateway, ff.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
