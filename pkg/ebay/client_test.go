package ebay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpages/ComicScannerApp-sub000/internal/resilience"
)

type staticToken string

func (s staticToken) Token(_ context.Context) (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token(_ context.Context) (string, error) { return "", errors.New("no creds") }

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

const searchBody = `{
  "total": 2,
  "limit": 50,
  "itemSummaries": [
    {
      "itemId": "v1|111|0",
      "title": "Amazing Spider-Man #300 VF",
      "price": {"value": "89.99", "currency": "USD"},
      "image": {"imageUrl": "https://i.ebayimg.com/300.jpg"},
      "buyingOptions": ["FIXED_PRICE", "BEST_OFFER"]
    },
    {
      "itemId": "v1|222|0",
      "title": "Amazing Spider-Man #300 auction",
      "price": {"value": "40.00", "currency": "USD"},
      "buyingOptions": ["AUCTION"]
    }
  ]
}`

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "EBAY_US", r.Header.Get("X-EBAY-C-MARKETPLACE-ID"))

		q := r.URL.Query()
		assert.Equal(t, "amazing spider-man 300 -lot", q.Get("q"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "63", q.Get("category_ids"))
		assert.Equal(t, "buyingOptions:{FIXED_PRICE},priceCurrency:USD", q.Get("filter"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := NewClient(staticToken("tok-123"), WithBaseURL(srv.URL), WithRetry(fastRetry()))
	resp, err := c.Search(context.Background(), SearchRequest{
		Query:       "amazing spider-man 300 -lot",
		Limit:       50,
		CategoryIDs: []string{CategoryComics},
		Filters:     []string{"buyingOptions:{FIXED_PRICE}", "priceCurrency:USD"},
	})
	require.NoError(t, err)
	require.Len(t, resp.ItemSummaries, 2)

	first := resp.ItemSummaries[0]
	assert.Equal(t, "Amazing Spider-Man #300 VF", first.Title)
	assert.True(t, first.Price.Value.Equal(decimal.RequireFromString("89.99")))
	assert.Equal(t, "USD", first.Price.Currency)
	assert.True(t, first.IsFixedPrice())
	assert.Equal(t, "https://i.ebayimg.com/300.jpg", first.ImageURL())

	second := resp.ItemSummaries[1]
	assert.False(t, second.IsFixedPrice())
	assert.Empty(t, second.ImageURL())
}

func TestSearch_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total":0,"limit":50}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken("t"), WithBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), SearchRequest{Query: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, resp.ItemSummaries)
}

func TestSearch_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"total":0}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken("t"), WithBaseURL(srv.URL), WithRetry(fastRetry()))
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"message":"Invalid access token"}]}`))
	}))
	defer srv.Close()

	c := NewClient(staticToken("t"), WithBaseURL(srv.URL), WithRetry(fastRetry()))
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearch_TokenFailure(t *testing.T) {
	c := NewClient(failingToken{}, WithBaseURL("http://127.0.0.1:0"))
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "obtain token")
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := NewClient(staticToken("t"))
	_, err := c.Search(context.Background(), SearchRequest{Query: "  "})
	require.Error(t, err)
}

func TestSearch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(staticToken("t"), WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
