// Package ebay provides a client for the eBay Browse item search API and the
// OAuth client-credentials exchange it requires.
package ebay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/signalpages/ComicScannerApp-sub000/internal/resilience"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.ebay.com"

	// DefaultMarketplaceID selects the US site.
	DefaultMarketplaceID = "EBAY_US"

	// CategoryComics is the "Comic Books & Memorabilia > Comics" category.
	CategoryComics = "63"

	// BuyingOptionFixedPrice marks Buy It Now listings.
	BuyingOptionFixedPrice = "FIXED_PRICE"

	searchPath = "/buy/browse/v1/item_summary/search"
)

// Client defines the eBay Browse operations used for pricing.
type Client interface {
	// Search runs an item summary search.
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// TokenProvider supplies OAuth bearer tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// SearchRequest defines the parameters of an item summary search.
type SearchRequest struct {
	Query       string
	CategoryIDs []string
	Limit       int
	Sort        string
	// Filters are joined with commas into the filter parameter, e.g.
	// "buyingOptions:{FIXED_PRICE}".
	Filters []string
}

// SearchResponse is the parsed item summary search response.
type SearchResponse struct {
	Total         int           `json:"total"`
	Limit         int           `json:"limit"`
	Offset        int           `json:"offset"`
	ItemSummaries []ItemSummary `json:"itemSummaries"`
}

// ItemSummary is a single search hit.
type ItemSummary struct {
	ItemID        string   `json:"itemId"`
	Title         string   `json:"title"`
	Price         Amount   `json:"price"`
	Image         *Image   `json:"image,omitempty"`
	BuyingOptions []string `json:"buyingOptions"`
	ItemWebURL    string   `json:"itemWebUrl"`
}

// IsFixedPrice reports whether the item can be bought outright.
func (i ItemSummary) IsFixedPrice() bool {
	for _, o := range i.BuyingOptions {
		if o == BuyingOptionFixedPrice {
			return true
		}
	}
	return false
}

// ImageURL returns the primary image URL or "".
func (i ItemSummary) ImageURL() string {
	if i.Image == nil {
		return ""
	}
	return i.Image.ImageURL
}

// Amount is a monetary value with its currency.
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// Image is an item image reference.
type Image struct {
	ImageURL string `json:"imageUrl"`
}

// Option configures the eBay client.
type Option func(*httpClient)

// WithBaseURL sets a custom API host (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithMarketplaceID sets the X-EBAY-C-MARKETPLACE-ID header.
func WithMarketplaceID(id string) Option {
	return func(c *httpClient) {
		c.marketplaceID = id
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	tokens        TokenProvider
	baseURL       string
	marketplaceID string
	http          *http.Client
	limiter       *rate.Limiter
	retry         resilience.RetryConfig
}

// NewClient creates a Browse API client that authenticates with tokens.
func NewClient(tokens TokenProvider, opts ...Option) Client {
	c := &httpClient{
		tokens:        tokens,
		baseURL:       DefaultBaseURL,
		marketplaceID: DefaultMarketplaceID,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("ebay-browse", "search")
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, eris.New("ebay: empty search query")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "ebay: obtain token")
	}

	reqURL := c.baseURL + searchPath + "?" + searchParams(req).Encode()

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*SearchResponse, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ebay: rate limiter wait")
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "ebay: create search request")
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplaceID)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, eris.Wrap(err, "ebay: search request")
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "ebay: read search response")
		}

		if resp.StatusCode != http.StatusOK {
			return nil, resilience.StatusError("ebay", resp.StatusCode, body)
		}

		var result SearchResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, eris.Wrap(err, "ebay: unmarshal search response")
		}
		return &result, nil
	})
}

func searchParams(req SearchRequest) url.Values {
	v := url.Values{}
	v.Set("q", req.Query)
	if req.Limit > 0 {
		v.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Sort != "" {
		v.Set("sort", req.Sort)
	}
	if len(req.CategoryIDs) > 0 {
		v.Set("category_ids", strings.Join(req.CategoryIDs, ","))
	}
	if len(req.Filters) > 0 {
		v.Set("filter", strings.Join(req.Filters, ","))
	}
	return v
}
