package marketplace

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/signalpages/ComicScannerApp-sub000/internal/resilience"
)

// ErrBlocked is returned when the page fetched is a bot challenge rather
// than search results.
var ErrBlocked = eris.New("marketplace: page blocked by bot protection")

// PageFetcher retrieves the HTML of a results page.
type PageFetcher interface {
	Name() string
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// HTTPOptions configures the HTTP page fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// MaxRetries is the total number of attempts per fetch.
	MaxRetries int
	Limiter    *rate.Limiter
}

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// HTTPFetcher fetches pages with net/http, rate limited and retried on
// transient failures.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(2, 2)
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: limiter,
	}
}

// Name implements PageFetcher.
func (f *HTTPFetcher) Name() string { return "http" }

// Fetch implements PageFetcher. Non-200 responses and bot challenges are
// errors; 408, 429 and 5xx are retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = f.opts.MaxRetries
	cfg.OnRetry = resilience.RetryLogger("sold-page", "fetch")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "marketplace: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "marketplace: create page request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "marketplace: page request")
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "marketplace: read page")
		}

		if blocked, kind := DetectBlock(resp, body); blocked {
			zap.L().Warn("marketplace: sold page blocked",
				zap.String("block_type", string(kind)),
				zap.Int("status", resp.StatusCode),
			)
			return nil, eris.Wrapf(ErrBlocked, "%s", kind)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, resilience.StatusError("sold page", resp.StatusCode, body)
		}
		return body, nil
	})
}

// ChainFetcher tries fetchers in order and returns the first page fetched.
type ChainFetcher struct {
	fetchers []PageFetcher
}

// NewChainFetcher creates a ChainFetcher.
func NewChainFetcher(fetchers ...PageFetcher) *ChainFetcher {
	return &ChainFetcher{fetchers: fetchers}
}

// Name implements PageFetcher.
func (c *ChainFetcher) Name() string { return "chain" }

// Fetch implements PageFetcher.
func (c *ChainFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error
	for _, f := range c.fetchers {
		body, err := f.Fetch(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		zap.L().Debug("marketplace: fetcher failed, trying next",
			zap.String("fetcher", f.Name()),
			zap.Error(err),
		)
	}
	if lastErr == nil {
		return nil, eris.New("marketplace: no page fetchers configured")
	}
	return nil, eris.Wrap(lastErr, "marketplace: all fetchers failed")
}
