package ebay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalpages/ComicScannerApp-sub000/internal/resilience"
)

const (
	// DefaultTokenURL is the production client-credentials endpoint.
	DefaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"

	// DefaultScope grants public Browse API access.
	DefaultScope = "https://api.ebay.com/oauth/api_scope"

	// expiryMargin is subtracted from the advertised lifetime so a cached
	// token is never handed out moments before it lapses.
	expiryMargin = 60 * time.Second

	// minTokenTTL is the shortest cache lifetime for a token that lives at
	// least that long.
	minTokenTTL = 30 * time.Second
)

// TokenCache stores tokens with a time-to-live. A miss returns (nil, nil).
type TokenCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// tokenResponse is the OAuth endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenOption configures an OAuthTokenProvider.
type TokenOption func(*OAuthTokenProvider)

// WithTokenURL sets the OAuth endpoint (for testing).
func WithTokenURL(u string) TokenOption {
	return func(p *OAuthTokenProvider) {
		p.tokenURL = u
	}
}

// WithScope sets the requested OAuth scope.
func WithScope(scope string) TokenOption {
	return func(p *OAuthTokenProvider) {
		p.scope = scope
	}
}

// WithTokenHTTPClient sets the HTTP client used for the exchange.
func WithTokenHTTPClient(hc *http.Client) TokenOption {
	return func(p *OAuthTokenProvider) {
		p.http = hc
	}
}

// OAuthTokenProvider performs the client-credentials exchange and keeps the
// resulting token in a TokenCache until shortly before it expires.
// Concurrent misses may each refresh; the last write wins.
type OAuthTokenProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	scope        string
	cache        TokenCache
	http         *http.Client
}

// NewTokenProvider creates a provider. cache may be nil, in which case every
// call performs an exchange.
func NewTokenProvider(clientID, clientSecret string, cache TokenCache, opts ...TokenOption) *OAuthTokenProvider {
	p := &OAuthTokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     DefaultTokenURL,
		scope:        DefaultScope,
		cache:        cache,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CacheKey is the cache entry holding this provider's token.
func (p *OAuthTokenProvider) CacheKey() string {
	return "ebay:oauth:" + p.clientID
}

// Token returns a cached token or performs a fresh exchange on miss.
// Cache failures are logged and treated as a miss.
func (p *OAuthTokenProvider) Token(ctx context.Context) (string, error) {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, p.CacheKey())
		if err != nil {
			zap.L().Warn("ebay: token cache read failed", zap.Error(err))
		} else if len(cached) > 0 {
			return string(cached), nil
		}
	}

	tok, err := p.exchange(ctx)
	if err != nil {
		return "", err
	}

	// A token without an advertised lifetime is used once and not cached:
	// stores treat a zero ttl as no expiry.
	if ttl := tokenTTL(time.Duration(tok.ExpiresIn) * time.Second); p.cache != nil && ttl > 0 {
		if err := p.cache.Set(ctx, p.CacheKey(), []byte(tok.AccessToken), ttl); err != nil {
			zap.L().Warn("ebay: token cache write failed", zap.Error(err))
		}
	}
	return tok.AccessToken, nil
}

// tokenTTL is the cache lifetime for a token: its lifetime less the margin,
// no shorter than minTokenTTL and never longer than the lifetime itself.
// Zero means do not cache.
func tokenTTL(lifetime time.Duration) time.Duration {
	if lifetime <= 0 {
		return 0
	}
	return min(max(lifetime-expiryMargin, minTokenTTL), lifetime)
}

func (p *OAuthTokenProvider) exchange(ctx context.Context) (*tokenResponse, error) {
	if p.clientID == "" || p.clientSecret == "" {
		return nil, eris.New("ebay: oauth client credentials not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", p.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "ebay: create token request")
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ebay: token request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ebay: read token response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("ebay oauth", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, eris.Wrap(err, "ebay: unmarshal token response")
	}
	if tok.AccessToken == "" {
		return nil, eris.New("ebay: token response missing access_token")
	}
	return &tok, nil
}
