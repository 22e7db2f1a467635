package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/signalpages/ComicScannerApp-sub000/internal/config"
	"github.com/signalpages/ComicScannerApp-sub000/internal/marketplace"
	"github.com/signalpages/ComicScannerApp-sub000/internal/pricing"
	"github.com/signalpages/ComicScannerApp-sub000/internal/resilience"
	"github.com/signalpages/ComicScannerApp-sub000/internal/store"
	"github.com/signalpages/ComicScannerApp-sub000/pkg/ebay"
)

// pricingEnv holds the store, marketplace sources and pricer used by the
// serve and price commands.
type pricingEnv struct {
	Store    store.Store
	Pricer   *pricing.Pricer
	Breakers *resilience.ServiceBreakers
}

// Close releases resources held by the pricing environment.
func (pe *pricingEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// storeOptions maps the store config section onto store.Options.
func storeOptions(c *config.Config) store.Options {
	return store.Options{
		Driver:      c.Store.Driver,
		DatabaseURL: c.Store.DatabaseURL,
		Redis: store.RedisOptions{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
		Pool: &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		},
	}
}

// openStore opens and migrates the configured store.
func openStore(ctx context.Context, c *config.Config) (store.Store, error) {
	st, err := store.Open(ctx, storeOptions(c))
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPricing wires the store, marketplace sources and pricer. Callers
// should defer env.Close().
func initPricing(ctx context.Context, c *config.Config, mode string) (*pricingEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	st, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}

	ladder := pricing.DefaultLadder()
	if c.Pricing.LadderFile != "" {
		ladder, err = pricing.LoadLadder(c.Pricing.LadderFile)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	breakers := resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())
	sold := marketplace.Guard(buildSoldSource(c), breakers)

	var active marketplace.Source
	if c.HasEbayCredentials() {
		active = marketplace.Guard(buildActiveSource(c, st), breakers)
	} else {
		zap.L().Warn("ebay credentials not configured, active listings stage disabled")
	}

	pricer := pricing.New(st, sold, active,
		pricing.WithLadder(ladder),
		pricing.WithRetention(c.Pricing.Retention()),
		pricing.WithStageTimeout(c.Pricing.StageTimeout()),
		pricing.WithCoalescing(c.Pricing.Coalesce),
	)

	return &pricingEnv{Store: st, Pricer: pricer, Breakers: breakers}, nil
}

func buildSoldSource(c *config.Config) *marketplace.SoldSource {
	opts := marketplace.HTTPOptions{
		UserAgent:  c.Ebay.UserAgent,
		Timeout:    secondsOrZero(c.Scrape.TimeoutSecs),
		MaxRetries: c.Scrape.MaxRetries,
	}
	if c.Scrape.RequestsPerSecond > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(c.Scrape.RequestsPerSecond), burstFor(c.Scrape.RequestsPerSecond))
	}
	fetchers := []marketplace.PageFetcher{marketplace.NewHTTPFetcher(opts)}
	if c.Scrape.BrowserFallback {
		fetchers = append(fetchers, marketplace.NewBrowserFetcher(c.Scrape.ChromePath, c.Ebay.UserAgent))
	}
	return marketplace.NewSoldSource(marketplace.NewChainFetcher(fetchers...), c.Ebay.SoldURL)
}

func buildActiveSource(c *config.Config, tokens ebay.TokenCache) *marketplace.ActiveSource {
	provider := ebay.NewTokenProvider(c.Ebay.ClientID, c.Ebay.ClientSecret, tokens,
		ebay.WithTokenURL(c.Ebay.OAuthURL),
		ebay.WithScope(c.Ebay.Scope),
	)
	clientOpts := []ebay.Option{
		ebay.WithBaseURL(c.Ebay.BaseURL),
		ebay.WithMarketplaceID(c.Ebay.MarketplaceID),
	}
	if c.Ebay.RequestsPerSecond > 0 {
		clientOpts = append(clientOpts, ebay.WithRateLimit(c.Ebay.RequestsPerSecond, burstFor(c.Ebay.RequestsPerSecond)))
	}
	return marketplace.NewActiveSource(ebay.NewClient(provider, clientOpts...), c.Ebay.ResultLimit)
}

func burstFor(perSecond float64) int {
	return max(int(perSecond), 1)
}

func secondsOrZero(secs int) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
