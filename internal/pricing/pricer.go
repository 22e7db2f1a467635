// Package pricing runs the fallback ladder that turns marketplace listings
// into a price estimate for a comic issue.
package pricing

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/signalpages/ComicScannerApp-sub000/internal/classify"
	"github.com/signalpages/ComicScannerApp-sub000/internal/marketplace"
	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

// ErrMissingSeries is returned when a request has no series title.
var ErrMissingSeries = eris.New("pricing: series title is required")

// Defaults for Options.
const (
	DefaultRetention    = 7 * 24 * time.Hour
	DefaultStageTimeout = 10 * time.Second
)

// Request identifies the comic to price. Year is optional; anything other
// than a four-digit year in [1900, 2099] is ignored.
type Request struct {
	Series string `json:"series"`
	Issue  string `json:"issue"`
	Year   string `json:"year,omitempty"`
}

type request struct {
	series string
	issue  string
	year   int
}

// Option configures a Pricer.
type Option func(*Pricer)

// WithLadder replaces the stage policy.
func WithLadder(cfg LadderConfig) Option {
	return func(p *Pricer) { p.ladder = cfg }
}

// WithRetention sets how long a cached estimate is served.
func WithRetention(d time.Duration) Option {
	return func(p *Pricer) {
		if d > 0 {
			p.retention = d
		}
	}
}

// WithStageTimeout bounds each marketplace call.
func WithStageTimeout(d time.Duration) Option {
	return func(p *Pricer) {
		if d > 0 {
			p.stageTimeout = d
		}
	}
}

// WithCoalescing toggles in-flight deduplication of identical requests.
func WithCoalescing(enabled bool) Option {
	return func(p *Pricer) { p.coalesce = enabled }
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(p *Pricer) { p.now = now }
}

// Pricer prices comics through the sold-strict, sold-relaxed, active ladder
// and keeps results in a cache.
type Pricer struct {
	cache        resultCache
	sold         marketplace.Source
	active       marketplace.Source
	ladder       LadderConfig
	stages       []stage
	retention    time.Duration
	stageTimeout time.Duration
	coalesce     bool
	now          func() time.Time
	group        singleflight.Group
}

// New creates a Pricer. cache may be nil to disable caching; either source
// may be nil to skip the stages that use it.
func New(cache Cache, sold, active marketplace.Source, opts ...Option) *Pricer {
	p := &Pricer{
		cache:        resultCache{store: cache},
		sold:         sold,
		active:       active,
		ladder:       DefaultLadder(),
		retention:    DefaultRetention,
		stageTimeout: DefaultStageTimeout,
		coalesce:     true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.stages = buildStages(p.ladder, sold, active)
	return p
}

// PriceComic returns the estimate for a comic. Lack of market data is not an
// error: it yields an estimate with stage none and null prices. The only
// errors are ErrMissingSeries and cancellation of ctx.
func (p *Pricer) PriceComic(ctx context.Context, r Request) (*model.PriceEstimate, error) {
	req := request{
		series: strings.TrimSpace(r.Series),
		issue:  strings.TrimSpace(r.Issue),
		year:   ParseYear(r.Year),
	}
	if req.series == "" {
		return nil, ErrMissingSeries
	}
	key := CacheKey(req.series, req.issue)

	if !p.coalesce {
		return p.price(ctx, key, req)
	}

	ch := p.group.DoChan(key, func() (any, error) {
		return p.price(ctx, key, req)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// The leader's caller went away; ours has not.
			if isCancellation(res.Err) && ctx.Err() == nil {
				return p.price(ctx, key, req)
			}
			return nil, res.Err
		}
		est := *res.Val.(*model.PriceEstimate)
		return &est, nil
	}
}

func (p *Pricer) price(ctx context.Context, key string, req request) (*model.PriceEstimate, error) {
	log := zap.L().With(zap.String("key", key))

	if cached := p.cache.get(ctx, key); cached != nil && cached.FreshAt(p.now(), p.retention) {
		cached.Meta.Cached = true
		log.Debug("pricing: served from cache", zap.String("stage", string(cached.Meta.Stage)))
		return cached, nil
	}

	classifier := classify.New(req.series, req.issue)
	for _, st := range p.stages {
		if !st.eligible(req) {
			continue
		}

		listings, err := p.search(ctx, st, req)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			log.Warn("pricing: stage failed",
				zap.String("stage", string(st.name)),
				zap.String("source", st.source.Name()),
				zap.Error(err),
			)
		}

		raw, slabs := classifier.Apply(listings)
		res := st.compute(raw, slabs)
		log.Debug("pricing: stage evaluated",
			zap.String("stage", string(st.name)),
			zap.Int("listings", len(listings)),
			zap.Int("raw", res.rawCount),
			zap.Int("slabs", res.slabCount),
			zap.Int("min_count", st.minCount),
		)
		if !st.accepts(res) {
			continue
		}

		est := &model.PriceEstimate{
			Value:    res.value,
			ImageURL: res.imageURL,
			Meta: model.EstimateMeta{
				Stage:      st.name,
				Method:     st.source.Method(),
				Count:      res.count,
				RawCount:   res.rawCount,
				SlabCount:  res.slabCount,
				ComputedAt: p.now().UTC(),
			},
		}
		p.cache.set(ctx, key, est)
		log.Info("pricing: estimate computed",
			zap.String("stage", string(st.name)),
			zap.Int("count", res.count),
		)
		return est, nil
	}

	log.Info("pricing: no stage met its threshold")
	return model.Unavailable(p.now().UTC()), nil
}

// search runs one stage's marketplace call under the stage timeout.
func (p *Pricer) search(ctx context.Context, st stage, req request) ([]model.Listing, error) {
	sctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return st.source.Search(sctx, st.query(req))
}

// ParseYear returns the cover year in s, or 0 unless s is a four-digit year
// in [1900, 2099].
func ParseYear(s string) int {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 2099 {
		return 0
	}
	return y
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
