package pricing

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

// Cache is the key/value store estimates are persisted in. store.Store
// satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// resultCache is the best-effort glue between the pricer and a Cache: read
// failures are misses and write failures are no-ops, both logged.
type resultCache struct {
	store Cache
}

func (c resultCache) get(ctx context.Context, key string) *model.PriceEstimate {
	if c.store == nil {
		return nil
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		zap.L().Warn("pricing: cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var est model.PriceEstimate
	if err := json.Unmarshal(data, &est); err != nil {
		zap.L().Warn("pricing: cached estimate unreadable", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &est
}

// set stores est without a store-level TTL; staleness is judged on read
// from Meta.ComputedAt.
func (c resultCache) set(ctx context.Context, key string, est *model.PriceEstimate) {
	if c.store == nil {
		return
	}
	stored := *est
	stored.Meta.Cached = false
	data, err := json.Marshal(stored)
	if err != nil {
		zap.L().Warn("pricing: marshal estimate", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data, 0); err != nil {
		zap.L().Warn("pricing: cache write failed", zap.String("key", key), zap.Error(err))
	}
}
