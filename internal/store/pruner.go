package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner periodically deletes expired entries from a Store.
type Pruner struct {
	store    Store
	interval time.Duration
}

// NewPruner creates a background pruner. A non-positive interval defaults
// to one hour.
func NewPruner(st Store, interval time.Duration) *Pruner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Pruner{store: st, interval: interval}
}

// Run starts the prune loop. It blocks until ctx is cancelled.
func (p *Pruner) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "store.pruner"))
	log.Info("starting cache pruner", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("cache pruner stopped")
			return
		case <-ticker.C:
			p.prune(ctx, log)
		}
	}
}

func (p *Pruner) prune(ctx context.Context, log *zap.Logger) {
	n, err := p.store.DeleteExpired(ctx)
	if err != nil {
		log.Error("store: prune expired entries", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("store: pruned expired entries", zap.Int("deleted", n))
	}
}
