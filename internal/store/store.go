// Package store provides the key/value cache behind price estimates and
// marketplace OAuth tokens.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Store is a key/value cache with optional per-entry expiry.
type Store interface {
	// Get returns the value for key, or (nil, nil) when the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key, replacing any previous value. A ttl <= 0
	// stores the entry without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteExpired removes entries whose ttl has elapsed and reports how
	// many were removed.
	DeleteExpired(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	DatabaseURL string
	Redis       RedisOptions
	Pool        *PoolConfig
}

// Open creates the store selected by opts.Driver. The caller runs Migrate.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		dsn := opts.DatabaseURL
		if dsn == "" {
			dsn = "comicprice.db"
		}
		return NewSQLite(dsn)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, eris.New("store: postgres driver requires database_url")
		}
		return NewPostgres(ctx, opts.DatabaseURL, opts.Pool)
	case DriverRedis:
		return NewRedis(ctx, opts.Redis)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", opts.Driver)
	}
}

func expiry(now time.Time, ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := now.Add(ttl)
	return &t
}
