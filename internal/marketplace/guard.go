package marketplace

import (
	"context"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
	"github.com/signalpages/ComicScannerApp-sub000/internal/resilience"
)

// Guarded wraps a Source with a circuit breaker so a failing marketplace is
// skipped quickly instead of being hit on every request.
type Guarded struct {
	Source
	breaker *resilience.CircuitBreaker
}

// Guard wraps src with the breaker registered for its name.
func Guard(src Source, breakers *resilience.ServiceBreakers) *Guarded {
	return &Guarded{Source: src, breaker: breakers.Get(src.Name())}
}

// Search implements Source. While the circuit is open it returns
// resilience.ErrCircuitOpen without calling the wrapped source.
func (g *Guarded) Search(ctx context.Context, q Query) ([]model.Listing, error) {
	return resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) ([]model.Listing, error) {
		return g.Source.Search(ctx, q)
	})
}
