// Package marketplace retrieves raw comic listings from eBay, either as
// active fixed-price offers through the Browse API or as completed sales
// scraped from the sold search results page.
package marketplace

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

// MinPrice is the exclusive price floor every source applies. Listings at or
// below it are placeholders, not sales.
var MinPrice = decimal.NewFromInt(1)

// Query identifies the comic being priced.
type Query struct {
	Series string
	Issue  string
	// Year is the cover year, or 0 when unknown.
	Year int
	// Strict tightens the search with the year and the "comic" keyword.
	Strict bool
}

// Source retrieves raw listings for a query. Zero results is not an error.
type Source interface {
	Name() string
	Method() model.Method
	Search(ctx context.Context, q Query) ([]model.Listing, error)
}

func aboveFloor(p decimal.Decimal) bool {
	return p.GreaterThan(MinPrice)
}
