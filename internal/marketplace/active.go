package marketplace

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
	"github.com/signalpages/ComicScannerApp-sub000/pkg/ebay"
)

const (
	// DefaultActiveLimit is the Browse API page size.
	DefaultActiveLimit = 100

	currencyUSD = "USD"
)

// activeFilters restrict the Browse search to Buy It Now listings in USD
// above the price floor.
var activeFilters = []string{
	"buyingOptions:{FIXED_PRICE}",
	"price:[1..]",
	"priceCurrency:USD",
}

// ActiveSource queries currently listed fixed-price items through the
// Browse API.
type ActiveSource struct {
	client ebay.Client
	limit  int
}

// NewActiveSource creates an active listings source. limit <= 0 selects
// DefaultActiveLimit.
func NewActiveSource(client ebay.Client, limit int) *ActiveSource {
	if limit <= 0 {
		limit = DefaultActiveLimit
	}
	return &ActiveSource{client: client, limit: limit}
}

// Name implements Source.
func (s *ActiveSource) Name() string { return "ebay_active" }

// Method implements Source.
func (s *ActiveSource) Method() model.Method { return model.MethodAPI }

// Search implements Source.
func (s *ActiveSource) Search(ctx context.Context, q Query) ([]model.Listing, error) {
	resp, err := s.client.Search(ctx, ebay.SearchRequest{
		Query:       BuildQuery(q),
		CategoryIDs: []string{ebay.CategoryComics},
		Limit:       s.limit,
		Filters:     activeFilters,
	})
	if err != nil {
		return nil, eris.Wrap(err, "marketplace: active search")
	}

	listings := make([]model.Listing, 0, len(resp.ItemSummaries))
	for _, item := range resp.ItemSummaries {
		if !item.IsFixedPrice() {
			continue
		}
		if !strings.EqualFold(item.Price.Currency, currencyUSD) || !aboveFloor(item.Price.Value) {
			continue
		}
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		listings = append(listings, model.Listing{
			Title:    item.Title,
			Price:    item.Price.Value,
			ImageURL: item.ImageURL(),
			ItemID:   item.ItemID,
		})
	}

	zap.L().Debug("marketplace: active search complete",
		zap.String("series", q.Series),
		zap.String("issue", q.Issue),
		zap.Int("returned", len(resp.ItemSummaries)),
		zap.Int("kept", len(listings)),
	)
	return listings, nil
}
