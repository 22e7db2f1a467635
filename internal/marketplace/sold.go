package marketplace

import (
	"bytes"
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
	"github.com/signalpages/ComicScannerApp-sub000/pkg/ebay"
)

const (
	// DefaultSoldURL is the search results page for completed listings.
	DefaultSoldURL = "https://www.ebay.com/sch/i.html"

	soldPageSize = 120
)

// SoldSource scrapes completed, sold listings from the search results page.
type SoldSource struct {
	baseURL string
	fetcher PageFetcher
}

// NewSoldSource creates a sold listings source. baseURL may be empty to use
// DefaultSoldURL.
func NewSoldSource(fetcher PageFetcher, baseURL string) *SoldSource {
	if baseURL == "" {
		baseURL = DefaultSoldURL
	}
	return &SoldSource{baseURL: baseURL, fetcher: fetcher}
}

// Name implements Source.
func (s *SoldSource) Name() string { return "ebay_sold" }

// Method implements Source.
func (s *SoldSource) Method() model.Method { return model.MethodScrape }

// SearchURL renders the results page URL for q.
func (s *SoldSource) SearchURL(q Query) string {
	v := url.Values{}
	v.Set("_nkw", BuildQuery(q))
	v.Set("LH_Sold", "1")
	v.Set("LH_Complete", "1")
	v.Set("_sacat", ebay.CategoryComics)
	v.Set("_ipg", strconv.Itoa(soldPageSize))
	return s.baseURL + "?" + v.Encode()
}

// Search implements Source. A failed page fetch is an error; cards that
// cannot be parsed are skipped.
func (s *SoldSource) Search(ctx context.Context, q Query) ([]model.Listing, error) {
	body, err := s.fetcher.Fetch(ctx, s.SearchURL(q))
	if err != nil {
		return nil, eris.Wrap(err, "marketplace: fetch sold listings")
	}

	listings, err := ParseSoldResults(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	zap.L().Debug("marketplace: sold search complete",
		zap.String("series", q.Series),
		zap.String("issue", q.Issue),
		zap.Bool("strict", q.Strict),
		zap.Int("listings", len(listings)),
	)
	return listings, nil
}
