package model

import "github.com/shopspring/decimal"

// Category is the classifier's verdict for a marketplace listing title.
type Category string

const (
	CategoryRaw      Category = "raw"
	CategorySlab     Category = "slab"
	CategoryRejected Category = "rejected"
)

// Listing is a single marketplace record as returned by a source. Listings
// are never persisted individually.
type Listing struct {
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
	ItemID   string          `json:"item_id,omitempty"`
}

// HasImage reports whether the listing carries a usable cover image.
func (l Listing) HasImage() bool {
	return l.ImageURL != ""
}

// ClassifiedListing is a Listing tagged with its classifier category.
type ClassifiedListing struct {
	Listing
	Category Category `json:"category"`
}

// Prices extracts the price column from a set of listings.
func Prices(listings []ClassifiedListing) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Price)
	}
	return out
}
