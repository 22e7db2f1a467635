package marketplace

import "regexp"

// Markup of the eBay sold search results page. Everything the parser knows
// about the page structure lives here.

var (
	// itemClasses mark one result card. Both the legacy s-item layout and
	// the s-card layout are recognised.
	itemClasses = []string{"s-item", "s-card"}

	titleClasses = []string{"s-item__title", "s-card__title"}
	priceClasses = []string{"s-item__price", "s-card__price"}
	linkClasses  = []string{"s-item__link", "su-link"}

	// imageAttrs are checked in order; lazy-loaded images carry the real
	// URL in data-src and a spacer gif in src.
	imageAttrs = []string{"data-src", "src"}

	// titlePrefixes are badges rendered inside the title element.
	titlePrefixes = []string{"New Listing", "NEW LISTING"}

	// placeholderTitles identify template cards that are not listings.
	placeholderTitles = []string{"Shop on eBay"}

	// pricePattern accepts a single USD amount such as "$1,234.56" or
	// "US $45.00". Ranges ("$5.00 to $9.00") do not match.
	pricePattern = regexp.MustCompile(`^(?:US\s*)?\$\s*([\d,]+(?:\.\d{1,2})?)$`)

	// itemIDPattern extracts the listing id from an /itm/ link.
	itemIDPattern = regexp.MustCompile(`/itm/(?:[^/?]+/)?(\d{9,})`)
)
