package marketplace

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

// ParseSoldResults extracts listings from a sold search results page. Cards
// with a missing title, a price range, an unparsable price or a price at or
// below MinPrice are skipped. Only a document that cannot be parsed at all
// is an error.
func ParseSoldResults(r io.Reader) ([]model.Listing, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "marketplace: parse sold results")
	}

	var (
		listings []model.Listing
		skipped  int
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasAnyClass(n, itemClasses) {
			if l, ok := parseItem(n); ok {
				listings = append(listings, l)
			} else {
				skipped++
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if skipped > 0 {
		zap.L().Debug("marketplace: skipped sold result cards",
			zap.Int("skipped", skipped),
			zap.Int("kept", len(listings)),
		)
	}
	return listings, nil
}

func parseItem(n *html.Node) (model.Listing, bool) {
	titleNode := findFirst(n, func(c *html.Node) bool { return hasAnyClass(c, titleClasses) })
	if titleNode == nil {
		return model.Listing{}, false
	}
	title := cleanTitle(textContent(titleNode))
	if title == "" || isPlaceholder(title) {
		return model.Listing{}, false
	}

	priceNode := findFirst(n, func(c *html.Node) bool { return hasAnyClass(c, priceClasses) })
	if priceNode == nil {
		return model.Listing{}, false
	}
	price, ok := parsePrice(textContent(priceNode))
	if !ok || !aboveFloor(price) {
		return model.Listing{}, false
	}

	return model.Listing{
		Title:    title,
		Price:    price,
		ImageURL: imageURL(n),
		ItemID:   itemID(n),
	}, true
}

func parsePrice(s string) (decimal.Decimal, bool) {
	s = strings.Join(strings.Fields(s), " ")
	m := pricePattern.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for _, p := range titlePrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(strings.TrimPrefix(s, p))
		}
	}
	return s
}

func isPlaceholder(title string) bool {
	for _, p := range placeholderTitles {
		if strings.EqualFold(title, p) {
			return true
		}
	}
	return false
}

func imageURL(item *html.Node) string {
	img := findFirst(item, func(c *html.Node) bool { return c.Type == html.ElementNode && c.Data == "img" })
	if img == nil {
		return ""
	}
	for _, name := range imageAttrs {
		v := strings.TrimSpace(attr(img, name))
		if v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

func itemID(item *html.Node) string {
	link := findFirst(item, func(c *html.Node) bool {
		return c.Type == html.ElementNode && c.Data == "a" && hasAnyClass(c, linkClasses)
	})
	if link == nil {
		return ""
	}
	if m := itemIDPattern.FindStringSubmatch(attr(link, "href")); m != nil {
		return m[1]
	}
	return ""
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAnyClass(n *html.Node, classes []string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		for _, want := range classes {
			if c == want {
				return true
			}
		}
	}
	return false
}
