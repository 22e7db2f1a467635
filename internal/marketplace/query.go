package marketplace

import (
	"strconv"
	"strings"
)

// exclusionTerms are appended to every query as "-term" so the marketplace
// pre-filters obvious noise. The classifier still screens every title.
var exclusionTerms = []string{
	"lot", "bundle", "set", "run", "tpb", "hardcover", "omnibus",
	"facsimile", "reprint", "digital", "poster", "print", "variant",
	"signed", "virgin", "foil", "sketch", "card",
}

// BuildQuery renders the keyword string for q. Strict queries carry the
// cover year (when known) and the "comic" keyword.
func BuildQuery(q Query) string {
	parts := make([]string, 0, 4+len(exclusionTerms))
	if s := strings.Join(strings.Fields(q.Series), " "); s != "" {
		parts = append(parts, s)
	}
	if issue := strings.TrimPrefix(strings.TrimSpace(q.Issue), "#"); issue != "" {
		parts = append(parts, "#"+issue)
	}
	if q.Strict {
		if q.Year > 0 {
			parts = append(parts, strconv.Itoa(q.Year))
		}
		parts = append(parts, "comic")
	}
	for _, t := range exclusionTerms {
		parts = append(parts, "-"+t)
	}
	return strings.Join(parts, " ")
}
