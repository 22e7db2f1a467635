// Package classify sorts marketplace listing titles into raw comics, graded
// slabs, and junk using text heuristics.
package classify

import (
	"strings"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

// Classifier evaluates listing titles against an optional expected issue
// number and the qualifier words of the searched series.
type Classifier struct {
	issue      string
	series     string
	qualifiers map[string]bool
}

// New creates a Classifier for a query. seriesTitle supplies the qualifier
// words a candidate title may carry; issue, when non-empty, must appear in
// every accepted title.
func New(seriesTitle, issue string) *Classifier {
	return &Classifier{
		issue:      NormalizeIssue(issue),
		series:     strings.TrimSpace(seriesTitle),
		qualifiers: qualifiers(seriesTitle),
	}
}

// Classify returns the category of a title with no query context.
func Classify(title string) model.Category {
	return New("", "").Classify(title)
}

// Classify returns the category of title for this query.
//
// Order of evaluation: issue guard, series-contamination guard, junk
// vocabulary, grading-house tokens (slab), then the raw-only guards for
// variant markers and slab-level grade claims.
func (c *Classifier) Classify(title string) model.Category {
	if c.issue != "" && !HasIssueToken(title, c.issue) {
		return model.CategoryRejected
	}
	if c.contaminated(title) {
		return model.CategoryRejected
	}
	if junkPattern.MatchString(title) {
		return model.CategoryRejected
	}
	if slabPattern.MatchString(title) || gluedGradePattern.MatchString(title) {
		return model.CategorySlab
	}
	if variantPattern.MatchString(title) {
		return model.CategoryRejected
	}
	if highGradePattern.MatchString(title) {
		return model.CategoryRejected
	}
	return model.CategoryRaw
}

// contaminated reports whether title carries a qualifier word the query
// does not, e.g. "Ultimate Spider-Man #23" for a "Spider-Man #23" query.
func (c *Classifier) contaminated(title string) bool {
	if c.series == "" {
		return false
	}
	for q := range qualifiers(title) {
		if !c.qualifiers[q] {
			return true
		}
	}
	return false
}

// Apply classifies every listing and splits the accepted ones by category.
// Rejected listings are dropped.
func (c *Classifier) Apply(listings []model.Listing) (raw, slabs []model.ClassifiedListing) {
	for _, l := range listings {
		switch cat := c.Classify(l.Title); cat {
		case model.CategoryRaw:
			raw = append(raw, model.ClassifiedListing{Listing: l, Category: cat})
		case model.CategorySlab:
			slabs = append(slabs, model.ClassifiedListing{Listing: l, Category: cat})
		}
	}
	return raw, slabs
}
