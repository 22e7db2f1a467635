package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

func TestClassify_Basic(t *testing.T) {
	tests := []struct {
		title string
		want  model.Category
	}{
		{"Amazing Spider-Man #300 1988 VF/NM 1st Venom", model.CategoryRaw},
		{"Amazing Spider-Man 300 CGC 9.4 White Pages", model.CategorySlab},
		{"ASM #300 CBCS 8.0", model.CategorySlab},
		{"X-Men #1 PGX 9.2", model.CategorySlab},
		{"Amazing Spider-Man #300 CGC9.8 White Pages", model.CategorySlab},
		{"Amazing Spider-Man #300 CBCS9.6", model.CategorySlab},
		{"X-Men #1 pgx10", model.CategorySlab},
		{"Batman 423 graded 9.0", model.CategorySlab},
		{"Batman #423 slabbed newsstand", model.CategorySlab},
		{"Spider-Man comic lot of 25 books", model.CategoryRejected},
		{"Spawn bundle 1-10", model.CategoryRejected},
		{"X-Men complete set 1-50", model.CategoryRejected},
		{"Pokemon base set charizard", model.CategoryRejected},
		{"Venom 1st appearance PSA 10 card", model.CategoryRejected},
		{"Watchmen TPB DC", model.CategoryRejected},
		{"Absolute Sandman Hardcover", model.CategoryRejected},
		{"Marvel Omnibus Vol 1", model.CategoryRejected},
		{"Amazing Fantasy 15 facsimile edition", model.CategoryRejected},
		{"Action Comics #1 Reprint", model.CategoryRejected},
		{"Hulk 181 re-print", model.CategoryRejected},
		{"Spider-Man 300 poster 24x36", model.CategoryRejected},
		{"Batman #1 cover only", model.CategoryRejected},
		{"Wolverine Funko Pop", model.CategoryRejected},
		{"Spawn McFarlane Toys action figure", model.CategoryRejected},
		{"Venom #1 Variant Cover", model.CategoryRejected},
		{"Venom #1 Virgin", model.CategoryRejected},
		{"Spawn #1 foil", model.CategoryRejected},
		{"Spawn #1 signed by McFarlane", model.CategoryRejected},
		{"Spawn #1 NM 9.8", model.CategoryRejected},
		{"Spawn #1 NM- 9.4 raw", model.CategoryRejected},
		{"Spawn #1 VF 8.0 raw", model.CategoryRaw},
		{"Spawn #1 VF/NM 9.0", model.CategoryRaw},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.title))
		})
	}
}

func TestClassify_WordBoundaries(t *testing.T) {
	// Terms embedded in longer words must not trigger.
	assert.Equal(t, model.CategoryRaw, Classify("Runaways #1 2003"))
	assert.Equal(t, model.CategoryRaw, Classify("Sunset Riders #2"))
	assert.Equal(t, model.CategoryRaw, Classify("Daredevil #181 first printing"))
	assert.Equal(t, model.CategoryRaw, Classify("Lottie Comics #4 VG white pages"))
}

func TestClassify_JunkNeverRaw(t *testing.T) {
	for _, terms := range junkTerms {
		for _, term := range terms {
			title := "Amazing Spider-Man #300 " + term
			assert.NotEqual(t, model.CategoryRaw, Classify(title), "title %q", title)
		}
	}
}

func TestClassify_SlabIgnoresVariantMarkers(t *testing.T) {
	for _, slab := range slabTerms {
		for _, v := range variantTerms {
			title := "Venom #1 " + v + " " + slab + " 9.8"
			assert.Equal(t, model.CategorySlab, Classify(title), "title %q", title)
		}
	}
}

func TestClassify_GradingTokenOverridesHighGradeGuard(t *testing.T) {
	c := New("", "1")
	assert.Equal(t, model.CategorySlab, c.Classify("Spider-Man 2099 #1 CGC 9.8"))
}

func TestClassify_IssueGuard(t *testing.T) {
	c := New("Amazing Spider-Man", "300")

	assert.Equal(t, model.CategoryRaw, c.Classify("Amazing Spider-Man #300 VF"))
	assert.Equal(t, model.CategoryRaw, c.Classify("Amazing Spider-Man 300"))
	assert.Equal(t, model.CategoryRaw, c.Classify("Amazing Spider-Man issue 300"))
	assert.Equal(t, model.CategoryRaw, c.Classify("Amazing Spider-Man No. 300"))
	assert.Equal(t, model.CategoryRaw, c.Classify("Amazing Spider-Man no.300 Marvel"))
	assert.Equal(t, model.CategorySlab, c.Classify("Amazing Spider-Man #300 CGC 9.6"))

	assert.Equal(t, model.CategoryRejected, c.Classify("Amazing Spider-Man #301"))
	assert.Equal(t, model.CategoryRejected, c.Classify("Amazing Spider-Man #3000"))
	assert.Equal(t, model.CategoryRejected, c.Classify("Amazing Spider-Man #30"))
	// The issue guard rejects even a slab.
	assert.Equal(t, model.CategoryRejected, c.Classify("Amazing Spider-Man #299 CGC 9.8"))
}

func TestClassify_GluedGradeWithIssue(t *testing.T) {
	c := New("Amazing Spider-Man", "300")
	assert.Equal(t, model.CategorySlab, c.Classify("Amazing Spider-Man #300 CGC9.8 White Pages"))
	assert.Equal(t, model.CategorySlab, c.Classify("Amazing Spider-Man #300 CBCS9.6"))
	// A grading-house name inside a longer word is not a slab.
	assert.Equal(t, model.CategoryRejected, c.Classify("Amazing Spider-Man #300 XCGC9.8"))
}

func TestClassify_VolumeNumberIsNotIssue(t *testing.T) {
	c := New("Amazing Spider-Man", "1")
	assert.Equal(t, model.CategoryRejected, c.Classify("Amazing Spider-Man Vol 1 #300 VF"))
	assert.Equal(t, model.CategoryRejected, c.Classify("Amazing Spider-Man Vol. 1 300"))
	assert.Equal(t, model.CategoryRaw, c.Classify("Amazing Spider-Man Vol 2 #1 VF"))
}

func TestClassify_HashGluedToSeries(t *testing.T) {
	c := New("Amazing Spider-Man", "300")
	assert.Equal(t, model.CategoryRaw, c.Classify("Amazing Spider-Man#300 VF"))
}

func TestClassify_IssueLeadingZeros(t *testing.T) {
	c := New("", "7")
	assert.Equal(t, model.CategoryRaw, c.Classify("Detective Comics #007"))
}

func TestClassify_ContaminationGuard(t *testing.T) {
	c := New("Spider-Man", "23")

	assert.Equal(t, model.CategoryRejected, c.Classify("Ultimate Spider-Man #23 VF"))
	assert.Equal(t, model.CategoryRejected, c.Classify("Spectacular Spider-Man #23"))
	assert.Equal(t, model.CategoryRejected, c.Classify("Spider-Man Annual #23"))
	assert.Equal(t, model.CategoryRaw, c.Classify("Spider-Man #23 1992 McFarlane"))
}

func TestClassify_ContaminationAllowsQueryQualifiers(t *testing.T) {
	c := New("Ultimate Spider-Man", "23")
	assert.Equal(t, model.CategoryRaw, c.Classify("Ultimate Spider-Man #23 VF"))

	// A longer qualifier phrase is distinct from its prefix.
	assert.Equal(t, model.CategoryRejected, c.Classify("Ultimate Comics Spider-Man #23"))
}

func TestApply(t *testing.T) {
	c := New("Amazing Spider-Man", "300")
	listings := []model.Listing{
		{Title: "Amazing Spider-Man #300 VF", Price: decimal.NewFromInt(80)},
		{Title: "Amazing Spider-Man #300 CGC 9.8", Price: decimal.NewFromInt(1200)},
		{Title: "Amazing Spider-Man #300 facsimile", Price: decimal.NewFromInt(5)},
		{Title: "Amazing Spider-Man #301", Price: decimal.NewFromInt(30)},
	}

	raw, slabs := c.Apply(listings)
	require.Len(t, raw, 1)
	require.Len(t, slabs, 1)
	assert.Equal(t, model.CategoryRaw, raw[0].Category)
	assert.Equal(t, model.CategorySlab, slabs[0].Category)
	assert.True(t, slabs[0].Price.Equal(decimal.NewFromInt(1200)))
}

func TestHasIssueToken(t *testing.T) {
	tests := []struct {
		title, issue string
		want         bool
	}{
		{"Batman #1", "1", true},
		{"Batman #1.", "1", true},
		{"Batman (1940) #1", "1", true},
		{"Batman 1.5", "1", false},
		{"Batman 1.5", "1.5", true},
		{"Batman #-1", "-1", true},
		{"Batman #12", "1", false},
		{"Batman issue#404", "404", true},
		{"Batman#404", "404", true},
		{"Batman # 404", "404", true},
		{"Batman Vol 1 #300", "1", false},
		{"Batman v1 300", "1", false},
		{"Batman vol.2 #1", "1", true},
		{"Batman Volume 1 300", "300", true},
		{"Batman 1 #300", "1", false},
		{"Batman (1940) #1", "1940", false},
		{"anything", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.title+"/"+tt.issue, func(t *testing.T) {
			assert.Equal(t, tt.want, HasIssueToken(tt.title, tt.issue))
		})
	}
}

func TestNormalizeIssue(t *testing.T) {
	assert.Equal(t, "1", NormalizeIssue("#001"))
	assert.Equal(t, "0", NormalizeIssue("0"))
	assert.Equal(t, "0.5", NormalizeIssue("0.5"))
	assert.Equal(t, "-1", NormalizeIssue("-1"))
	assert.Equal(t, "300", NormalizeIssue(" 300 "))
	assert.Equal(t, "", NormalizeIssue(""))
}
