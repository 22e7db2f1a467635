package classify

import (
	"regexp"
	"sort"
	"strings"
)

// junkTerms reject a listing outright, whatever else the title says.
var junkTerms = map[string][]string{
	"bulk": {
		"lot", "lots", "bundle", "bundles", "set", "sets", "run", "runs",
		"collection", "pack", "packs", "complete series",
	},
	"card": {
		"pokemon", "pokémon", "yugioh", "yu-gi-oh", "mtg", "magic the gathering",
		"tcg", "psa", "bgs", "sgc", "trading card", "trading cards", "card", "cards",
		"beckett",
	},
	"format": {
		"tpb", "trade paperback", "hardcover", "hc", "omnibus", "graphic novel",
		"paperback", "digital", "digital code",
	},
	"reproduction": {
		"facsimile", "reprint", "reprints", "re-print", "golden record", "replica",
	},
	"ephemera": {
		"poster", "print", "art print", "cover only", "page", "framed",
		"ticket", "sticker", "stickers", "magnet", "toy", "figure", "figurine",
		"funko", "pop vinyl", "action figure", "statue", "bust", "lego", "t-shirt",
	},
}

// variantTerms reject a listing only when it is being evaluated as raw.
var variantTerms = []string{
	"variant", "virgin", "foil", "signed", "sketch", "exclusive",
	"autographed", "autograph", "remarked", "remark",
}

// slabTerms mark a listing as professionally graded and encapsulated.
var slabTerms = []string{
	"cgc", "cbcs", "pgx", "graded", "slab", "slabbed",
}

// gradingHouses are the slab terms eBay sellers glue a grade onto, as in
// "CGC9.8".
var gradingHouses = []string{"cgc", "cbcs", "pgx"}

// qualifierTerms distinguish sibling series that share a base title, such as
// "Ultimate Spider-Man" versus "Spider-Man". A candidate title carrying one
// of these is rejected unless the query carries it too.
var qualifierTerms = []string{
	"ultimate", "ultimates", "ultimate comics", "superior", "spectacular",
	"sensational", "peter parker", "web of", "friendly neighborhood",
	"miles morales", "spider-gwen", "marvel adventures", "marvel age",
	"what if", "annual", "giant-size", "king-size", "untold tales",
	"all-new", "uncanny", "astonishing",
}

var (
	junkPattern       = termPattern(flatten(junkTerms))
	variantPattern    = termPattern(variantTerms)
	slabPattern       = termPattern(slabTerms)
	gluedGradePattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + alternation(gradingHouses) + `)\d{1,2}(?:\.\d)?(?:$|[^\p{L}\p{N}])`)
	qualifierPattern  = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + alternation(qualifierTerms) + `)(?:$|[^\p{L}\p{N}])`)

	// highGradePattern matches grade claims at slab level (9.4 through 10.0)
	// as standalone tokens.
	highGradePattern = regexp.MustCompile(`(?:^|[^\d.])(9\.[4-9]|10\.0)(?:$|[^\d])`)
)

func flatten(groups map[string][]string) []string {
	var out []string
	for _, terms := range groups {
		out = append(out, terms...)
	}
	return out
}

// alternation joins terms longest first so multi-word phrases win over
// their own prefixes.
func alternation(terms []string) string {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, t := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(t), " ", `\s+`)
	}
	return strings.Join(quoted, "|")
}

// termPattern matches any term as a whole word, case-insensitively. Word
// edges are any non letter/digit rune so hyphenated terms match as units.
func termPattern(terms []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + alternation(terms) + `)(?:$|[^\p{L}\p{N}])`)
}

// qualifiers returns the lowercased qualifier terms present in s.
func qualifiers(s string) map[string]bool {
	found := make(map[string]bool)
	lower := strings.ToLower(s)
	// Overlapping matches share a boundary rune, so scan with a moving offset.
	for offset := 0; offset < len(lower); {
		loc := qualifierPattern.FindStringSubmatchIndex(lower[offset:])
		if loc == nil {
			break
		}
		term := strings.Join(strings.Fields(lower[offset+loc[2]:offset+loc[3]]), " ")
		found[term] = true
		offset += loc[3]
	}
	return found
}
