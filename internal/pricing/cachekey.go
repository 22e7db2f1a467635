package pricing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/signalpages/ComicScannerApp-sub000/internal/classify"
)

const estimateKeyPrefix = "estimate:"

// CacheKey derives the result cache key for a comic. Series and issue are
// folded so that queries differing only in case, accents or punctuation
// share an entry.
func CacheKey(series, issue string) string {
	return estimateKeyPrefix + normalizeSeries(series) + "|" + normalizeIssue(issue)
}

// normalizeSeries lowercases, strips diacritics, turns punctuation into
// word breaks and collapses whitespace. Apostrophes are dropped so
// "Archie's" stays one word.
func normalizeSeries(s string) string {
	return strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case r == '\'' || r == '’':
			return -1
		default:
			return ' '
		}
	}, fold(s))), " ")
}

// normalizeIssue keeps letters, digits and the issue punctuation '.', '-'
// and '/' so "1.5", "-1" and "1/2" survive, then drops leading zeros.
func normalizeIssue(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '/' {
			return r
		}
		return -1
	}, fold(s))
	return classify.NormalizeIssue(s)
}

func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
