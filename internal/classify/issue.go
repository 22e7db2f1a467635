package classify

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// issuePrefixes may be glued to an issue number inside a single token.
var issuePrefixes = []string{"issue#", "issue", "no.", "no", "#"}

// NormalizeIssue canonicalizes an issue number for comparison: lowercase,
// leading '#' removed, leading zeros dropped ("007" -> "7", "0" stays "0").
func NormalizeIssue(issue string) string {
	s := strings.ToLower(strings.TrimSpace(issue))
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" || strings.HasPrefix(trimmed, ".") {
		trimmed = "0" + trimmed
	}
	if s == "" {
		trimmed = ""
	}
	if neg {
		return "-" + trimmed
	}
	return trimmed
}

// HasIssueToken reports whether title contains issue as an isolated token,
// optionally prefixed by '#', "issue" or "no."/"no". When the title carries
// any '#' number, only those are considered. Volume numbers ("Vol 1", "v2")
// never count.
func HasIssueToken(title, issue string) bool {
	want := NormalizeIssue(issue)
	if want == "" {
		return true
	}

	var hashed, plain []string
	prev := ""
	// A '#' glued to the series name ("Spider-Man#300") starts a new token.
	lowered := strings.ReplaceAll(strings.ToLower(title), "#", " #")
	for _, tok := range strings.FieldsFunc(lowered, isTokenSeparator) {
		tok = strings.TrimRight(tok, ".,:;!?")
		if tok == "" {
			continue
		}
		switch {
		case tok == "#":
		case strings.HasPrefix(tok, "#") || prev == "#":
			if n := strings.TrimPrefix(tok, "#"); isIssueNumber(n) {
				hashed = append(hashed, NormalizeIssue(n))
			}
		case volumeMarkers[prev] || volumeToken.MatchString(tok):
		default:
			plain = append(plain, NormalizeIssue(stripIssuePrefix(tok)))
		}
		prev = tok
	}

	candidates := plain
	if len(hashed) > 0 {
		candidates = hashed
	}
	return slices.Contains(candidates, want)
}

// volumeMarkers precede a volume number as a separate token. "vol." arrives
// here with its dot trimmed.
var volumeMarkers = map[string]bool{"vol": true, "volume": true, "v": true}

// volumeToken matches a volume number glued to its marker: "v2", "vol.3".
var volumeToken = regexp.MustCompile(`^v(?:ol(?:ume)?)?\.?\d`)

func isIssueNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return s != "" && unicode.IsDigit(rune(s[0]))
}

func stripIssuePrefix(tok string) string {
	for _, p := range issuePrefixes {
		if len(tok) > len(p) && strings.HasPrefix(tok, p) {
			rest := tok[len(p):]
			r := rune(rest[0])
			if unicode.IsDigit(r) || r == '-' || r == '#' {
				return strings.TrimPrefix(rest, "#")
			}
		}
	}
	return tok
}

func isTokenSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', '(', ')', '[', ']', '{', '}', ':', ';', '/', '|', '!', '?', '"', '\'', '*', '~':
		return true
	}
	return false
}
