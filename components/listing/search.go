package listing

import "strings"

// NormalizeSearch lower-cases and trims raw search input.
func NormalizeSearch(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}

// matchTokens reports whether every token is a substring of haystack.
func matchTokens(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

func haystackOf[R any](record R, projections []func(R) string) string {
	var b strings.Builder
	for i, project := range projections {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(project(record))
	}
	return strings.ToLower(b.String())
}
