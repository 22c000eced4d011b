package text

import (
	"regexp"
	"strings"
)

var (
	wordPattern     = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9.+#_-]*`)
	sentenceEnd     = regexp.MustCompile(`[.!?]+`)
	listMarker      = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]\s+|[-*•]\s+)`)
	comparisonSplit = regexp.MustCompile(`(?i)\b([A-Za-z0-9.+#_-]+)\s+(?:vs\.?|versus)\s+([A-Za-z0-9.+#_-]+)`)
	betweenSplit    = regexp.MustCompile(`(?i)\bbetween\s+([A-Za-z0-9.+#_-]+)\s+(?:and|or)\s+([A-Za-z0-9.+#_-]+)`)
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "our": {}, "your": {}, "with": {},
	"that": {}, "this": {}, "should": {}, "would": {}, "could": {},
	"what": {}, "which": {}, "are": {}, "have": {}, "from": {}, "into": {},
	"about": {}, "will": {}, "can": {}, "how": {}, "when": {}, "where": {},
}

// Words returns the lowercase word tokens of the supplied text in order.
func Words(input string) []string {
	matches := wordPattern.FindAllString(input, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m))
	}
	return out
}

// Sentences splits free text on sentence boundaries, dropping blanks.
func Sentences(input string) []string {
	parts := sentenceEnd.Split(input, -1)
	var out []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ListItems extracts numbered or bulleted list entries from free text.
// Returns nil when the text carries no list markers.
func ListItems(input string) []string {
	if !listMarker.MatchString(input) {
		return nil
	}
	var out []string
	for _, line := range strings.Split(input, "\n") {
		if !listMarker.MatchString(line) {
			continue
		}
		item := listMarker.ReplaceAllString(line, "")
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// LeadBeforeList returns the narrative text preceding the first list-marker
// line, or an empty string when the text starts with the list.
func LeadBeforeList(input string) string {
	var lead []string
	for _, line := range strings.Split(input, "\n") {
		if listMarker.MatchString(line) {
			break
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lead = append(lead, trimmed)
		}
	}
	return strings.Join(lead, " ")
}

// ContainsAny reports whether the lowercase form of the text contains any of
// the supplied terms.
func ContainsAny(input string, terms ...string) bool {
	lower := strings.ToLower(input)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// ComparisonPair extracts the two operands of an "X vs Y" or "between X and Y"
// phrasing, preserving their original casing.
func ComparisonPair(input string) (string, string, bool) {
	if m := comparisonSplit.FindStringSubmatch(input); m != nil {
		return m[1], m[2], true
	}
	if m := betweenSplit.FindStringSubmatch(input); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// Salient returns up to limit informative tokens from the text, preserving
// original casing and input order. Short tokens and stopwords are skipped.
func Salient(input string, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, token := range wordPattern.FindAllString(input, -1) {
		lower := strings.ToLower(token)
		if len(lower) < 4 {
			continue
		}
		if _, ok := stopwords[lower]; ok {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, token)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
