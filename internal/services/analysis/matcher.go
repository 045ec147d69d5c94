package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Matcher checks announcement text against the weighted flag taxonomy.
type Matcher struct {
	taxonomy *Taxonomy
}

// NewMatcher returns a matcher over the taxonomy's urgency categories.
func NewMatcher(taxonomy *Taxonomy) *Matcher {
	return &Matcher{taxonomy: taxonomy}
}

// Match returns one FlagMatch per category with at least one keyword hit,
// in taxonomy order. Matching is case-insensitive substring containment;
// the matched keyword set is retained for weighting and the audit trail.
func (m *Matcher) Match(text string) []FlagMatch {
	lowered := strings.ToLower(text)

	var matches []FlagMatch
	for _, category := range m.taxonomy.UrgencyCategories {
		var hits []string
		for _, keyword := range category.Keywords {
			if strings.Contains(lowered, keyword) {
				hits = append(hits, keyword)
			}
		}
		if len(hits) == 0 {
			continue
		}
		matches = append(matches, FlagMatch{
			Name:               category.Name,
			Weight:             category.Weight,
			MatchedKeywords:    hits,
			FinancialThreshold: category.FinancialThreshold,
		})
	}
	return matches
}

// CombineText builds the lower-cased haystack the matcher and scorers run
// against: title, narrative, and structured metrics flattened to
// "<metric>: <value>" pairs in stable order.
func CombineText(title, narrative string, metrics FinancialMetrics) string {
	parts := make([]string, 0, 2+len(metrics))
	if title != "" {
		parts = append(parts, title)
	}
	if narrative != "" {
		parts = append(parts, narrative)
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, metrics[name]))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// TotalMatchedKeywords counts keyword hits across all matched flags.
func TotalMatchedKeywords(flags []FlagMatch) int {
	total := 0
	for _, f := range flags {
		total += len(f.MatchedKeywords)
	}
	return total
}
