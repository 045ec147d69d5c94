package analysis

import (
	"fmt"
	"strings"
)

const (
	flagKeywordFactor    = 0.1
	thresholdBonusFactor = 0.3
	maxRoutineReduction  = 0.9
)

// UrgencyScorer combines flag matches, financial impact, routine dampening,
// and high-value boosting into one bounded score.
type UrgencyScorer struct {
	taxonomy *Taxonomy
}

// NewUrgencyScorer returns a scorer over the taxonomy's routine filters and
// boost categories.
func NewUrgencyScorer(taxonomy *Taxonomy) *UrgencyScorer {
	return &UrgencyScorer{taxonomy: taxonomy}
}

// Score computes the urgency of one announcement. text must already be
// lower-cased (see CombineText); financialImpact is the deduplicated sum of
// extracted monetary values. Absence of matches yields 0.0; this scorer
// never fails.
func (s *UrgencyScorer) Score(text string, flags []FlagMatch, financialImpact float64) UrgencyResult {
	result := UrgencyResult{FinancialImpact: financialImpact}

	// Base: matched keyword count weighted per flag.
	score := 0.0
	for _, flag := range flags {
		contribution := float64(len(flag.MatchedKeywords)) * flag.Weight * flagKeywordFactor
		score += contribution
		result.Flags = append(result.Flags, FlagContribution{FlagMatch: flag, Contribution: contribution})
	}

	// Threshold bonus for flags whose financial threshold is met.
	for i, flag := range flags {
		if financialImpact <= 0 || financialImpact < flag.FinancialThreshold {
			continue
		}
		bonus := flag.Weight * thresholdBonusFactor
		score += bonus
		result.Flags[i].Contribution += bonus
	}

	// Routine dampening, capped, then applied multiplicatively.
	reduction := 0.0
	var dampened []string
	for _, filter := range s.taxonomy.RoutineFilters {
		if !containsAny(text, filter.Keywords) || containsAny(text, filter.Exceptions) {
			continue
		}
		reduction += filter.Reduction
		dampened = append(dampened, filter.Name)
	}
	if reduction > maxRoutineReduction {
		reduction = maxRoutineReduction
	}
	if reduction > 0 {
		score *= 1 - reduction
	}
	result.RoutineReduction = reduction

	// High-value boosts.
	boost := 0.0
	var boosted []string
	for _, category := range s.taxonomy.HighValueBoosts {
		if !containsAny(text, category.Keywords) {
			continue
		}
		if category.Threshold > 0 && financialImpact < category.Threshold {
			continue
		}
		boost += category.Boost
		boosted = append(boosted, category.Name)
	}
	score += boost
	result.HighValueBoost = boost

	result.Score = clamp01(score)

	if financialImpact > 0 {
		result.ContributingFactors = append(result.ContributingFactors,
			fmt.Sprintf("financial impact %.0f", financialImpact))
	}
	if len(flags) > 0 {
		names := make([]string, len(flags))
		for i, f := range flags {
			names[i] = f.Name
		}
		result.ContributingFactors = append(result.ContributingFactors,
			fmt.Sprintf("flags matched: %s", strings.Join(names, ", ")))
	}
	if reduction > 0 {
		result.ContributingFactors = append(result.ContributingFactors,
			fmt.Sprintf("routine reduction %.0f%% (%s)", reduction*100, strings.Join(dampened, ", ")))
	}
	if boost > 0 {
		result.ContributingFactors = append(result.ContributingFactors,
			fmt.Sprintf("high value boost +%.2f (%s)", boost, strings.Join(boosted, ", ")))
	}

	return result
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
