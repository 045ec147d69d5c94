package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestUrgencyBaseScore(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	flags := []FlagMatch{
		{Name: "order_win", Weight: 0.9, MatchedKeywords: []string{"order", "contract"}, FinancialThreshold: 5e7},
	}
	// Text free of routine and boost keywords so only the base term scores.
	result := s.Score("revenue numbers", flags, 0)

	// 2 keywords x 0.9 x 0.1, no impact so no threshold bonus.
	if math.Abs(result.Score-0.18) > 1e-9 {
		t.Errorf("score = %v, want 0.18", result.Score)
	}
	if len(result.Flags) != 1 || math.Abs(result.Flags[0].Contribution-0.18) > 1e-9 {
		t.Errorf("flag contribution = %+v, want 0.18", result.Flags)
	}
}

func TestUrgencyThresholdBonus(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	flags := []FlagMatch{
		{Name: "order_win", Weight: 0.9, MatchedKeywords: []string{"order"}, FinancialThreshold: 5e7},
	}

	below := s.Score("order", flags, 4e7)
	above := s.Score("order", flags, 6e7)

	// Bonus is weight x 0.3 once the impact clears the threshold.
	if math.Abs(above.Score-below.Score-0.27) > 1e-9 {
		t.Errorf("threshold bonus = %v, want 0.27", above.Score-below.Score)
	}
}

func TestUrgencyNoBonusWithoutImpact(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	// Zero-threshold flags only earn the bonus when there is actual impact.
	flags := []FlagMatch{
		{Name: "breaking", Weight: 0.6, MatchedKeywords: []string{"urgent"}, FinancialThreshold: 0},
	}
	result := s.Score("urgent", flags, 0)
	if math.Abs(result.Score-0.06) > 1e-9 {
		t.Errorf("score = %v, want base 0.06 with no bonus", result.Score)
	}
}

func TestUrgencyRoutineReduction(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	flags := []FlagMatch{
		{Name: "breaking", Weight: 0.6, MatchedKeywords: []string{"change"}, FinancialThreshold: 0},
	}

	plain := s.Score("change", flags, 0)
	routine := s.Score("change board meeting intimation", flags, 0)

	if routine.Score >= plain.Score {
		t.Errorf("routine text scored %v, plain %v; reduction not applied", routine.Score, plain.Score)
	}
	if routine.RoutineReduction <= 0 {
		t.Error("routine reduction not recorded")
	}
}

func TestUrgencyRoutineExceptionSuppressesReduction(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	// "dividend" is a board-meeting exception, so that filter must not fire.
	withException := s.Score("board meeting to consider dividend", nil, 0)
	if withException.RoutineReduction >= 0.5 {
		t.Errorf("reduction = %v; board meeting filter fired despite exception", withException.RoutineReduction)
	}
}

func TestUrgencyReductionCap(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	// Text hitting many routine filters at once still caps at 0.9.
	text := "board meeting intimation filing submission update administrative routine technical system maintenance"
	result := s.Score(text, nil, 0)
	if result.RoutineReduction > 0.9 {
		t.Errorf("reduction = %v, cap is 0.9", result.RoutineReduction)
	}
}

func TestUrgencyHighValueBoost(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	// financial_magnitude needs impact >= 1 crore; strategic_importance has
	// no threshold.
	noImpact := s.Score("crore", nil, 0)
	if noImpact.HighValueBoost != 0 {
		t.Errorf("boost = %v without impact, want 0", noImpact.HighValueBoost)
	}

	withImpact := s.Score("crore", nil, 2e7)
	if math.Abs(withImpact.HighValueBoost-0.3) > 1e-9 {
		t.Errorf("boost = %v, want 0.3", withImpact.HighValueBoost)
	}

	strategic := s.Score("strategic partnership milestone", nil, 0)
	if strategic.HighValueBoost < 0.4 {
		t.Errorf("strategic boost = %v, want >= 0.4", strategic.HighValueBoost)
	}
}

func TestUrgencyScoreBounds(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	// Saturated input: many flags, huge impact, every boost keyword.
	flags := []FlagMatch{
		{Name: "earnings_spike", Weight: 0.8, MatchedKeywords: []string{"profit", "revenue", "growth", "eps"}, FinancialThreshold: 1e7},
		{Name: "order_win", Weight: 0.9, MatchedKeywords: []string{"order", "contract", "award"}, FinancialThreshold: 5e7},
	}
	result := s.Score("crore strategic market government order", flags, 1e12)
	if result.Score < 0 || result.Score > 1 {
		t.Errorf("score %v out of [0,1]", result.Score)
	}
	if result.Score != 1.0 {
		t.Errorf("saturated score = %v, want clamp to 1.0", result.Score)
	}

	empty := s.Score("", nil, 0)
	if empty.Score != 0 {
		t.Errorf("empty input score = %v, want 0", empty.Score)
	}
}

func TestUrgencyMonotonicity(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	base := "new project announcement"
	flags := []FlagMatch{
		{Name: "order_win", Weight: 0.9, MatchedKeywords: []string{"project"}, FinancialThreshold: 5e7},
	}

	plain := s.Score(base, flags, 2e7)
	boosted := s.Score(base+" strategic milestone", flags, 2e7)
	if boosted.Score < plain.Score {
		t.Errorf("adding boost keyword decreased score: %v -> %v", plain.Score, boosted.Score)
	}

	dampened := s.Score(base+" board meeting notice", flags, 2e7)
	if dampened.Score > plain.Score {
		t.Errorf("adding routine keyword increased score: %v -> %v", plain.Score, dampened.Score)
	}
}

func TestUrgencyContributingFactors(t *testing.T) {
	s := NewUrgencyScorer(loadTestTaxonomy(t))

	flags := []FlagMatch{
		{Name: "order_win", Weight: 0.9, MatchedKeywords: []string{"order"}, FinancialThreshold: 5e7},
	}
	result := s.Score("order crore board meeting notice", flags, 6e7)

	joined := strings.Join(result.ContributingFactors, "; ")
	for _, want := range []string{"financial impact", "flags matched", "routine reduction", "high value boost"} {
		if !strings.Contains(joined, want) {
			t.Errorf("contributing factors %q missing %q", joined, want)
		}
	}
}
