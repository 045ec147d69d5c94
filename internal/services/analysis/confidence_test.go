package analysis

import (
	"math"
	"testing"
)

func TestConfidenceFactorsBounded(t *testing.T) {
	s := NewConfidenceScorer(loadTestTaxonomy(t))

	flags := []FlagMatch{
		{Name: "earnings_spike", MatchedKeywords: []string{"profit", "revenue", "growth"}},
	}
	filing := &FilingData{
		Quality:   QualityStructured,
		Metrics:   FinancialMetrics{"revenue": 5e9},
		Company:   CompanyInfo{"entityname": "Acme Ltd"},
		Narrative: "strong quarter",
	}

	result := s.Score(flags, "Acme Ltd", "quarterly_results", "strong quarter", filing)

	if result.Score < 0 || result.Score > 1 {
		t.Fatalf("score %v out of [0,1]", result.Score)
	}
	if len(result.Factors) != 7 {
		t.Errorf("factors = %d, want 7", len(result.Factors))
	}
	for name, v := range result.Factors {
		if v < 0 || v > 1 {
			t.Errorf("factor %s = %v out of [0,1]", name, v)
		}
	}
}

func TestConfidenceRichInputOutscoresEmpty(t *testing.T) {
	s := NewConfidenceScorer(loadTestTaxonomy(t))

	rich := s.Score(
		[]FlagMatch{{MatchedKeywords: []string{"profit", "revenue", "order", "contract", "dividend"}}},
		"Acme Limited",
		"quarterly_results",
		"detailed narrative",
		&FilingData{
			Quality:   QualityStructured,
			Metrics:   FinancialMetrics{"revenue": 5e9},
			Company:   CompanyInfo{"entityname": "Acme"},
			Narrative: "detailed narrative",
		},
	)
	empty := s.Score(nil, "", "general", "", nil)

	if rich.Score <= empty.Score {
		t.Errorf("rich input %v should outscore empty input %v", rich.Score, empty.Score)
	}
	if empty.Tier != TierLow {
		t.Errorf("empty input tier = %s, want low", empty.Tier)
	}
}

func TestConfidenceKeywordSaturation(t *testing.T) {
	keywords := make([]string, 25)
	for i := range keywords {
		keywords[i] = "kw"
	}
	if got := keywordMatchFactor([]FlagMatch{{MatchedKeywords: keywords}}); got != 1.0 {
		t.Errorf("saturated keyword factor = %v, want 1.0", got)
	}
	if got := keywordMatchFactor([]FlagMatch{{MatchedKeywords: []string{"a", "b"}}}); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("keyword factor for 2 hits = %v, want 0.2", got)
	}
	if got := keywordMatchFactor(nil); got != 0 {
		t.Errorf("keyword factor for no flags = %v, want 0", got)
	}
}

func TestCompanyScaleFactor(t *testing.T) {
	tests := []struct {
		hint string
		want float64
	}{
		{"Bharat Electronics Ltd", 1.0},
		{"Acme Limited", 1.0},
		{"Initech Corporation", 1.0},
		{"Some Proprietorship", 0.0},
		{"", 0.0},
	}
	for _, tt := range tests {
		if got := companyScaleFactor(tt.hint); got != tt.want {
			t.Errorf("companyScaleFactor(%q) = %v, want %v", tt.hint, got, tt.want)
		}
	}
}

func TestConfidenceCompletenessLadder(t *testing.T) {
	s := NewConfidenceScorer(loadTestTaxonomy(t))

	tests := []struct {
		name      string
		narrative string
		filing    *FilingData
		want      float64
	}{
		{"nothing", "", nil, 0.1},
		{"narrative only", "text", nil, 0.4},
		{"narrative and metrics", "text", &FilingData{Metrics: FinancialMetrics{"revenue": 1}}, 0.7},
		{
			"all three",
			"text",
			&FilingData{Metrics: FinancialMetrics{"revenue": 1}, Company: CompanyInfo{"name": "Acme"}},
			1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.completenessFactor(tt.narrative, tt.filing); got != tt.want {
				t.Errorf("completeness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfidenceTierThresholds(t *testing.T) {
	s := NewConfidenceScorer(loadTestTaxonomy(t))

	tests := []struct {
		score float64
		want  ConfidenceTier
	}{
		{0.85, TierHigh},
		{0.8, TierHigh},
		{0.7, TierMedium},
		{0.6, TierMedium},
		{0.3, TierLow},
	}
	for _, tt := range tests {
		if got := s.tier(tt.score); got != tt.want {
			t.Errorf("tier(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
