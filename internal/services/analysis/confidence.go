package analysis

import "strings"

// Matched-keyword count at which the keyword-match factor saturates.
const keywordSaturation = 10

var companyScaleTokens = []string{"ltd", "limited", "corporation"}

// ConfidenceScorer combines seven evidence factors into a bounded score
// with a coarse tier.
type ConfidenceScorer struct {
	taxonomy *Taxonomy
}

// NewConfidenceScorer returns a scorer using the taxonomy's factor weights
// and lookup tables.
func NewConfidenceScorer(taxonomy *Taxonomy) *ConfidenceScorer {
	return &ConfidenceScorer{taxonomy: taxonomy}
}

// Score computes the confidence behind an urgency judgment. Each factor is
// bounded to [0,1] independently, then combined as a fixed-weight linear sum.
func (s *ConfidenceScorer) Score(flags []FlagMatch, companyHint, announcementType, narrative string, filing *FilingData) ConfidenceResult {
	factors := map[string]float64{
		"keyword_match":      keywordMatchFactor(flags),
		"company_scale":      companyScaleFactor(companyHint),
		"announcement_type":  s.taxonomy.TypeScore(announcementType),
		"time_sensitivity":   s.taxonomy.TimeSensitivityDefault,
		"filing_quality":     s.filingQualityFactor(filing),
		"source_reliability": s.taxonomy.SourceReliabilityDefault,
		"data_completeness":  s.completenessFactor(narrative, filing),
	}

	w := s.taxonomy.ConfidenceWeights
	score := factors["keyword_match"]*w.KeywordMatch +
		factors["company_scale"]*w.CompanyScale +
		factors["announcement_type"]*w.AnnouncementType +
		factors["time_sensitivity"]*w.TimeSensitivity +
		factors["filing_quality"]*w.FilingQuality +
		factors["source_reliability"]*w.SourceReliability +
		factors["data_completeness"]*w.DataCompleteness
	score = clamp01(score)

	return ConfidenceResult{
		Score:   score,
		Factors: factors,
		Tier:    s.tier(score),
	}
}

func (s *ConfidenceScorer) tier(score float64) ConfidenceTier {
	switch {
	case score >= s.taxonomy.Thresholds.HighConfidence:
		return TierHigh
	case score >= s.taxonomy.Thresholds.MediumConfidence:
		return TierMedium
	default:
		return TierLow
	}
}

// keywordMatchFactor grows with the total matched-keyword count and
// saturates at 1.0.
func keywordMatchFactor(flags []FlagMatch) float64 {
	count := TotalMatchedKeywords(flags)
	if count >= keywordSaturation {
		return 1.0
	}
	return float64(count) / keywordSaturation
}

// companyScaleFactor is a coarse proxy for company scale in the absence of
// market-cap data: incorporated-entity tokens in the source hint.
func companyScaleFactor(companyHint string) float64 {
	lowered := strings.ToLower(companyHint)
	for _, token := range companyScaleTokens {
		if strings.Contains(lowered, token) {
			return 1.0
		}
	}
	return 0.0
}

func (s *ConfidenceScorer) filingQualityFactor(filing *FilingData) float64 {
	if filing == nil {
		return s.taxonomy.QualityScore(QualityNone)
	}
	return s.taxonomy.QualityScore(filing.Quality)
}

// completenessFactor counts how many of {narrative, structured metrics,
// company info} are present and maps the count through the ladder.
func (s *ConfidenceScorer) completenessFactor(narrative string, filing *FilingData) float64 {
	present := 0
	if narrative != "" {
		present++
	}
	if filing != nil {
		if len(filing.Metrics) > 0 {
			present++
		}
		if len(filing.Company) > 0 {
			present++
		}
	}
	return s.taxonomy.DataCompletenessLadder[present]
}
