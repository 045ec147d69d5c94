package analysis

import "testing"

func loadTestTaxonomy(t *testing.T) *Taxonomy {
	t.Helper()
	tax, err := LoadTaxonomy("")
	if err != nil {
		t.Fatalf("LoadTaxonomy failed: %v", err)
	}
	return tax
}

func TestLoadTaxonomyEmbedded(t *testing.T) {
	tax := loadTestTaxonomy(t)

	if len(tax.UrgencyCategories) != 6 {
		t.Errorf("urgency categories = %d, want 6", len(tax.UrgencyCategories))
	}
	if len(tax.RoutineFilters) != 5 {
		t.Errorf("routine filters = %d, want 5", len(tax.RoutineFilters))
	}
	if len(tax.HighValueBoosts) != 4 {
		t.Errorf("boost categories = %d, want 4", len(tax.HighValueBoosts))
	}

	weightSum := tax.ConfidenceWeights.KeywordMatch +
		tax.ConfidenceWeights.CompanyScale +
		tax.ConfidenceWeights.AnnouncementType +
		tax.ConfidenceWeights.TimeSensitivity +
		tax.ConfidenceWeights.FilingQuality +
		tax.ConfidenceWeights.SourceReliability +
		tax.ConfidenceWeights.DataCompleteness
	if weightSum < 0.999 || weightSum > 1.001 {
		t.Errorf("confidence weights sum = %v, want 1.0", weightSum)
	}
}

func TestLoadTaxonomyMissingFile(t *testing.T) {
	if _, err := LoadTaxonomy("/nonexistent/taxonomy.yaml"); err == nil {
		t.Error("expected error for missing taxonomy file")
	}
}

func TestTypeScoreFallback(t *testing.T) {
	tax := loadTestTaxonomy(t)

	if got := tax.TypeScore("quarterly_results"); got != 0.9 {
		t.Errorf("TypeScore(quarterly_results) = %v, want 0.9", got)
	}
	if got := tax.TypeScore("something_unknown"); got != tax.AnnouncementTypeScores["general"] {
		t.Errorf("TypeScore fallback = %v, want general score %v", got, tax.AnnouncementTypeScores["general"])
	}
}

func TestQualityScore(t *testing.T) {
	tax := loadTestTaxonomy(t)

	tests := []struct {
		quality FilingQuality
		want    float64
	}{
		{QualityStructured, 1.0},
		{QualityUnstructured, 0.6},
		{QualityPartial, 0.4},
		{QualityNone, 0.1},
		{FilingQuality("bogus"), 0.1},
	}
	for _, tt := range tests {
		if got := tax.QualityScore(tt.quality); got != tt.want {
			t.Errorf("QualityScore(%s) = %v, want %v", tt.quality, got, tt.want)
		}
	}
}
