package analysis

import "testing"

func TestSentimentAnalyze(t *testing.T) {
	a := NewSentimentAnalyzer(loadTestTaxonomy(t))

	tests := []struct {
		name string
		text string
		want SentimentLabel
	}{
		{
			name: "positive",
			text: "strong profit growth, excellent quarter with robust revenue surge",
			want: SentimentPositive,
		},
		{
			name: "negative",
			text: "loss widened, weak demand and disappointing margins raise concern",
			want: SentimentNegative,
		},
		{
			name: "neutral",
			text: "the company will announce and file the routine regulatory report",
			want: SentimentNeutral,
		},
		{
			name: "empty",
			text: "",
			want: SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			if got.Combined.Overall != tt.want {
				t.Errorf("Analyze(%q) overall = %s, want %s (score %v, counts %+v)",
					tt.text, got.Combined.Overall, tt.want, got.Combined.Score, got.KeywordCounts)
			}
		})
	}
}

func TestSentimentSignalBounds(t *testing.T) {
	a := NewSentimentAnalyzer(loadTestTaxonomy(t))

	for _, text := range []string{
		"profit win success strong",
		"loss penalty fine weak poor",
		"mixed: profit up but penalty risk looms",
		"",
	} {
		got := a.Analyze(text)
		if got.Polarity < -1 || got.Polarity > 1 {
			t.Errorf("polarity %v out of [-1,1] for %q", got.Polarity, text)
		}
		if got.Subjectivity < 0 || got.Subjectivity > 1 {
			t.Errorf("subjectivity %v out of [0,1] for %q", got.Subjectivity, text)
		}
		if got.Combined.Confidence < 0 {
			t.Errorf("confidence %v negative for %q", got.Combined.Confidence, text)
		}
	}
}

func TestSentimentConfidenceIsMagnitude(t *testing.T) {
	a := NewSentimentAnalyzer(loadTestTaxonomy(t))

	got := a.Analyze("loss penalty decline weak poor disappointing")
	if got.Combined.Score >= 0 {
		t.Fatalf("expected negative fused score, got %v", got.Combined.Score)
	}
	if got.Combined.Confidence != -got.Combined.Score {
		t.Errorf("confidence %v != |score| %v", got.Combined.Confidence, -got.Combined.Score)
	}
}

func TestSentimentKeywordCounts(t *testing.T) {
	a := NewSentimentAnalyzer(loadTestTaxonomy(t))

	got := a.Analyze("profit growth win; loss too; routine update filed")
	if got.KeywordCounts.Positive < 3 {
		t.Errorf("positive count = %d, want >= 3", got.KeywordCounts.Positive)
	}
	if got.KeywordCounts.Negative < 1 {
		t.Errorf("negative count = %d, want >= 1", got.KeywordCounts.Negative)
	}
	if got.KeywordCounts.Neutral < 2 {
		t.Errorf("neutral count = %d, want >= 2", got.KeywordCounts.Neutral)
	}
}
