package analysis

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// UrgencyCategory is one weighted flag category of the matcher taxonomy.
type UrgencyCategory struct {
	Name               string   `yaml:"name"`
	Label              string   `yaml:"label"`
	Weight             float64  `yaml:"weight"`
	FinancialThreshold float64  `yaml:"financial_threshold"`
	Keywords           []string `yaml:"keywords"`
}

// RoutineFilter dampens urgency for administratively routine announcements
// unless an exception keyword is also present.
type RoutineFilter struct {
	Name       string   `yaml:"name"`
	Reduction  float64  `yaml:"reduction"`
	Keywords   []string `yaml:"keywords"`
	Exceptions []string `yaml:"exceptions"`
}

// BoostCategory adds urgency when strategic or large-magnitude signals are
// present and the financial-impact threshold is met.
type BoostCategory struct {
	Name      string   `yaml:"name"`
	Boost     float64  `yaml:"boost"`
	Threshold float64  `yaml:"threshold"`
	Keywords  []string `yaml:"keywords"`
}

// ConfidenceWeights are the linear-combination weights of the seven
// confidence factors. They should sum to 1.0 but this is not enforced;
// the combined score is clamped regardless.
type ConfidenceWeights struct {
	KeywordMatch      float64 `yaml:"keyword_match"`
	CompanyScale      float64 `yaml:"company_scale"`
	AnnouncementType  float64 `yaml:"announcement_type"`
	TimeSensitivity   float64 `yaml:"time_sensitivity"`
	FilingQuality     float64 `yaml:"filing_quality"`
	SourceReliability float64 `yaml:"source_reliability"`
	DataCompleteness  float64 `yaml:"data_completeness"`
}

// Thresholds are the score cut-offs for tiering urgency and confidence.
type Thresholds struct {
	HighUrgency      float64 `yaml:"high_urgency"`
	MediumUrgency    float64 `yaml:"medium_urgency"`
	LowUrgency       float64 `yaml:"low_urgency"`
	HighConfidence   float64 `yaml:"high_confidence"`
	MediumConfidence float64 `yaml:"medium_confidence"`
	LowConfidence    float64 `yaml:"low_confidence"`
}

// SentimentLexicon holds the three keyword lists of the keyword-count signal.
type SentimentLexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	Neutral  []string `yaml:"neutral"`
}

// RiskTerms holds the three-tier risk keyword lists.
type RiskTerms struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
	Low    []string `yaml:"low"`
}

// TypePriorities lists announcement types per priority band.
type TypePriorities struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
	Low    []string `yaml:"low"`
}

// Taxonomy is the full static rule set driving the analysis engine. Loaded
// once, never mutated at runtime.
type Taxonomy struct {
	UrgencyCategories []UrgencyCategory `yaml:"urgency_categories"`
	RoutineFilters    []RoutineFilter   `yaml:"routine_filters"`
	HighValueBoosts   []BoostCategory   `yaml:"high_value_boosts"`

	ConfidenceWeights      ConfidenceWeights  `yaml:"confidence_weights"`
	AnnouncementTypeScores map[string]float64 `yaml:"announcement_type_scores"`
	TypePriorities         TypePriorities     `yaml:"type_priorities"`

	FilingQualityScores    map[string]float64 `yaml:"filing_quality_scores"`
	DataCompletenessLadder []float64          `yaml:"data_completeness_ladder"`

	TimeSensitivityDefault   float64 `yaml:"time_sensitivity_default"`
	SourceReliabilityDefault float64 `yaml:"source_reliability_default"`

	Thresholds Thresholds `yaml:"thresholds"`

	Sentiment SentimentLexicon `yaml:"sentiment"`
	RiskTerms RiskTerms        `yaml:"risk_terms"`

	CategoryKeywords map[string][]string `yaml:"category_keywords"`

	MetricNames []string `yaml:"metric_names"`
}

// LoadTaxonomy returns the taxonomy from the given YAML file, or the
// embedded default when path is empty.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data := defaultTaxonomy
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read taxonomy file: %w", err)
		}
		data = b
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := tax.validate(); err != nil {
		return nil, err
	}
	return &tax, nil
}

func (t *Taxonomy) validate() error {
	if len(t.UrgencyCategories) == 0 {
		return fmt.Errorf("taxonomy has no urgency categories")
	}
	for _, c := range t.UrgencyCategories {
		if c.Weight <= 0 || c.Weight > 1 {
			return fmt.Errorf("urgency category %q: weight %v out of (0,1]", c.Name, c.Weight)
		}
		if len(c.Keywords) == 0 {
			return fmt.Errorf("urgency category %q has no keywords", c.Name)
		}
	}
	for _, f := range t.RoutineFilters {
		if f.Reduction < 0 || f.Reduction > 0.9 {
			return fmt.Errorf("routine filter %q: reduction %v out of [0,0.9]", f.Name, f.Reduction)
		}
	}
	for _, b := range t.HighValueBoosts {
		if b.Boost < 0 {
			return fmt.Errorf("boost category %q: negative boost %v", b.Name, b.Boost)
		}
	}
	if len(t.DataCompletenessLadder) != 4 {
		return fmt.Errorf("data completeness ladder needs 4 entries, got %d", len(t.DataCompletenessLadder))
	}
	if len(t.MetricNames) == 0 {
		return fmt.Errorf("taxonomy has no metric names")
	}
	return nil
}

// TypeScore returns the confidence prior for an announcement type, falling
// back to the "general" entry.
func (t *Taxonomy) TypeScore(announcementType string) float64 {
	if s, ok := t.AnnouncementTypeScores[announcementType]; ok {
		return s
	}
	return t.AnnouncementTypeScores["general"]
}

// QualityScore maps a filing quality grade to its confidence factor value.
func (t *Taxonomy) QualityScore(q FilingQuality) float64 {
	if s, ok := t.FilingQualityScores[string(q)]; ok {
		return s
	}
	return t.FilingQualityScores[string(QualityNone)]
}
