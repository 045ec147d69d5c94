// Package analysis implements the announcement analysis and classification
// engine: financial value normalization, structured filing extraction,
// keyword/flag matching, urgency and confidence scoring, sentiment fusion,
// and the final priority/category classification. Pure computation, no I/O.
package analysis

import "time"

// Input is one announcement as handed to the engine. Immutable for the
// duration of the analysis call.
type Input struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Company string `json:"company,omitempty"` // Source hint, e.g. presumed company name
	Filing  []byte `json:"-"`                 // Optional structured filing payload (XBRL/XML)
}

// Currency tags an extracted monetary value.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// ExtractedAmount is one monetary value found in text, already converted to
// base currency units (unit multipliers applied exactly once at creation).
type ExtractedAmount struct {
	Value      float64  `json:"value"`
	Currency   Currency `json:"currency"`
	RawUnit    string   `json:"raw_unit,omitempty"` // "crore", "lakh", "million", ...
	SourceSpan string   `json:"source_span"`        // The matched text
}

// PercentageKind classifies how a percentage was phrased.
type PercentageKind string

const (
	PercentStandard PercentageKind = "standard"
	PercentIncrease PercentageKind = "increase"
	PercentDecrease PercentageKind = "decrease"
	PercentGrowth   PercentageKind = "growth"
	PercentDecline  PercentageKind = "decline"
)

// ExtractedPercentage is one percentage value found in text.
type ExtractedPercentage struct {
	Value float64        `json:"value"`
	Kind  PercentageKind `json:"kind"`
}

// FinancialMetrics maps canonical metric names (revenue, profit, assets, ...)
// to a single normalized numeric value. Last extraction wins when a filing
// repeats a metric.
type FinancialMetrics map[string]float64

// BusinessEvent is a declared event found in a structured filing.
type BusinessEvent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanyInfo holds identifier-style fields found in a structured filing.
type CompanyInfo map[string]string

// DateFact is a dated value found in a filing, kept with its raw span.
type DateFact struct {
	Raw    string    `json:"raw"`
	Parsed time.Time `json:"parsed"`
}

// FilingQuality grades how much structure the extractor recovered.
type FilingQuality string

const (
	QualityStructured   FilingQuality = "structured"   // Taxonomy-aware metric lookup succeeded
	QualityPartial      FilingQuality = "partial"      // Company/date facts only
	QualityUnstructured FilingQuality = "unstructured" // Pattern extraction over raw text only
	QualityNone         FilingQuality = "none"         // Nothing usable (or no payload)
)

// FilingData is everything recovered from one structured filing payload.
type FilingData struct {
	Metrics     FinancialMetrics      `json:"metrics,omitempty"`
	Amounts     []ExtractedAmount     `json:"amounts,omitempty"`
	Percentages []ExtractedPercentage `json:"percentages,omitempty"`
	Events      []BusinessEvent       `json:"events,omitempty"`
	Company     CompanyInfo           `json:"company,omitempty"`
	Dates       []DateFact            `json:"dates,omitempty"`
	Narrative   string                `json:"narrative,omitempty"`
	Quality     FilingQuality         `json:"quality"`
}

// FlagMatch is one taxonomy category triggered by keyword presence.
type FlagMatch struct {
	Name               string   `json:"name"`
	Weight             float64  `json:"weight"`
	MatchedKeywords    []string `json:"matched_keywords"`
	FinancialThreshold float64  `json:"financial_threshold"`
}

// FlagContribution is a flag match plus its contribution to the urgency score.
type FlagContribution struct {
	FlagMatch
	Contribution float64 `json:"contribution"`
}

// UrgencyResult is the bounded urgency score with its audit trail.
type UrgencyResult struct {
	Score               float64            `json:"score"`
	Flags               []FlagContribution `json:"flags,omitempty"`
	FinancialImpact     float64            `json:"financial_impact"`
	RoutineReduction    float64            `json:"routine_reduction"`
	HighValueBoost      float64            `json:"high_value_boost"`
	ContributingFactors []string           `json:"contributing_factors,omitempty"`
}

// ConfidenceTier is the coarse confidence band.
type ConfidenceTier string

const (
	TierLow    ConfidenceTier = "low"
	TierMedium ConfidenceTier = "medium"
	TierHigh   ConfidenceTier = "high"
)

// ConfidenceResult is the bounded confidence score with per-factor detail.
type ConfidenceResult struct {
	Score   float64            `json:"score"`
	Factors map[string]float64 `json:"factors"`
	Tier    ConfidenceTier     `json:"tier"`
}

// SentimentLabel is a categorical sentiment.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// KeywordCounts tallies sentiment keyword occurrences.
type KeywordCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// CombinedSentiment fuses the lexical and keyword-count signals.
type CombinedSentiment struct {
	Score      float64        `json:"score"`
	Overall    SentimentLabel `json:"overall"`
	Confidence float64        `json:"confidence"`
}

// SentimentResult carries both raw signals and the fused verdict.
type SentimentResult struct {
	Polarity      float64           `json:"polarity"`     // [-1, 1]
	Subjectivity  float64           `json:"subjectivity"` // [0, 1]
	KeywordCounts KeywordCounts     `json:"keyword_counts"`
	Combined      CombinedSentiment `json:"combined"`
}

// Priority is the alert priority tier.
type Priority string

const (
	PriorityLow              Priority = "low"
	PriorityMedium           Priority = "medium"
	PriorityHigh             Priority = "high"
	PriorityCritical         Priority = "critical"
	PriorityRoutine          Priority = "routine"
	PriorityRoutineImportant Priority = "routine_important"
)

// Category is the coarse announcement category.
type Category string

const (
	CategoryImportant      Category = "important"
	CategoryRoutine        Category = "routine"
	CategoryTechnical      Category = "technical"
	CategoryAdministrative Category = "administrative"
)

// RiskLevel buckets the risk-term score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AnalysisRecord is the terminal artifact of one analysis call. Immutable
// once produced; ID and AnalyzedAt are metadata only and never feed scoring.
type AnalysisRecord struct {
	ID         string    `json:"id"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	Company string `json:"company,omitempty"`
	Title   string `json:"title"`

	Urgency    UrgencyResult    `json:"urgency"`
	Confidence ConfidenceResult `json:"confidence"`
	Sentiment  SentimentResult  `json:"sentiment"`

	Metrics       FinancialMetrics      `json:"metrics,omitempty"`
	Amounts       []ExtractedAmount     `json:"amounts,omitempty"`
	Percentages   []ExtractedPercentage `json:"percentages,omitempty"`
	Events        []BusinessEvent       `json:"events,omitempty"`
	FilingQuality FilingQuality         `json:"filing_quality"`

	AnnouncementType string   `json:"announcement_type"`
	CompositeScore   float64  `json:"composite_score"`
	Priority         Priority `json:"priority"`      // Coarse: composite-score bands
	FinePriority     Priority `json:"fine_priority"` // Finer: type tables + impact bands
	Category         Category `json:"category"`
	RiskScore        float64  `json:"risk_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	ShouldAlert      bool      `json:"should_alert"`
}
