package analysis

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
)

// Engine runs the full analysis pipeline over one announcement: extraction,
// normalization, matching, scoring, sentiment, and classification. It holds
// no cross-call state beyond the read-only taxonomy, so concurrent Analyze
// calls are safe.
type Engine struct {
	cfg        *common.AnalysisConfig
	taxonomy   *Taxonomy
	extractor  *Extractor
	matcher    *Matcher
	urgency    *UrgencyScorer
	confidence *ConfidenceScorer
	sentiment  *SentimentAnalyzer
	classifier *Classifier
	log        arbor.ILogger
}

// NewEngine loads the taxonomy (embedded default, or cfg.TaxonomyPath when
// set) and constructs the pipeline. Threshold overrides from configuration
// replace the taxonomy defaults.
func NewEngine(cfg *common.AnalysisConfig, logger arbor.ILogger) (*Engine, error) {
	taxonomy, err := LoadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	applyThresholdOverrides(taxonomy, cfg)

	return &Engine{
		cfg:        cfg,
		taxonomy:   taxonomy,
		extractor:  NewExtractor(taxonomy),
		matcher:    NewMatcher(taxonomy),
		urgency:    NewUrgencyScorer(taxonomy),
		confidence: NewConfidenceScorer(taxonomy),
		sentiment:  NewSentimentAnalyzer(taxonomy),
		classifier: NewClassifier(taxonomy),
		log:        logger,
	}, nil
}

func applyThresholdOverrides(taxonomy *Taxonomy, cfg *common.AnalysisConfig) {
	if cfg.UrgencyHigh > 0 {
		taxonomy.Thresholds.HighUrgency = cfg.UrgencyHigh
	}
	if cfg.UrgencyMedium > 0 {
		taxonomy.Thresholds.MediumUrgency = cfg.UrgencyMedium
	}
	if cfg.UrgencyLow > 0 {
		taxonomy.Thresholds.LowUrgency = cfg.UrgencyLow
	}
	if cfg.ConfidenceHigh > 0 {
		taxonomy.Thresholds.HighConfidence = cfg.ConfidenceHigh
	}
	if cfg.ConfidenceMedium > 0 {
		taxonomy.Thresholds.MediumConfidence = cfg.ConfidenceMedium
	}
}

// Taxonomy exposes the loaded rule set for status reporting.
func (e *Engine) Taxonomy() *Taxonomy {
	return e.taxonomy
}

// Analyze produces one complete AnalysisRecord. It never fails: malformed
// filings degrade to free text, and an unexpected panic anywhere in the
// pipeline yields the fully-defaulted record.
func (e *Engine) Analyze(input Input) (record AnalysisRecord) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().
				Str("title", input.Title).
				Str("panic", toString(r)).
				Msg("Analysis pipeline panicked, returning defaulted record")
			record = e.defaultedRecord(input)
		}
	}()

	record = AnalysisRecord{
		ID:         common.NewRecordID(),
		AnalyzedAt: time.Now().UTC(),
		Company:    input.Company,
		Title:      input.Title,
	}

	// Structured filing extraction. Extraction failure is local: the
	// analysis continues over whatever free text the caller supplied.
	filing, err := e.extractor.Extract(input.Filing)
	if err != nil {
		e.log.Warn().Err(err).Str("title", input.Title).Msg("Filing extraction failed, continuing with free text")
	}
	record.Metrics = filing.Metrics
	record.Events = filing.Events
	record.FilingQuality = filing.Quality

	narrative := input.Body
	if filing.Narrative != "" {
		narrative = narrative + " " + filing.Narrative
	}

	// Amounts and percentages from both the free text and the filing.
	textAmounts := NormalizeAmounts(input.Title + " " + input.Body)
	record.Amounts = append(textAmounts, filing.Amounts...)
	record.Percentages = append(NormalizePercentages(input.Title+" "+input.Body), filing.Percentages...)

	combined := CombineText(input.Title, narrative, filing.Metrics)

	flags := e.matcher.Match(combined)
	impact := e.financialImpact(filing.Metrics, record.Amounts)

	record.Urgency = e.urgency.Score(combined, flags, impact)
	record.AnnouncementType = e.classifier.ClassifyType(combined)
	record.Confidence = e.confidence.Score(flags, input.Company, record.AnnouncementType, narrative, filing)
	record.Sentiment = e.sentiment.Analyze(input.Title + " " + narrative)

	record.CompositeScore = e.classifier.Composite(record.Urgency.Score, record.Confidence.Score)
	record.Category = e.classifier.Categorize(input.Title + " " + narrative)
	record.Priority = e.classifier.CoarsePriority(record.CompositeScore)
	record.FinePriority = e.classifier.FinePriority(record.AnnouncementType, record.Category, record.CompositeScore, impact)
	record.RiskScore = e.classifier.RiskScore(input.Title + " " + narrative)
	record.RiskLevel = e.classifier.RiskLevelFor(record.RiskScore)

	// Alerting policy is "always true"; suppression thresholds are applied
	// by the monitor, which has the configuration context.
	record.ShouldAlert = true

	return record
}

// financialImpact sums structured metric values plus text-extracted amounts
// that do not duplicate a structured figure. A text amount within the
// configured relative tolerance of any structured value is treated as the
// same figure restated in prose and skipped.
func (e *Engine) financialImpact(metrics FinancialMetrics, amounts []ExtractedAmount) float64 {
	impact := 0.0
	var structured []float64
	for _, v := range metrics {
		if v > 0 {
			impact += v
			structured = append(structured, v)
		}
	}

	tolerance := e.cfg.DedupTolerance
	for _, a := range amounts {
		if a.Value <= 0 {
			continue
		}
		if duplicatesStructured(a.Value, structured, tolerance) {
			continue
		}
		impact += a.Value
	}
	return impact
}

func duplicatesStructured(value float64, structured []float64, tolerance float64) bool {
	for _, s := range structured {
		diff := value - s
		if diff < 0 {
			diff = -diff
		}
		if diff <= s*tolerance {
			return true
		}
	}
	return false
}

// defaultedRecord is the documented fallback when the pipeline faults:
// structurally valid, all scores zeroed, sentiment neutral, confidence low.
func (e *Engine) defaultedRecord(input Input) AnalysisRecord {
	return AnalysisRecord{
		ID:         common.NewRecordID(),
		AnalyzedAt: time.Now().UTC(),
		Company:    input.Company,
		Title:      input.Title,
		Urgency:    UrgencyResult{},
		Confidence: ConfidenceResult{Tier: TierLow, Factors: map[string]float64{}},
		Sentiment: SentimentResult{
			Combined: CombinedSentiment{Overall: SentimentNeutral},
		},
		FilingQuality: QualityNone,
		AnnouncementType: "general",
		Priority:      PriorityLow,
		FinePriority:  PriorityLow,
		Category:      CategoryImportant,
		RiskLevel:     RiskLow,
		ShouldAlert:   true,
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown panic"
}
