package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/auspex/internal/common"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := common.NewDefaultConfig().Analysis
	engine, err := NewEngine(&cfg, common.GetLogger())
	require.NoError(t, err)
	return engine
}

const resultsFiling = `<xbrl>
  <RevenueFromOperations>5000000000</RevenueFromOperations>
  <NetProfitAfterTax>750000000</NetProfitAfterTax>
</xbrl>`

func TestAnalyzeEarningsWithOrderWin(t *testing.T) {
	engine := newTestEngine(t)

	record := engine.Analyze(Input{
		Title:   "Quarterly Results - 300% increase in profits",
		Body:    "order worth ₹150 crore from MoD",
		Company: "Bharat Dynamics Ltd",
		Filing:  []byte(resultsFiling),
	})

	var flagNames []string
	for _, f := range record.Urgency.Flags {
		flagNames = append(flagNames, f.Name)
	}
	assert.Contains(t, flagNames, "earnings_spike")
	assert.Contains(t, flagNames, "order_win")

	assert.GreaterOrEqual(t, record.Urgency.FinancialImpact, 1.5e9)
	assert.GreaterOrEqual(t, record.Urgency.Score, 0.5, "material results should land in the upper half")
	assert.Equal(t, CategoryImportant, record.Category)
	assert.Equal(t, QualityStructured, record.FilingQuality)
	assert.Equal(t, "quarterly_results", record.AnnouncementType)
	assert.True(t, record.ShouldAlert)
}

func TestAnalyzeBoardMeetingIsRoutine(t *testing.T) {
	engine := newTestEngine(t)

	record := engine.Analyze(Input{Title: "Board Meeting Intimation"})

	assert.Greater(t, record.Urgency.RoutineReduction, 0.0)
	assert.Equal(t, CategoryRoutine, record.Category)
	assert.Equal(t, PriorityLow, record.Priority)
	assert.Equal(t, PriorityRoutine, record.FinePriority)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	engine := newTestEngine(t)

	record := engine.Analyze(Input{})

	assert.Equal(t, 0.0, record.Urgency.Score)
	assert.Equal(t, SentimentNeutral, record.Sentiment.Combined.Overall)
	assert.Equal(t, TierLow, record.Confidence.Tier)
	assert.LessOrEqual(t, record.Confidence.Score, 0.4)
	assert.Equal(t, QualityNone, record.FilingQuality)
	assert.NotEmpty(t, record.ID)
}

func TestAnalyzeRiskTerms(t *testing.T) {
	engine := newTestEngine(t)

	record := engine.Analyze(Input{
		Title: "Regulatory update",
		Body:  "penalty proceedings, ongoing litigation and an investigation by the regulator",
	})

	assert.Equal(t, RiskHigh, record.RiskLevel)
	assert.GreaterOrEqual(t, record.RiskScore, 0.6)
}

func TestAnalyzeMalformedFilingDegradesToText(t *testing.T) {
	engine := newTestEngine(t)

	record := engine.Analyze(Input{
		Title:  "Order win announcement",
		Body:   "contract worth ₹80 crore received",
		Filing: []byte("<broken"),
	})

	assert.Equal(t, QualityNone, record.FilingQuality)
	assert.Empty(t, record.Metrics)
	// Free-text analysis still runs.
	assert.Greater(t, record.Urgency.Score, 0.0)
	assert.GreaterOrEqual(t, record.Urgency.FinancialImpact, 8e8)
}

func TestAnalyzeScoreBounds(t *testing.T) {
	engine := newTestEngine(t)

	inputs := []Input{
		{},
		{Title: "Board Meeting Intimation"},
		{Title: "Quarterly Results", Body: "profit surge of ₹900 crore, strategic order win, government contract"},
		{Title: "Penalty", Body: "penalty fine litigation investigation fraud"},
	}
	for _, input := range inputs {
		record := engine.Analyze(input)
		assert.GreaterOrEqual(t, record.Urgency.Score, 0.0)
		assert.LessOrEqual(t, record.Urgency.Score, 1.0)
		assert.GreaterOrEqual(t, record.Confidence.Score, 0.0)
		assert.LessOrEqual(t, record.Confidence.Score, 1.0)
		assert.GreaterOrEqual(t, record.CompositeScore, 0.0)
		assert.LessOrEqual(t, record.CompositeScore, 1.0)
		assert.GreaterOrEqual(t, record.RiskScore, 0.0)
		assert.LessOrEqual(t, record.RiskScore, 1.0)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	engine := newTestEngine(t)

	input := Input{
		Title:   "Quarterly Results - 300% increase in profits",
		Body:    "order worth ₹150 crore from MoD",
		Company: "Bharat Dynamics Ltd",
		Filing:  []byte(resultsFiling),
	}

	first := engine.Analyze(input)
	second := engine.Analyze(input)

	// ID and timestamp are call metadata; everything that feeds scoring
	// must be byte-identical across calls.
	first.ID, second.ID = "", ""
	first.AnalyzedAt = second.AnalyzedAt
	assert.Equal(t, first, second)
}

func TestAnalyzeMonotonicity(t *testing.T) {
	engine := newTestEngine(t)

	base := Input{Title: "New project announcement", Body: "project worth ₹20 crore"}
	plain := engine.Analyze(base)

	boosted := engine.Analyze(Input{Title: base.Title, Body: base.Body + " strategic milestone"})
	assert.GreaterOrEqual(t, boosted.Urgency.Score, plain.Urgency.Score,
		"boost keyword must never decrease urgency")

	dampened := engine.Analyze(Input{Title: base.Title, Body: base.Body + " board meeting notice"})
	assert.LessOrEqual(t, dampened.Urgency.Score, plain.Urgency.Score,
		"routine keyword without exception must never increase urgency")
}

func TestFinancialImpactDeduplicatesRestatedFigures(t *testing.T) {
	engine := newTestEngine(t)

	// The filing states revenue structurally; the narrative restates the
	// same figure in crore. The restatement must not double the impact.
	record := engine.Analyze(Input{
		Title:  "Results",
		Body:   "revenue of ₹500 crore reported",
		Filing: []byte(`<xbrl><RevenueFromOperations>5000000000</RevenueFromOperations></xbrl>`),
	})

	assert.Equal(t, 5e9, record.Urgency.FinancialImpact)
}

func TestEngineInvalidTaxonomyPath(t *testing.T) {
	cfg := common.NewDefaultConfig().Analysis
	cfg.TaxonomyPath = "/nonexistent/taxonomy.yaml"
	_, err := NewEngine(&cfg, common.GetLogger())
	assert.Error(t, err)
}
