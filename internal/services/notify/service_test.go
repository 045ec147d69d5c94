package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/services/analysis"
)

func testRecord(urgency float64) *analysis.AnalysisRecord {
	return &analysis.AnalysisRecord{
		Company: "Acme Industries Ltd",
		Title:   "Q1 FY26 results: net profit up 45% to Rs 500 crore",
		Urgency: analysis.UrgencyResult{
			Score:           urgency,
			FinancialImpact: 5e9,
			Flags: []analysis.FlagContribution{
				{FlagMatch: analysis.FlagMatch{Name: "earnings", Weight: 0.8, MatchedKeywords: []string{"profit", "results"}}, Contribution: 0.16},
				{FlagMatch: analysis.FlagMatch{Name: "financial_results", Weight: 0.7, MatchedKeywords: []string{"quarterly"}}, Contribution: 0.07},
				{FlagMatch: analysis.FlagMatch{Name: "breaking_news", Weight: 0.6, MatchedKeywords: []string{"announcement"}}, Contribution: 0.06},
			},
		},
		Confidence: analysis.ConfidenceResult{Score: 0.72, Tier: analysis.TierMedium},
		Sentiment: analysis.SentimentResult{
			Combined: analysis.CombinedSentiment{Score: 0.4, Overall: analysis.SentimentPositive},
		},
		Metrics:          analysis.FinancialMetrics{"revenue": 5e9, "profit": 7.5e8},
		AnnouncementType: "quarterly_results",
		CompositeScore:   0.75,
		Priority:         analysis.PriorityHigh,
		FinePriority:     analysis.PriorityHigh,
		Category:         analysis.CategoryImportant,
		RiskScore:        0.2,
		RiskLevel:        analysis.RiskLow,
		ShouldAlert:      true,
	}
}

func newTestNotifier(cfg *common.EmailConfig) *Service {
	return NewService(cfg, nil, arbor.NewLogger())
}

func TestSubjectUrgencyIndicator(t *testing.T) {
	notifier := newTestNotifier(&common.EmailConfig{MaxSubjectLength: 200})

	tests := []struct {
		urgency float64
		want    string
	}{
		{0.9, "URGENT"},
		{0.7, "HIGH"},
		{0.5, "MEDIUM"},
		{0.2, "INFO"},
	}

	for _, tt := range tests {
		subject := notifier.Subject(testRecord(tt.urgency))
		if !strings.HasPrefix(subject, tt.want+":") {
			t.Errorf("urgency %.1f: subject = %q, want prefix %q", tt.urgency, subject, tt.want)
		}
	}
}

func TestSubjectIncludesAtMostTwoFlags(t *testing.T) {
	notifier := newTestNotifier(&common.EmailConfig{MaxSubjectLength: 200})

	subject := notifier.Subject(testRecord(0.9))
	assert.Contains(t, subject, "Acme Industries Ltd")
	assert.Contains(t, subject, "[earnings, financial_results]")
	assert.NotContains(t, subject, "breaking_news")
}

func TestSubjectTruncation(t *testing.T) {
	notifier := newTestNotifier(&common.EmailConfig{MaxSubjectLength: 40})

	subject := notifier.Subject(testRecord(0.9))
	assert.LessOrEqual(t, len(subject), 40)
	assert.True(t, strings.HasSuffix(subject, "..."), "truncated subject should end with ellipsis: %q", subject)
}

func TestTextBodySections(t *testing.T) {
	body := textBody(testRecord(0.85), "Acme posted a strong quarter.")

	for _, want := range []string{
		"Acme Industries Ltd",
		"Urgency: 0.85",
		"Confidence: 0.72 (medium)",
		"earnings (+0.16): profit, results",
		"Financial Impact: 5000000000",
		"profit: 750000000.00",
		"Risk: low",
		"Sentiment: positive",
		"Acme posted a strong quarter.",
	} {
		assert.Contains(t, body, want)
	}
}

func TestHTMLBodyEscapesContent(t *testing.T) {
	record := testRecord(0.85)
	record.Title = `<script>alert("x")</script> results`

	html := htmlBody(record, "")
	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Acme Industries Ltd")
	assert.Contains(t, html, "quarterly_results")
}

func TestHTMLBodyMetricsSorted(t *testing.T) {
	html := htmlBody(testRecord(0.85), "")

	profitIdx := strings.Index(html, "<td>profit</td>")
	revenueIdx := strings.Index(html, "<td>revenue</td>")
	assert.Greater(t, profitIdx, 0)
	assert.Greater(t, revenueIdx, profitIdx, "metrics should render in sorted order")
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  common.EmailConfig
		want bool
	}{
		{"fully configured", common.EmailConfig{Enabled: true, SMTPHost: "smtp.test", From: "a@b.c", Recipients: []string{"x@y.z"}}, true},
		{"disabled", common.EmailConfig{SMTPHost: "smtp.test", From: "a@b.c", Recipients: []string{"x@y.z"}}, false},
		{"no host", common.EmailConfig{Enabled: true, From: "a@b.c", Recipients: []string{"x@y.z"}}, false},
		{"no recipients", common.EmailConfig{Enabled: true, SMTPHost: "smtp.test", From: "a@b.c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newTestNotifier(&tt.cfg).Enabled())
		})
	}
}

func TestSendAlertRequiresConfiguration(t *testing.T) {
	notifier := newTestNotifier(&common.EmailConfig{})

	err := notifier.SendAlert(context.Background(), testRecord(0.9), "")
	assert.Error(t, err)
}

func TestSendDailyDigestSkipsWhenIdle(t *testing.T) {
	// Disabled notifier: nothing to send, not an error
	notifier := newTestNotifier(&common.EmailConfig{})
	assert.NoError(t, notifier.SendDailyDigest(context.Background(), []*analysis.AnalysisRecord{testRecord(0.9)}, time.Now()))

	// Enabled but nothing analyzed: no empty digest
	notifier = newTestNotifier(&common.EmailConfig{Enabled: true, SMTPHost: "smtp.test", From: "a@b.c", Recipients: []string{"x@y.z"}})
	assert.NoError(t, notifier.SendDailyDigest(context.Background(), nil, time.Now()))
}

func TestBuildDigestMarkdown(t *testing.T) {
	low := testRecord(0.3)
	low.FinePriority = analysis.PriorityRoutine
	low.Company = "Beta | Corp"
	records := []*analysis.AnalysisRecord{testRecord(0.9), low}

	markdown := BuildDigestMarkdown(records, time.Date(2025, 8, 29, 18, 0, 0, 0, time.UTC))

	assert.Contains(t, markdown, "# Announcement Digest - 2025-08-29")
	assert.Contains(t, markdown, "2 announcements analyzed")
	assert.Contains(t, markdown, "## High Priority")
	assert.Contains(t, markdown, "| Acme Industries Ltd | quarterly_results |")
	assert.Contains(t, markdown, "## Other Announcements")
	assert.Contains(t, markdown, `Beta \| Corp`)
}
