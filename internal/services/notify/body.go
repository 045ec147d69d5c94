package notify

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/ternarybob/auspex/internal/services/analysis"
)

// textBody renders the plain-text alternative of an alert email
func textBody(record *analysis.AnalysisRecord, summary string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "BSE Announcement Alert\n\n")
	fmt.Fprintf(&b, "Company: %s\n", record.Company)
	fmt.Fprintf(&b, "Title: %s\n\n", record.Title)

	if summary != "" {
		fmt.Fprintf(&b, "Summary:\n%s\n\n", summary)
	}

	fmt.Fprintf(&b, "Scores:\n")
	fmt.Fprintf(&b, "- Urgency: %.2f\n", record.Urgency.Score)
	fmt.Fprintf(&b, "- Confidence: %.2f (%s)\n", record.Confidence.Score, record.Confidence.Tier)
	fmt.Fprintf(&b, "- Composite: %.2f\n", record.CompositeScore)
	fmt.Fprintf(&b, "- Priority: %s (%s)\n", record.Priority, record.FinePriority)
	fmt.Fprintf(&b, "- Category: %s\n", record.Category)
	fmt.Fprintf(&b, "- Type: %s\n\n", record.AnnouncementType)

	if len(record.Urgency.Flags) > 0 {
		fmt.Fprintf(&b, "Flags:\n")
		for _, flag := range record.Urgency.Flags {
			fmt.Fprintf(&b, "- %s (+%.2f): %s\n", flag.Name, flag.Contribution, strings.Join(flag.MatchedKeywords, ", "))
		}
		b.WriteString("\n")
	}

	if record.Urgency.FinancialImpact > 0 {
		fmt.Fprintf(&b, "Financial Impact: %.0f\n\n", record.Urgency.FinancialImpact)
	}

	if len(record.Metrics) > 0 {
		fmt.Fprintf(&b, "Metrics:\n")
		for _, name := range sortedMetricNames(record.Metrics) {
			fmt.Fprintf(&b, "- %s: %.2f\n", name, record.Metrics[name])
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Risk: %s (%.2f)\n", record.RiskLevel, record.RiskScore)
	fmt.Fprintf(&b, "Sentiment: %s (%.2f)\n", record.Sentiment.Combined.Overall, record.Sentiment.Combined.Score)

	return b.String()
}

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; color: #222; }
  .header { background: #1a3c6e; color: white; padding: 12px 16px; }
  .score-box { display: inline-block; background: #f0f4f8; border: 1px solid #ccd6e0; padding: 6px 10px; margin: 4px; border-radius: 4px; }
  .flag { display: inline-block; background: #28a745; color: white; padding: 3px 8px; margin: 2px; border-radius: 3px; font-size: 90%; }
  .section { margin: 12px 0; }
  .risk-high { color: #c0392b; font-weight: bold; }
  .risk-medium { color: #d68910; }
  table { border-collapse: collapse; }
  td, th { border: 1px solid #ccd6e0; padding: 4px 8px; }
</style>
</head>
<body>
<div class="header">
  <h2>{{.Record.Company}}</h2>
  <p>{{.Record.Title}}</p>
</div>

{{if .Summary}}<div class="section"><h3>Summary</h3><p>{{.Summary}}</p></div>{{end}}

<div class="section">
  <span class="score-box">Urgency: {{printf "%.2f" .Record.Urgency.Score}}</span>
  <span class="score-box">Confidence: {{printf "%.2f" .Record.Confidence.Score}} ({{.Record.Confidence.Tier}})</span>
  <span class="score-box">Composite: {{printf "%.2f" .Record.CompositeScore}}</span>
  <span class="score-box">Priority: {{.Record.Priority}}</span>
  <span class="score-box">Category: {{.Record.Category}}</span>
  <span class="score-box">Type: {{.Record.AnnouncementType}}</span>
</div>

{{if .Record.Urgency.Flags}}
<div class="section"><h3>Flags</h3>
{{range .Record.Urgency.Flags}}<span class="flag">{{.Name}}</span>{{end}}
<ul>
{{range .Record.Urgency.Flags}}<li>{{.Name}} (+{{printf "%.2f" .Contribution}}): {{range $i, $k := .MatchedKeywords}}{{if $i}}, {{end}}{{$k}}{{end}}</li>{{end}}
</ul>
</div>
{{end}}

{{if .Metrics}}
<div class="section"><h3>Metrics</h3>
<table><tr><th>Metric</th><th>Value</th></tr>
{{range .Metrics}}<tr><td>{{.Name}}</td><td>{{printf "%.2f" .Value}}</td></tr>{{end}}
</table>
</div>
{{end}}

<div class="section">
  <p class="risk-{{.Record.RiskLevel}}">Risk: {{.Record.RiskLevel}} ({{printf "%.2f" .Record.RiskScore}})</p>
  <p>Sentiment: {{.Record.Sentiment.Combined.Overall}} ({{printf "%.2f" .Record.Sentiment.Combined.Score}})</p>
</div>
</body>
</html>`))

type metricRow struct {
	Name  string
	Value float64
}

type alertData struct {
	Record  *analysis.AnalysisRecord
	Summary string
	Metrics []metricRow
}

// htmlBody renders the HTML alternative of an alert email
func htmlBody(record *analysis.AnalysisRecord, summary string) string {
	data := alertData{Record: record, Summary: summary}
	for _, name := range sortedMetricNames(record.Metrics) {
		data.Metrics = append(data.Metrics, metricRow{Name: name, Value: record.Metrics[name]})
	}

	var b strings.Builder
	if err := alertTemplate.Execute(&b, data); err != nil {
		// Fall back to the plain-text body wrapped in <pre>
		return "<pre>" + template.HTMLEscapeString(textBody(record, summary)) + "</pre>"
	}
	return b.String()
}

func sortedMetricNames(metrics analysis.FinancialMetrics) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
