package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/auspex/internal/services/analysis"
)

// BuildDigestMarkdown renders a digest report of analyzed announcements as
// markdown, grouped by priority with high-priority records tabulated first.
func BuildDigestMarkdown(records []*analysis.AnalysisRecord, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Announcement Digest - %s\n\n", at.Format("2006-01-02"))
	fmt.Fprintf(&b, "%d announcements analyzed.\n\n", len(records))

	high := filterByPriority(records, analysis.PriorityCritical, analysis.PriorityHigh)
	if len(high) > 0 {
		b.WriteString("## High Priority\n\n")
		b.WriteString("| Company | Type | Urgency | Confidence | Headline |\n")
		b.WriteString("|---------|------|---------|------------|----------|\n")
		for _, r := range high {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %.2f | %s |\n",
				cell(r.Company), r.AnnouncementType, r.Urgency.Score, r.Confidence.Score, cell(r.Title))
		}
		b.WriteString("\n")
	}

	rest := filterByPriority(records, analysis.PriorityMedium, analysis.PriorityLow,
		analysis.PriorityRoutine, analysis.PriorityRoutineImportant)
	if len(rest) > 0 {
		b.WriteString("## Other Announcements\n\n")
		for _, r := range rest {
			fmt.Fprintf(&b, "- **%s** (%s, %s): %s\n", r.Company, r.FinePriority, r.Category, r.Title)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func filterByPriority(records []*analysis.AnalysisRecord, priorities ...analysis.Priority) []*analysis.AnalysisRecord {
	var out []*analysis.AnalysisRecord
	for _, r := range records {
		for _, p := range priorities {
			if r.FinePriority == p {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// cell escapes pipe characters so row text cannot break the table layout
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
