package interfaces

import (
	"context"
	"regexp"
	"strings"
)

// Announcement is one corporate disclosure as collected from a source,
// before any analysis. Filing and attachment content are fetched lazily
// by the monitor, not by the source.
type Announcement struct {
	ID            string `json:"id"`
	Company       string `json:"company"`
	Title         string `json:"title"`
	Body          string `json:"body,omitempty"`
	Category      string `json:"category,omitempty"` // Exchange-supplied category hint
	Timestamp     string `json:"timestamp,omitempty"`
	FilingURL     string `json:"filing_url,omitempty"`     // XBRL/XML disclosure link
	AttachmentURL string `json:"attachment_url,omitempty"` // PDF/DOC attachment link
	Source        string `json:"source"`                   // "web" or "inbox"
}

// AnnouncementSource collects candidate announcements for a monitor cycle.
type AnnouncementSource interface {
	Name() string
	Collect(ctx context.Context) ([]Announcement, error)
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// AnnouncementID derives a stable identifier from company and timestamp so
// the same announcement is never alerted twice across cycles.
func AnnouncementID(company, timestamp string) string {
	raw := strings.ToLower(strings.TrimSpace(company) + "_" + strings.TrimSpace(timestamp))
	id := idSanitizer.ReplaceAllString(raw, "_")
	return strings.Trim(id, "_")
}
