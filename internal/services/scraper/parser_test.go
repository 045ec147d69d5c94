package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
)

const listingPage = `
<html><body><table>
<tr class="announcement-row">
  <td>Acme Industries Ltd</td>
  <td>2025-08-29 10:30</td>
  <td>Q1 FY26 results: net profit up 45%</td>
  <td>Result</td>
  <td>
    <a href="/xml-data/corpfiling/acme_q1.xml">XBRL</a>
    <a href="/downloads/acme_q1.pdf">PDF</a>
  </td>
</tr>
<tr class="corporate-filing">
  <td>Beta Corp Ltd</td>
  <td>2025-08-29 11:00</td>
  <td>Board meeting intimation</td>
  <td>Board Meeting</td>
</tr>
<tr class="announcement-row">
  <td></td>
  <td></td>
  <td></td>
</tr>
<tr class="other-row">
  <td>Not An Announcement</td>
  <td>2025-08-29</td>
  <td>ignored</td>
</tr>
<tr class="announcement-row">
  <td>Gamma Ltd</td>
  <td>2025-08-29 12:15</td>
  <td>Receives order worth Rs 120 crore
    <div class="announcement-detail"><p>Gamma Ltd has received a <b>major order</b> from the Ministry of Defence.</p><script>alert(1)</script></div>
  </td>
</tr>
</table></body></html>`

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &common.ScraperConfig{
		AnnouncementsURL:  "https://example.test/corporates/ann.html",
		BaseURL:           "https://example.test",
		UserAgent:         "auspex-test",
		RequestTimeout:    5 * time.Second,
		MaxRetries:        3,
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
		CacheTTL:          time.Minute,
		MaxBodySize:       1 << 20,
	}
	return NewService(cfg, arbor.NewLogger())
}

func TestExtractAnnouncements(t *testing.T) {
	service := newTestService(t)

	announcements, err := service.extractAnnouncements([]byte(listingPage))
	if err != nil {
		t.Fatalf("extractAnnouncements failed: %v", err)
	}

	// The empty row is skipped and the non-announcement row ignored.
	if len(announcements) != 3 {
		t.Fatalf("got %d announcements, want 3", len(announcements))
	}

	acme := announcements[0]
	if acme.Company != "Acme Industries Ltd" {
		t.Errorf("company = %q", acme.Company)
	}
	if acme.Title != "Q1 FY26 results: net profit up 45%" {
		t.Errorf("title = %q", acme.Title)
	}
	if acme.Category != "Result" {
		t.Errorf("category = %q", acme.Category)
	}
	if acme.FilingURL != "https://example.test/xml-data/corpfiling/acme_q1.xml" {
		t.Errorf("filing URL = %q", acme.FilingURL)
	}
	if acme.AttachmentURL != "https://example.test/downloads/acme_q1.pdf" {
		t.Errorf("attachment URL = %q", acme.AttachmentURL)
	}
	if acme.ID != "acme_industries_ltd_2025_08_29_10_30" {
		t.Errorf("id = %q", acme.ID)
	}
	if acme.Source != "web" {
		t.Errorf("source = %q", acme.Source)
	}

	beta := announcements[1]
	if beta.FilingURL != "" || beta.AttachmentURL != "" {
		t.Errorf("row without links got URLs: %q %q", beta.FilingURL, beta.AttachmentURL)
	}
}

func TestExtractAnnouncementsDetailBody(t *testing.T) {
	service := newTestService(t)

	announcements, err := service.extractAnnouncements([]byte(listingPage))
	if err != nil {
		t.Fatal(err)
	}

	gamma := announcements[2]
	if gamma.Body == "" {
		t.Fatal("detail fragment produced no body")
	}
	if !strings.Contains(gamma.Body, "**major order**") {
		t.Errorf("bold detail not converted to markdown: %q", gamma.Body)
	}
	if strings.Contains(gamma.Body, "script") || strings.Contains(gamma.Body, "alert") {
		t.Errorf("script content survived sanitization: %q", gamma.Body)
	}
}

func TestExtractAnnouncementsNotHTML(t *testing.T) {
	service := newTestService(t)

	// goquery parses anything as HTML; garbage input just yields no rows.
	announcements, err := service.extractAnnouncements([]byte("not a page at all"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(announcements) != 0 {
		t.Errorf("got %d announcements from garbage input", len(announcements))
	}
}

func TestResolveURLAbsolute(t *testing.T) {
	service := newTestService(t)

	absolute := "https://other.test/file.pdf"
	if got := service.resolveURL(absolute); got != absolute {
		t.Errorf("resolveURL(%q) = %q", absolute, got)
	}
}

