package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/auspex/internal/interfaces"
)

var announcementRowClass = regexp.MustCompile(`(?i)announcement|corporate`)

// extractAnnouncements parses announcement rows out of the listing page.
// Rows that cannot be parsed are skipped with a warning so one malformed
// row never costs a whole cycle.
func (s *Service) extractAnnouncements(page []byte) ([]interfaces.Announcement, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse announcements page: %w", err)
	}

	var announcements []interfaces.Announcement
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		class, _ := row.Attr("class")
		if !announcementRowClass.MatchString(class) {
			return
		}

		announcement, err := s.parseRow(row)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Skipping malformed announcement row")
			return
		}
		announcements = append(announcements, announcement)
	})

	return announcements, nil
}

func (s *Service) parseRow(row *goquery.Selection) (interfaces.Announcement, error) {
	cells := row.Find("td")
	if cells.Length() < 3 {
		return interfaces.Announcement{}, fmt.Errorf("row has %d cells, need at least 3", cells.Length())
	}

	company := strings.TrimSpace(cells.Eq(0).Text())
	timestamp := strings.TrimSpace(cells.Eq(1).Text())
	title := strings.TrimSpace(cells.Eq(2).Text())

	if company == "" && title == "" {
		return interfaces.Announcement{}, fmt.Errorf("row has no company or title text")
	}
	if company == "" {
		company = "Unknown Company"
	}
	if timestamp == "" {
		timestamp = time.Now().Format("2006-01-02 15:04")
	}

	category := ""
	if cells.Length() > 3 {
		category = strings.TrimSpace(cells.Eq(3).Text())
	}

	return interfaces.Announcement{
		ID:            interfaces.AnnouncementID(company, timestamp),
		Company:       company,
		Title:         title,
		Body:          s.detailBody(row),
		Category:      category,
		Timestamp:     timestamp,
		FilingURL:     s.findLink(row, isFilingLink),
		AttachmentURL: s.findLink(row, isAttachmentLink),
		Source:        s.Name(),
	}, nil
}

// detailBody converts an inline detail fragment, when the row carries one,
// into markdown narrative text. The fragment is sanitized first since it
// comes straight off the exchange page.
func (s *Service) detailBody(row *goquery.Selection) string {
	detail := row.Find(".announcement-detail, .news-detail, .detail").First()
	if detail.Length() == 0 {
		return ""
	}

	fragment, err := detail.Html()
	if err != nil || strings.TrimSpace(fragment) == "" {
		return ""
	}

	clean := s.sanitizer.Sanitize(fragment)
	markdown, err := s.converter.ConvertString(clean)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to convert announcement detail to markdown")
		return strings.TrimSpace(detail.Text())
	}
	return strings.TrimSpace(markdown)
}

func (s *Service) findLink(row *goquery.Selection, match func(string) bool) string {
	found := ""
	row.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if href == "" || !match(strings.ToLower(href)) {
			return true
		}
		found = s.resolveURL(href)
		return false
	})
	return found
}

func (s *Service) resolveURL(href string) string {
	base, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func isFilingLink(href string) bool {
	return strings.Contains(href, ".xml") || strings.Contains(href, "xbrl")
}

func isAttachmentLink(href string) bool {
	for _, ext := range []string{".pdf", ".doc", ".docx"} {
		if strings.Contains(href, ext) {
			return true
		}
	}
	return false
}
