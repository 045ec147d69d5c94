// -----------------------------------------------------------------------
// Mailwatch Service - IMAP inbox polling as an announcement source
// -----------------------------------------------------------------------

package mailwatch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

// Service polls an IMAP inbox for unread exchange notification emails and
// converts them into announcements: subject becomes the title, the
// text/plain part the narrative, the sender a company hint. Processed
// messages are marked read so they are collected once.
type Service struct {
	config *common.InboxConfig
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.AnnouncementSource = (*Service)(nil)

// NewService creates the inbox announcement source
func NewService(config *common.InboxConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Name identifies this source in announcement records
func (s *Service) Name() string {
	return "inbox"
}

// Collect fetches unread messages matching the subject filter and returns
// them as announcements. Messages that were converted successfully are
// marked read in the same session.
func (s *Service) Collect(ctx context.Context) ([]interfaces.Announcement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.config.Host == "" || s.config.Username == "" || s.config.Password == "" {
		return nil, fmt.Errorf("inbox source not configured")
	}

	c, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	mailbox := s.config.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	mbox, err := c.Select(mailbox, false)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", mailbox, err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search for unseen messages: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	s.logger.Debug().Int("count", len(seqNums)).Str("mailbox", mailbox).Msg("Found unseen messages")

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, len(seqNums))

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}, messages)
	}()

	var announcements []interfaces.Announcement
	processed := new(imap.SeqSet)

	for msg := range messages {
		if msg == nil || msg.Envelope == nil {
			continue
		}

		subject := msg.Envelope.Subject
		if !s.matchesFilter(subject) {
			continue
		}

		body, err := parseTextBody(msg, section)
		if err != nil {
			s.logger.Warn().Err(err).Int("seq", int(msg.SeqNum)).Msg("Failed to parse message body")
			continue
		}

		announcements = append(announcements, s.toAnnouncement(msg, subject, body))
		processed.AddNum(msg.SeqNum)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	// Mark converted messages read so the next cycle skips them
	if !processed.Empty() {
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := c.Store(processed, item, []interface{}{imap.SeenFlag}, nil); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to mark messages as read")
		}
	}

	s.logger.Info().Int("count", len(announcements)).Msg("Collected announcements from inbox")
	return announcements, nil
}

func (s *Service) connect() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var c *client.Client
	var err error
	if s.config.UseTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(s.config.Username, s.config.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}
	return c, nil
}

func (s *Service) matchesFilter(subject string) bool {
	if s.config.SubjectFilter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(subject), strings.ToLower(s.config.SubjectFilter))
}

func (s *Service) toAnnouncement(msg *imap.Message, subject, body string) interfaces.Announcement {
	sender := ""
	if len(msg.Envelope.From) > 0 {
		if name := msg.Envelope.From[0].PersonalName; name != "" {
			sender = name
		} else {
			sender = msg.Envelope.From[0].Address()
		}
	}

	timestamp := msg.Envelope.Date.Format("2006-01-02 15:04")

	return interfaces.Announcement{
		ID:        interfaces.AnnouncementID(companyFromSubject(subject, sender), timestamp),
		Company:   companyFromSubject(subject, sender),
		Title:     subject,
		Body:      body,
		Timestamp: timestamp,
		Source:    s.Name(),
	}
}

// companyFromSubject pulls a company hint out of a notification subject of
// the form "<prefix> - <company>: <detail>". Falls back to the sender.
func companyFromSubject(subject, sender string) string {
	if idx := strings.Index(subject, " - "); idx >= 0 {
		rest := subject[idx+3:]
		if end := strings.IndexAny(rest, ":["); end > 0 {
			rest = rest[:end]
		}
		if rest = strings.TrimSpace(rest); rest != "" {
			return rest
		}
	}
	return sender
}

// parseTextBody extracts the text/plain part from an IMAP message
func parseTextBody(msg *imap.Message, section *imap.BodySectionName) (string, error) {
	r := msg.GetBody(section)
	if r == nil {
		return "", fmt.Errorf("no body section")
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}

	var body string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read next part: %w", err)
		}

		if h, ok := p.Header.(*mail.InlineHeader); ok {
			contentType, _, _ := h.ContentType()
			if strings.HasPrefix(contentType, "text/plain") {
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return "", fmt.Errorf("failed to read body: %w", err)
				}
				body = string(b)
			}
		}
	}

	return strings.TrimSpace(body), nil
}
