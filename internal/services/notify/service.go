// -----------------------------------------------------------------------
// Notify Service - Alert and digest email delivery over SMTP
// -----------------------------------------------------------------------

package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	gomail "gopkg.in/mail.v2"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/services/analysis"
	"github.com/ternarybob/auspex/internal/services/pdf"
)

// Service sends per-announcement alert emails and markdown digest reports.
// Send failures are reported to the caller but are never fatal to a
// monitoring cycle.
type Service struct {
	config   *common.EmailConfig
	renderer *pdf.Renderer
	logger   arbor.ILogger
}

// NewService creates the email notifier. The PDF renderer is used for the
// optional digest attachment and may be nil when digests are not attached.
func NewService(config *common.EmailConfig, renderer *pdf.Renderer, logger arbor.ILogger) *Service {
	return &Service{
		config:   config,
		renderer: renderer,
		logger:   logger,
	}
}

// Enabled reports whether the notifier has enough configuration to send
func (s *Service) Enabled() bool {
	return s.config.Enabled &&
		s.config.SMTPHost != "" &&
		s.config.From != "" &&
		len(s.config.Recipients) > 0
}

// SendAlert sends one alert email for an analyzed announcement. The summary
// is optional LLM-generated text included above the score detail.
func (s *Service) SendAlert(ctx context.Context, record *analysis.AnalysisRecord, summary string) error {
	if !s.Enabled() {
		return fmt.Errorf("email notifications not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := s.Subject(record)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", s.config.Recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody(record, summary))
	m.AddAlternative("text/html", htmlBody(record, summary))

	if err := s.send(m); err != nil {
		s.logger.Error().
			Err(err).
			Str("company", record.Company).
			Str("subject", subject).
			Msg("Failed to send alert email")
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	s.logger.Info().
		Str("company", record.Company).
		Str("priority", string(record.Priority)).
		Float64("urgency", record.Urgency.Score).
		Msg("Alert email sent")

	return nil
}

// SendDigest sends a markdown digest report: markdown rendered to HTML for
// the mail body, and optionally to PDF as an attachment.
func (s *Service) SendDigest(ctx context.Context, markdown, title string) error {
	if !s.Enabled() {
		return fmt.Errorf("email notifications not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &html); err != nil {
		return fmt.Errorf("failed to render digest HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", s.config.Recipients...)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", markdown)
	m.AddAlternative("text/html", html.String())

	if s.config.AttachDigestPDF && s.renderer != nil {
		pdfBytes, err := s.renderer.RenderMarkdown(markdown, title)
		if err != nil {
			// Digest still goes out without the attachment
			s.logger.Warn().Err(err).Msg("Failed to render digest PDF attachment")
		} else {
			m.AttachReader("digest.pdf", bytes.NewReader(pdfBytes))
		}
	}

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	s.logger.Info().Str("title", title).Msg("Digest email sent")
	return nil
}

// SendDailyDigest composes and sends the digest for the given records. A
// day with no analyzed announcements sends nothing.
func (s *Service) SendDailyDigest(ctx context.Context, records []*analysis.AnalysisRecord, at time.Time) error {
	if !s.Enabled() || len(records) == 0 {
		return nil
	}

	markdown := BuildDigestMarkdown(records, at)
	title := fmt.Sprintf("Announcement Digest - %s", at.Format("2006-01-02"))
	return s.SendDigest(ctx, markdown, title)
}

func (s *Service) send(m *gomail.Message) error {
	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.Username, s.config.Password)
	d.Timeout = s.config.DialTimeout
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	return d.DialAndSend(m)
}

// Subject builds the alert subject: urgency indicator, company, and up to
// two triggered flag names, truncated to the configured maximum length.
func (s *Service) Subject(record *analysis.AnalysisRecord) string {
	indicator := "INFO"
	switch {
	case record.Urgency.Score > 0.8:
		indicator = "URGENT"
	case record.Urgency.Score > 0.6:
		indicator = "HIGH"
	case record.Urgency.Score > 0.4:
		indicator = "MEDIUM"
	}

	subject := fmt.Sprintf("%s: BSE Alert - %s", indicator, record.Company)

	if len(record.Urgency.Flags) > 0 {
		names := make([]string, 0, 2)
		for _, flag := range record.Urgency.Flags {
			names = append(names, flag.Name)
			if len(names) == 2 {
				break
			}
		}
		subject += fmt.Sprintf(" [%s]", strings.Join(names, ", "))
	}

	if max := s.config.MaxSubjectLength; max > 3 && len(subject) > max {
		subject = subject[:max-3] + "..."
	}
	return subject
}
