// -----------------------------------------------------------------------
// Monitor Service - Scheduled announcement check cycle: collect, analyze,
// alert, mark seen
// -----------------------------------------------------------------------

package monitor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/services/analysis"
)

// PayloadFetcher downloads filing and attachment payloads for announcements
type PayloadFetcher interface {
	FetchFiling(ctx context.Context, url string) ([]byte, error)
	FetchAttachment(ctx context.Context, url string) ([]byte, error)
}

// AttachmentExtractor turns attachment bytes into narrative text
type AttachmentExtractor interface {
	ExtractText(ctx context.Context, content []byte) (string, error)
}

// Alerter delivers one alert per analyzed announcement
type Alerter interface {
	Enabled() bool
	SendAlert(ctx context.Context, record *analysis.AnalysisRecord, summary string) error
}

// DigestSender is an optional capability of the alerter: a daily digest of
// the day's analyzed announcements. Alerters without it simply don't get a
// digest schedule.
type DigestSender interface {
	SendDailyDigest(ctx context.Context, records []*analysis.AnalysisRecord, at time.Time) error
}

// Summarizer produces optional LLM summaries for high-priority alerts
type Summarizer interface {
	SummarizeRecord(ctx context.Context, record *analysis.AnalysisRecord) (string, error)
}

// Publisher receives each analysis record for the live feed
type Publisher interface {
	Publish(record *analysis.AnalysisRecord)
}

// Status is the monitor's operational state as reported by the status API
type Status struct {
	Running          bool      `json:"running"`
	StartedAt        time.Time `json:"started_at"`
	LastCheck        time.Time `json:"last_check,omitempty"`
	LastHeartbeat    time.Time `json:"last_heartbeat,omitempty"`
	TotalChecks      int64     `json:"total_checks"`
	TotalProcessed   int64     `json:"total_processed"`
	TotalAlerts      int64     `json:"total_alerts"`
	TotalErrors      int64     `json:"total_errors"`
	LastAnnouncement string    `json:"last_announcement,omitempty"`
}

// Service runs the periodic announcement check cycle. One cycle: collect
// candidates from the enabled sources, skip seen IDs, fetch payloads, run
// the engine, alert, mark seen. Every per-announcement failure is local to
// that announcement.
type Service struct {
	config     *common.Config
	logger     arbor.ILogger
	engine     *analysis.Engine
	sources    []interfaces.AnnouncementSource
	fetcher    PayloadFetcher
	extractor  AttachmentExtractor
	alerter    Alerter
	summarizer Summarizer
	publisher  Publisher
	seen       interfaces.SeenStore

	cron *cron.Cron

	mu     sync.RWMutex
	status Status
	recent []*analysis.AnalysisRecord
}

// NewService wires the monitor. Summarizer and publisher may be nil.
func NewService(
	config *common.Config,
	engine *analysis.Engine,
	sources []interfaces.AnnouncementSource,
	fetcher PayloadFetcher,
	extractor AttachmentExtractor,
	alerter Alerter,
	summarizer Summarizer,
	publisher Publisher,
	seen interfaces.SeenStore,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:     config,
		logger:     logger,
		engine:     engine,
		sources:    sources,
		fetcher:    fetcher,
		extractor:  extractor,
		alerter:    alerter,
		summarizer: summarizer,
		publisher:  publisher,
		seen:       seen,
	}
}

// Start schedules the check cycle and runs one check immediately
func (s *Service) Start() error {
	s.mu.Lock()
	if s.status.Running {
		s.mu.Unlock()
		return fmt.Errorf("monitor already running")
	}
	s.status.Running = true
	s.status.StartedAt = time.Now().UTC()
	s.mu.Unlock()

	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.config.Monitor.CheckInterval)
	if _, err := s.cron.AddFunc(spec, s.safeCycle); err != nil {
		return fmt.Errorf("failed to schedule check cycle: %w", err)
	}

	if digester, ok := s.alerter.(DigestSender); ok {
		if _, err := s.cron.AddFunc("@daily", func() { s.safeDigest(digester) }); err != nil {
			return fmt.Errorf("failed to schedule daily digest: %w", err)
		}
	}

	s.cron.Start()

	s.logger.Info().
		Dur("interval", s.config.Monitor.CheckInterval).
		Int("sources", len(s.sources)).
		Msg("Monitor started")

	// First check immediately rather than one interval from now
	common.SafeGo(s.logger, "initialCheck", s.safeCycle)

	return nil
}

// Stop halts the scheduler. In-flight cycles run to completion.
func (s *Service) Stop() {
	s.mu.Lock()
	running := s.status.Running
	s.status.Running = false
	s.mu.Unlock()

	if running && s.cron != nil {
		s.cron.Stop()
		s.logger.Info().Msg("Monitor stopped")
	}
}

// CheckNow runs one check cycle synchronously. Used by the manual trigger
// endpoint and the --check-now flag.
func (s *Service) CheckNow(ctx context.Context) error {
	return s.runCycle(ctx)
}

// safeCycle is the scheduler entry point. A panic in a cycle must never
// kill the cron goroutine.
func (s *Service) safeCycle() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(buf[:n])).
				Msg("Check cycle panicked")
			s.recordError()
		}
	}()

	if err := s.runCycle(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Check cycle failed")
		s.recordError()
	}
}

// safeDigest sends the daily digest of the last 24 hours' records. Digest
// failures are logged, never fatal to the scheduler.
func (s *Service) safeDigest(digester DigestSender) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Daily digest panicked")
			s.recordError()
		}
	}()

	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	var records []*analysis.AnalysisRecord
	for _, record := range s.RecentRecords() {
		if record.AnalyzedAt.After(cutoff) {
			records = append(records, record)
		}
	}

	if err := digester.SendDailyDigest(context.Background(), records, now); err != nil {
		s.logger.Warn().Err(err).Int("records", len(records)).Msg("Daily digest send failed")
		s.recordError()
		return
	}

	s.logger.Info().Int("records", len(records)).Msg("Daily digest sent")
}

func (s *Service) runCycle(ctx context.Context) error {
	started := time.Now()
	s.heartbeat()

	candidates := s.collect(ctx)

	processed := 0
	alerted := 0
	for _, announcement := range candidates {
		if s.config.Monitor.MaxPerCycle > 0 && processed >= s.config.Monitor.MaxPerCycle {
			s.logger.Warn().
				Int("cap", s.config.Monitor.MaxPerCycle).
				Int("remaining", len(candidates)-processed).
				Msg("Per-cycle cap reached, deferring remainder to next check")
			break
		}

		seen, err := s.seen.IsSeen(ctx, announcement.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("id", announcement.ID).Msg("Seen lookup failed, processing anyway")
		} else if seen {
			continue
		}

		if s.processAnnouncement(ctx, announcement) {
			alerted++
		}
		processed++
	}

	s.finishCycle(processed)

	s.logger.Info().
		Int("candidates", len(candidates)).
		Int("processed", processed).
		Int("alerted", alerted).
		Dur("duration", time.Since(started)).
		Msg("Check cycle complete")

	return nil
}

// collect gathers candidate announcements from every configured source.
// A failing source costs its own announcements only.
func (s *Service) collect(ctx context.Context) []interfaces.Announcement {
	var candidates []interfaces.Announcement
	for _, source := range s.sources {
		announcements, err := source.Collect(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("source", source.Name()).Msg("Source collection failed")
			s.recordError()
			continue
		}
		candidates = append(candidates, announcements...)
	}
	return candidates
}

// processAnnouncement runs one announcement through fetch, analysis, alert
// and mark-seen. Returns whether an alert went out.
func (s *Service) processAnnouncement(ctx context.Context, announcement interfaces.Announcement) bool {
	input := analysis.Input{
		Title:   announcement.Title,
		Body:    announcement.Body,
		Company: announcement.Company,
	}

	// Payload fetch failures degrade to text-only analysis
	if announcement.FilingURL != "" && s.fetcher != nil {
		filing, err := s.fetcher.FetchFiling(ctx, announcement.FilingURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("id", announcement.ID).Msg("Filing fetch failed, analyzing text only")
		} else {
			input.Filing = filing
		}
	}

	if announcement.AttachmentURL != "" && s.fetcher != nil && s.extractor != nil {
		if text := s.attachmentText(ctx, announcement); text != "" {
			input.Body = input.Body + "\n\n" + text
		}
	}

	record := s.engine.Analyze(input)
	record.Company = announcement.Company

	wantAlert := s.shouldSendAlert(&record)
	alerted := false
	if wantAlert {
		summary := s.summarize(ctx, &record)
		if err := s.alerter.SendAlert(ctx, &record, summary); err != nil {
			s.logger.Error().Err(err).Str("id", announcement.ID).Msg("Alert delivery failed")
			s.recordError()
		} else {
			alerted = true
			s.mu.Lock()
			s.status.TotalAlerts++
			s.mu.Unlock()
		}
	}

	// A failed alert leaves the announcement unmarked so it re-surfaces
	// next cycle; that beats silently losing it.
	if !wantAlert || alerted {
		seenRecord := interfaces.SeenRecord{
			ID:       announcement.ID,
			Company:  announcement.Company,
			Headline: announcement.Title,
		}
		if err := s.seen.MarkSeen(ctx, seenRecord); err != nil {
			s.logger.Error().Err(err).Str("id", announcement.ID).Msg("Failed to mark announcement seen")
			s.recordError()
		}
	}

	s.remember(&record, announcement.Title)

	if s.publisher != nil {
		s.publisher.Publish(&record)
	}

	return alerted
}

func (s *Service) attachmentText(ctx context.Context, announcement interfaces.Announcement) string {
	content, err := s.fetcher.FetchAttachment(ctx, announcement.AttachmentURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", announcement.ID).Msg("Attachment fetch failed")
		return ""
	}

	text, err := s.extractor.ExtractText(ctx, content)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", announcement.ID).Msg("Attachment text extraction failed")
		return ""
	}
	return text
}

// shouldSendAlert applies the configured suppression thresholds on top of
// the engine's always-true alert policy.
func (s *Service) shouldSendAlert(record *analysis.AnalysisRecord) bool {
	if !record.ShouldAlert || !s.alerter.Enabled() {
		return false
	}

	cfg := &s.config.Analysis
	if record.Urgency.Score < cfg.MinUrgencyToAlert {
		return false
	}
	if record.Confidence.Score < cfg.MinConfidenceToAlert {
		return false
	}
	if cfg.UrgentOnly && record.Urgency.Score < cfg.UrgencyHigh {
		return false
	}
	return true
}

// summarize fetches an LLM summary for high-priority records only. Failure
// means the alert simply carries no summary paragraph.
func (s *Service) summarize(ctx context.Context, record *analysis.AnalysisRecord) string {
	if s.summarizer == nil {
		return ""
	}
	if record.Priority != analysis.PriorityHigh && record.Priority != analysis.PriorityCritical {
		return ""
	}

	summary, err := s.summarizer.SummarizeRecord(ctx, record)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", record.ID).Msg("Summary generation failed, alerting without summary")
		return ""
	}
	return summary
}

// Status returns a copy of the current operational state
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RecentRecords returns the retained analysis records, newest first
func (s *Service) RecentRecords() []*analysis.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*analysis.AnalysisRecord, len(s.recent))
	copy(out, s.recent)
	return out
}

func (s *Service) heartbeat() {
	s.mu.Lock()
	s.status.LastHeartbeat = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Service) finishCycle(processed int) {
	s.mu.Lock()
	s.status.LastCheck = time.Now().UTC()
	s.status.TotalChecks++
	s.status.TotalProcessed += int64(processed)
	s.mu.Unlock()
}

func (s *Service) recordError() {
	s.mu.Lock()
	s.status.TotalErrors++
	s.mu.Unlock()
}

// remember prepends the record to the bounded recent ring
func (s *Service) remember(record *analysis.AnalysisRecord, headline string) {
	limit := s.config.Monitor.RecentRecords
	if limit <= 0 {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append([]*analysis.AnalysisRecord{record}, s.recent...)
	if len(s.recent) > limit {
		s.recent = s.recent[:limit]
	}
	s.status.LastAnnouncement = headline
}
