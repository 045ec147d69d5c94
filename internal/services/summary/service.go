// -----------------------------------------------------------------------
// Summary Service - Optional LLM one-paragraph summaries for alerts
// -----------------------------------------------------------------------

package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/services/analysis"
)

// Provider generates completion text for a prompt. Implementations wrap one
// upstream LLM API.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service produces short announcement summaries for alert emails. Summaries
// are presentation only; scoring never depends on them, and any failure here
// degrades to an alert without a summary.
type Service struct {
	provider Provider
	retry    *RetryConfig
	logger   arbor.ILogger
}

// NewService builds the summary service from configuration. Returns nil
// (disabled) when summaries are turned off or no API key is available;
// callers treat a nil service as "no summaries".
func NewService(cfg *common.Config, logger arbor.ILogger) *Service {
	if !cfg.LLM.Enabled {
		return nil
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("LLM summaries disabled")
		return nil
	}

	logger.Info().Str("provider", provider.Name()).Msg("LLM summary provider initialized")

	return &Service{
		provider: provider,
		retry:    NewDefaultRetryConfig(),
		logger:   logger,
	}
}

func newProvider(cfg *common.Config, logger arbor.ILogger) (Provider, error) {
	switch cfg.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		apiKey, err := common.ResolveAPIKey("anthropic_api_key", cfg.Claude.APIKey)
		if err != nil {
			return nil, fmt.Errorf("claude provider requires an API key: %w", err)
		}
		return NewClaudeProvider(apiKey, &cfg.Claude, logger), nil

	case common.LLMProviderGemini, "":
		apiKey, err := common.ResolveAPIKey("gemini_api_key", cfg.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini provider requires an API key: %w", err)
		}
		return NewGeminiProvider(apiKey, &cfg.Gemini, logger), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.DefaultProvider)
	}
}

// SummarizeRecord generates a one-paragraph summary of an analyzed
// announcement, retrying transient provider failures with backoff.
func (s *Service) SummarizeRecord(ctx context.Context, record *analysis.AnalysisRecord) (string, error) {
	prompt := buildPrompt(record)

	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		text, err := s.provider.Generate(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err

		if !IsRetryableError(err) {
			break
		}

		backoff := s.retry.CalculateBackoff(attempt, ExtractRetryDelay(err))
		s.logger.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Summary generation failed, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", fmt.Errorf("summary generation failed: %w", lastErr)
}

// buildPrompt assembles the summary prompt from the analyzed record. Only
// facts the engine extracted go in; the model is not asked to re-score.
func buildPrompt(record *analysis.AnalysisRecord) string {
	var b strings.Builder

	b.WriteString("Summarize this Indian stock exchange corporate announcement in one short paragraph ")
	b.WriteString("for an investor alert email. Be factual, mention the company, the key numbers and why it matters. ")
	b.WriteString("Do not speculate beyond the given facts.\n\n")

	fmt.Fprintf(&b, "Company: %s\n", record.Company)
	fmt.Fprintf(&b, "Announcement: %s\n", record.Title)
	fmt.Fprintf(&b, "Classified type: %s\n", record.AnnouncementType)

	if len(record.Urgency.Flags) > 0 {
		names := make([]string, 0, len(record.Urgency.Flags))
		for _, flag := range record.Urgency.Flags {
			names = append(names, flag.Name)
		}
		fmt.Fprintf(&b, "Signals: %s\n", strings.Join(names, ", "))
	}
	if record.Urgency.FinancialImpact > 0 {
		fmt.Fprintf(&b, "Estimated financial impact: %.0f INR\n", record.Urgency.FinancialImpact)
	}
	for name, value := range record.Metrics {
		fmt.Fprintf(&b, "Reported %s: %.0f\n", name, value)
	}

	return b.String()
}
