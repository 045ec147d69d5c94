// -----------------------------------------------------------------------
// Scraper Service - Fetch BSE corporate announcement listings and
// announcement payloads (XBRL filings, PDF attachments)
// -----------------------------------------------------------------------

package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	gocache "github.com/patrickmn/go-cache"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/interfaces"
)

const listingCacheKey = "announcements_page"

// Service scrapes the exchange announcements page and fetches filing and
// attachment payloads. All outbound requests share one rate limiter so the
// exchange sees a steady request pace regardless of caller.
type Service struct {
	config    *common.ScraperConfig
	logger    arbor.ILogger
	client    *http.Client
	limiter   *rate.Limiter
	pageCache *gocache.Cache
	sanitizer *bluemonday.Policy
	converter *md.Converter
}

// Compile-time assertion
var _ interfaces.AnnouncementSource = (*Service)(nil)

// NewService creates an announcement scraper from configuration
func NewService(config *common.ScraperConfig, logger arbor.ILogger) *Service {
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Service{
		config:    config,
		logger:    logger,
		client:    &http.Client{Timeout: config.RequestTimeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		pageCache: gocache.New(config.CacheTTL, 2*config.CacheTTL),
		sanitizer: bluemonday.UGCPolicy(),
		converter: md.NewConverter(config.BaseURL, true, nil),
	}
}

// Name identifies this source in announcement records
func (s *Service) Name() string {
	return "web"
}

// Collect fetches the announcements listing page and returns the
// announcements found on it. The listing page is cached so back-to-back
// cycles inside the cache TTL do not re-hit the exchange.
func (s *Service) Collect(ctx context.Context) ([]interfaces.Announcement, error) {
	page, err := s.fetchListing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch announcements page: %w", err)
	}

	announcements, err := s.extractAnnouncements(page)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("count", len(announcements)).
		Str("url", s.config.AnnouncementsURL).
		Msg("Collected announcements from listing page")

	return announcements, nil
}

// FetchFiling downloads an XBRL filing payload for the analysis engine
func (s *Service) FetchFiling(ctx context.Context, url string) ([]byte, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filing: %w", err)
	}
	return body, nil
}

// FetchAttachment downloads an announcement attachment (usually PDF)
func (s *Service) FetchAttachment(ctx context.Context, url string) ([]byte, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachment: %w", err)
	}
	return body, nil
}

func (s *Service) fetchListing(ctx context.Context) ([]byte, error) {
	if cached, found := s.pageCache.Get(listingCacheKey); found {
		s.logger.Debug().Msg("Using cached announcements page")
		return cached.([]byte), nil
	}

	body, err := s.fetch(ctx, s.config.AnnouncementsURL)
	if err != nil {
		return nil, err
	}

	s.pageCache.Set(listingCacheKey, body, gocache.DefaultExpiration)
	return body, nil
}

// fetch performs a rate-limited GET with bounded retries. The response body
// is capped at MaxBodySize to guard against runaway payloads.
func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := s.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		s.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("Fetch attempt failed")

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.config.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", attempts, lastErr)
}

func (s *Service) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	limit := s.config.MaxBodySize
	if limit <= 0 {
		limit = 10 * 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
