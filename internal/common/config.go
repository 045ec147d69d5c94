package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Logging     LoggingConfig  `toml:"logging"`
	Storage     StorageConfig  `toml:"storage"`
	Scraper     ScraperConfig  `toml:"scraper"`
	Monitor     MonitorConfig  `toml:"monitor"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Email       EmailConfig    `toml:"email"`
	Inbox       InboxConfig    `toml:"inbox"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	LLM         LLMConfig      `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// ScraperConfig contains BSE announcement page fetch configuration
type ScraperConfig struct {
	AnnouncementsURL  string        `toml:"announcements_url" validate:"omitempty,url"` // Corporate announcements listing page
	BaseURL           string        `toml:"base_url" validate:"omitempty,url"`          // Base for resolving relative filing/attachment links
	UserAgent         string        `toml:"user_agent"`
	RequestTimeout    time.Duration `toml:"request_timeout"`     // HTTP request timeout
	MaxRetries        int           `toml:"max_retries"`         // Fetch attempts before giving up
	RetryDelay        time.Duration `toml:"retry_delay"`         // Fixed delay between attempts
	RequestsPerSecond float64       `toml:"requests_per_second"` // Rate limit applied across all outbound requests
	CacheTTL          time.Duration `toml:"cache_ttl"`           // Listing page cache lifetime
	MaxBodySize       int64         `toml:"max_body_size"`       // Maximum response body size in bytes
}

// MonitorConfig contains the announcement check cycle configuration
type MonitorConfig struct {
	CheckInterval time.Duration `toml:"check_interval"`  // Time between scheduled checks
	MaxPerCycle   int           `toml:"max_per_cycle"`   // Cap on announcements processed per check
	EnableWeb     bool          `toml:"enable_web"`      // Poll the exchange announcements page
	EnableInbox   bool          `toml:"enable_inbox"`    // Poll the IMAP inbox source
	RecentRecords int           `toml:"recent_records"`  // Analysis records retained for the status API
}

// AnalysisConfig contains engine thresholds and alert suppression settings
type AnalysisConfig struct {
	UrgencyHigh          float64 `toml:"urgency_high" validate:"gte=0,lte=1"`     // Urgency tier boundary
	UrgencyMedium        float64 `toml:"urgency_medium" validate:"gte=0,lte=1"`   //
	UrgencyLow           float64 `toml:"urgency_low" validate:"gte=0,lte=1"`      //
	ConfidenceHigh       float64 `toml:"confidence_high" validate:"gte=0,lte=1"`  // Confidence tier boundary
	ConfidenceMedium     float64 `toml:"confidence_medium" validate:"gte=0,lte=1"`
	MinUrgencyToAlert    float64 `toml:"min_urgency_to_alert" validate:"gte=0,lte=1"`    // 0 = alert on everything
	MinConfidenceToAlert float64 `toml:"min_confidence_to_alert" validate:"gte=0,lte=1"` // 0 = alert on everything
	UrgentOnly           bool    `toml:"urgent_only"`                                    // Suppress alerts below the high urgency tier
	DedupTolerance       float64 `toml:"dedup_tolerance" validate:"gte=0,lte=1"`         // Relative tolerance for text/structured amount dedup
	TaxonomyPath         string  `toml:"taxonomy_path"`                                  // Optional external taxonomy YAML replacing the built-in tables
}

// EmailConfig contains SMTP alert delivery configuration
type EmailConfig struct {
	Enabled          bool          `toml:"enabled"`
	SMTPHost         string        `toml:"smtp_host"`
	SMTPPort         int           `toml:"smtp_port" validate:"gte=0,lte=65535"`
	Username         string        `toml:"username"`
	Password         string        `toml:"password"`
	From             string        `toml:"from" validate:"omitempty,email"`
	Recipients       []string      `toml:"recipients" validate:"dive,email"`
	MaxSubjectLength int           `toml:"max_subject_length"` // Subject truncation limit
	AttachDigestPDF  bool          `toml:"attach_digest_pdf"`  // Attach the rendered digest PDF to digest mails
	DialTimeout      time.Duration `toml:"dial_timeout"`
}

// InboxConfig contains the IMAP announcement source configuration
type InboxConfig struct {
	Enabled       bool   `toml:"enabled"`
	Host          string `toml:"host"`
	Port          int    `toml:"port" validate:"gte=0,lte=65535"`
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	UseTLS        bool   `toml:"use_tls"`
	Mailbox       string `toml:"mailbox"`        // Mailbox to poll (default: INBOX)
	SubjectFilter string `toml:"subject_filter"` // Only messages whose subject contains this (case-insensitive)
}

// GeminiConfig contains Google Gemini API configuration for alert summaries
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for summary generation
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// ClaudeConfig contains Anthropic Claude API configuration for alert summaries
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for summary generation
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for the summary providers
type LLMConfig struct {
	Enabled         bool        `toml:"enabled"`          // Generate AI summaries for high-priority alerts
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in auspex.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development", // Default to development mode
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",                     // Info level for production (debug|info|warn|error)
			Format:     "text",                     // Human-readable text format (text|json)
			Output:     []string{"stdout", "file"}, // Log to both console and file
			TimeFormat: "15:04:05.000",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Scraper: ScraperConfig{
			AnnouncementsURL:  "https://www.bseindia.com/corporates/ann.html",
			BaseURL:           "https://www.bseindia.com",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:    30 * time.Second,
			MaxRetries:        3,
			RetryDelay:        5 * time.Second,
			RequestsPerSecond: 1, // One request per second keeps the exchange happy
			CacheTTL:          30 * time.Minute,
			MaxBodySize:       10 * 1024 * 1024, // 10MB
		},
		Monitor: MonitorConfig{
			CheckInterval: 15 * time.Minute,
			MaxPerCycle:   50,
			EnableWeb:     true,
			EnableInbox:   false, // Requires IMAP credentials
			RecentRecords: 100,
		},
		Analysis: AnalysisConfig{
			UrgencyHigh:      0.8,
			UrgencyMedium:    0.6,
			UrgencyLow:       0.4,
			ConfidenceHigh:   0.8,
			ConfidenceMedium: 0.6,
			// Suppression disabled: every analyzed announcement alerts,
			// downstream consumers filter on category/priority.
			MinUrgencyToAlert:    0,
			MinConfidenceToAlert: 0,
			UrgentOnly:           false,
			DedupTolerance:       0.01, // 1% relative difference counts as the same figure
		},
		Email: EmailConfig{
			Enabled:          false, // User must provide SMTP credentials
			SMTPPort:         587,
			MaxSubjectLength: 100,
			AttachDigestPDF:  false,
			DialTimeout:      10 * time.Second,
		},
		Inbox: InboxConfig{
			Enabled: false, // User must provide IMAP credentials
			Port:    993,   // IMAP SSL
			UseTLS:  true,
			Mailbox: "INBOX",
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key
			Model:       "gemini-3-flash-preview",
			Temperature: 0.3, // Summaries should stay close to the source
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1024,
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			Enabled:         false,
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI. Later files override earlier
// files. Example: LoadFromFiles("base.toml", "override.toml") - override.toml
// settings take precedence over base.toml.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: AUSPEX_ENV, fallback: GO_ENV)
	if env := os.Getenv("AUSPEX_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("AUSPEX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("AUSPEX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("AUSPEX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("AUSPEX_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("AUSPEX_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("AUSPEX_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Scraper configuration
	if url := os.Getenv("AUSPEX_SCRAPER_ANNOUNCEMENTS_URL"); url != "" {
		config.Scraper.AnnouncementsURL = url
	}
	if url := os.Getenv("AUSPEX_SCRAPER_BASE_URL"); url != "" {
		config.Scraper.BaseURL = url
	}
	if userAgent := os.Getenv("AUSPEX_SCRAPER_USER_AGENT"); userAgent != "" {
		config.Scraper.UserAgent = userAgent
	}
	if timeout := os.Getenv("AUSPEX_SCRAPER_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Scraper.RequestTimeout = d
		}
	}
	if retries := os.Getenv("AUSPEX_SCRAPER_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.Scraper.MaxRetries = r
		}
	}
	if rps := os.Getenv("AUSPEX_SCRAPER_REQUESTS_PER_SECOND"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil && r > 0 {
			config.Scraper.RequestsPerSecond = r
		}
	}

	// Monitor configuration
	if interval := os.Getenv("AUSPEX_MONITOR_CHECK_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			config.Monitor.CheckInterval = d
		}
	}
	if maxPerCycle := os.Getenv("AUSPEX_MONITOR_MAX_PER_CYCLE"); maxPerCycle != "" {
		if m, err := strconv.Atoi(maxPerCycle); err == nil {
			config.Monitor.MaxPerCycle = m
		}
	}
	if enableWeb := os.Getenv("AUSPEX_MONITOR_ENABLE_WEB"); enableWeb != "" {
		if e, err := strconv.ParseBool(enableWeb); err == nil {
			config.Monitor.EnableWeb = e
		}
	}
	if enableInbox := os.Getenv("AUSPEX_MONITOR_ENABLE_INBOX"); enableInbox != "" {
		if e, err := strconv.ParseBool(enableInbox); err == nil {
			config.Monitor.EnableInbox = e
		}
	}

	// Analysis configuration
	if taxonomyPath := os.Getenv("AUSPEX_ANALYSIS_TAXONOMY_PATH"); taxonomyPath != "" {
		config.Analysis.TaxonomyPath = taxonomyPath
	}
	if minUrgency := os.Getenv("AUSPEX_ANALYSIS_MIN_URGENCY_TO_ALERT"); minUrgency != "" {
		if v, err := strconv.ParseFloat(minUrgency, 64); err == nil {
			config.Analysis.MinUrgencyToAlert = v
		}
	}
	if urgentOnly := os.Getenv("AUSPEX_ANALYSIS_URGENT_ONLY"); urgentOnly != "" {
		if u, err := strconv.ParseBool(urgentOnly); err == nil {
			config.Analysis.UrgentOnly = u
		}
	}

	// Email configuration
	if enabled := os.Getenv("AUSPEX_EMAIL_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Email.Enabled = e
		}
	}
	if host := os.Getenv("AUSPEX_EMAIL_SMTP_HOST"); host != "" {
		config.Email.SMTPHost = host
	}
	if port := os.Getenv("AUSPEX_EMAIL_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Email.SMTPPort = p
		}
	}
	if username := os.Getenv("AUSPEX_EMAIL_USERNAME"); username != "" {
		config.Email.Username = username
	}
	if password := os.Getenv("AUSPEX_EMAIL_PASSWORD"); password != "" {
		config.Email.Password = password
	}
	if from := os.Getenv("AUSPEX_EMAIL_FROM"); from != "" {
		config.Email.From = from
	}
	if recipients := os.Getenv("AUSPEX_EMAIL_RECIPIENTS"); recipients != "" {
		// Split comma-separated addresses
		addrs := []string{}
		for _, a := range splitString(recipients, ",") {
			trimmed := trimSpace(a)
			if trimmed != "" {
				addrs = append(addrs, trimmed)
			}
		}
		if len(addrs) > 0 {
			config.Email.Recipients = addrs
		}
	}

	// Inbox configuration
	if enabled := os.Getenv("AUSPEX_INBOX_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Inbox.Enabled = e
		}
	}
	if host := os.Getenv("AUSPEX_INBOX_HOST"); host != "" {
		config.Inbox.Host = host
	}
	if port := os.Getenv("AUSPEX_INBOX_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Inbox.Port = p
		}
	}
	if username := os.Getenv("AUSPEX_INBOX_USERNAME"); username != "" {
		config.Inbox.Username = username
	}
	if password := os.Getenv("AUSPEX_INBOX_PASSWORD"); password != "" {
		config.Inbox.Password = password
	}
	if filter := os.Getenv("AUSPEX_INBOX_SUBJECT_FILTER"); filter != "" {
		config.Inbox.SubjectFilter = filter
	}

	// Gemini configuration
	if apiKey := os.Getenv("AUSPEX_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("AUSPEX_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("AUSPEX_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // AUSPEX_ prefix takes priority
	}
	if model := os.Getenv("AUSPEX_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// LLM provider configuration
	if enabled := os.Getenv("AUSPEX_LLM_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.LLM.Enabled = e
		}
	}
	if provider := os.Getenv("AUSPEX_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration for structural and cross-field problems
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email enabled but smtp_host is empty")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email enabled but from address is empty")
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("email enabled but no recipients configured")
		}
	}

	if c.Inbox.Enabled {
		if c.Inbox.Host == "" || c.Inbox.Username == "" || c.Inbox.Password == "" {
			return fmt.Errorf("inbox enabled but host/username/password incomplete")
		}
	}

	if c.Monitor.CheckInterval < time.Minute {
		return fmt.Errorf("monitor check_interval must be at least 1 minute, got %s", c.Monitor.CheckInterval)
	}

	return nil
}

// ResolveAPIKey resolves an API key by name with environment variable priority.
// Resolution order: environment variables -> config fallback -> error.
func ResolveAPIKey(name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"AUSPEX_GEMINI_API_KEY"},
		"anthropic_api_key": {"AUSPEX_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DeepCloneConfig creates a deep copy of the Config struct so callers can
// mutate their view without affecting the original.
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	// Clone the config struct (shallow copy first)
	clone := *c

	// Deep clone slice fields to prevent shared memory
	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	if len(c.Email.Recipients) > 0 {
		clone.Email.Recipients = make([]string, len(c.Email.Recipients))
		copy(clone.Email.Recipients, c.Email.Recipients)
	}

	return &clone
}
