package summary

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/auspex/internal/common"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider generates summaries with the Google Gemini API. The client
// is created on first use so a configured-but-unused provider costs nothing.
type GeminiProvider struct {
	apiKey string
	config *common.GeminiConfig
	logger arbor.ILogger

	initOnce sync.Once
	client   *genai.Client
	initErr  error
}

// NewGeminiProvider creates a Gemini-backed summary provider
func NewGeminiProvider(apiKey string, config *common.GeminiConfig, logger arbor.ILogger) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		config: config,
		logger: logger,
	}
}

// Name identifies the provider in logs
func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) init(ctx context.Context) error {
	p.initOnce.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			p.initErr = fmt.Errorf("failed to initialize genai client: %w", err)
			return
		}
		p.client = client
	})
	return p.initErr
}

// Generate produces completion text for the prompt
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.init(ctx); err != nil {
		return "", err
	}

	model := p.config.Model
	if model == "" {
		model = defaultGeminiModel
	}

	genConfig := &genai.GenerateContentConfig{}
	if p.config.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(p.config.Temperature)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	p.logger.Debug().
		Str("model", model).
		Int("prompt_length", len(prompt)).
		Int("response_length", len(text)).
		Msg("Gemini summary generated")

	return text, nil
}
