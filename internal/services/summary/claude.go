package summary

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
)

const (
	defaultClaudeModel     = "claude-3-5-haiku-latest"
	defaultClaudeMaxTokens = 1024
)

// ClaudeProvider generates summaries with the Anthropic API. The client is
// created on first use.
type ClaudeProvider struct {
	apiKey string
	config *common.ClaudeConfig
	logger arbor.ILogger

	initOnce sync.Once
	client   *anthropic.Client
}

// NewClaudeProvider creates a Claude-backed summary provider
func NewClaudeProvider(apiKey string, config *common.ClaudeConfig, logger arbor.ILogger) *ClaudeProvider {
	return &ClaudeProvider{
		apiKey: apiKey,
		config: config,
		logger: logger,
	}
}

// Name identifies the provider in logs
func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) init() {
	p.initOnce.Do(func() {
		client := anthropic.NewClient(option.WithAPIKey(p.apiKey))
		p.client = &client
	})
}

// Generate produces completion text for the prompt
func (p *ClaudeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.init()

	model := p.config.Model
	if model == "" {
		model = defaultClaudeModel
	}
	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.config.Temperature))
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude generation failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("claude returned an empty response")
	}

	p.logger.Debug().
		Str("model", model).
		Int("prompt_length", len(prompt)).
		Int("response_length", text.Len()).
		Msg("Claude summary generated")

	return text.String(), nil
}
