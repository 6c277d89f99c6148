package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"linearrag/internal/config"
)

const anthropicDefaultMaxTokens int64 = 1024

// AnthropicAnswerer calls the Messages API for a single turn, grounded
// on the teacher's internal/llm/anthropic.Client.New wiring but
// stripped of extended thinking, prompt caching, and tool use.
type AnthropicAnswerer struct {
	sdk       anthropic.Client
	model     string
	maxTokens int64
	timeout   int
}

// NewAnthropicAnswerer builds an AnthropicAnswerer from cfg.
func NewAnthropicAnswerer(cfg config.LLMConfig, httpClient *http.Client) *AnthropicAnswerer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	return &AnthropicAnswerer{
		sdk:       anthropic.NewClient(opts...),
		model:     model,
		maxTokens: anthropicDefaultMaxTokens,
		timeout:   cfg.TimeoutSec,
	}
}

func (a *AnthropicAnswerer) Answer(ctx context.Context, systemPrompt, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(a.timeout))
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	msg, err := a.sdk.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: anthropic message: %w", err)
	}
	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
