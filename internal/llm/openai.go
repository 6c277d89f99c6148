package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"linearrag/internal/config"
)

// OpenAIAnswerer calls the Chat Completions API for a single turn,
// grounded on the teacher's internal/llm/openai.Client.New wiring but
// stripped of streaming, tool calls, and image attachments.
type OpenAIAnswerer struct {
	sdk     sdk.Client
	model   string
	timeout time.Duration
}

// NewOpenAIAnswerer builds an OpenAIAnswerer from cfg.
func NewOpenAIAnswerer(cfg config.LLMConfig, httpClient *http.Client) *OpenAIAnswerer {
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
		model = "gpt-4o-mini"
	}
	return &OpenAIAnswerer{
		sdk:     sdk.NewClient(opts...),
		model:   model,
		timeout: timeoutOrDefault(cfg.TimeoutSec),
	}
}

func (a *OpenAIAnswerer) Answer(ctx context.Context, systemPrompt, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := []sdk.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, sdk.SystemMessage(systemPrompt))
	}
	messages = append(messages, sdk.UserMessage(question))

	comp, err := a.sdk.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(a.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("llm: openai chat completion: %w", err)
	}
	if len(comp.Choices) == 0 {
		return "", fmt.Errorf("llm: openai chat completion: no choices returned")
	}
	return comp.Choices[0].Message.Content, nil
}

func timeoutOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
