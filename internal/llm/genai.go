package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"linearrag/internal/config"
)

// GenAIAnswerer calls Gemini's GenerateContent for a single turn,
// grounded on the teacher's internal/llm/google.Client.New wiring but
// stripped of streaming and function calling.
type GenAIAnswerer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenAIAnswerer builds a GenAIAnswerer from cfg.
func NewGenAIAnswerer(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (*GenAIAnswerer, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	httpOpts := genai.HTTPOptions{}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		httpOpts.BaseURL = strings.TrimSuffix(base, "/") + "/"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      strings.TrimSpace(cfg.APIKey),
		HTTPClient:  httpClient,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: init genai client: %w", err)
	}
	return &GenAIAnswerer{
		client:  client,
		model:   model,
		timeout: timeoutOrDefault(cfg.TimeoutSec),
	}, nil
}

func (a *GenAIAnswerer) Answer(ctx context.Context, systemPrompt, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(question, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("llm: genai generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("llm: genai generate content: no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
