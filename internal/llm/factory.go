package llm

import (
	"context"
	"fmt"
	"net/http"

	"linearrag/internal/config"
)

// New selects an Answerer backend from cfg.Provider ("openai",
// "anthropic", or "genai"), matching spec.md section 6's external LM
// step.
func New(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (Answerer, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIAnswerer(cfg, httpClient), nil
	case "anthropic":
		return NewAnthropicAnswerer(cfg, httpClient), nil
	case "genai":
		return NewGenAIAnswerer(ctx, cfg, httpClient)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
