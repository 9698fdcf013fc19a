// Package llm provides tool-calling chat completion clients.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

// ToolChoiceAuto lets the model decide whether to call tools.
const ToolChoiceAuto = "auto"

// ErrEmptyResponse is returned when the provider answers without any choice
// or candidate.
var ErrEmptyResponse = errors.New("llm: response has no choices")

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []model.Message
	Tools       []model.ToolDefinition
	ToolChoice  string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response. Content is empty when
// the model only requested tool calls.
type CompletionResponse struct {
	Content    string
	ToolCalls  []model.ToolCallRequest
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// Options carries provider credentials.
type Options struct {
	APIKey string
	// BaseURL points the OpenAI client at a relay. Ignored by other providers.
	BaseURL string
}

// NewClient creates a new LLM client based on provider.
func NewClient(ctx context.Context, provider Provider, opts Options) (Client, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(opts.APIKey, opts.BaseURL)
	case ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, opts.APIKey)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
