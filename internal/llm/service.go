package llm

import (
	"context"
)

// Service defines the interface for language model operations. One
// request per call, synchronous, no streaming. Retry policy belongs to
// the caller.
type Service interface {
	Call(ctx context.Context, prompt string) (string, error)
	Configure(config Config) error
}

// Config represents language model client configuration
type Config struct {
	Provider    string  `json:"provider"` // openai, anthropic, ollama
	Model       string  `json:"model"`
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Provider constants for different LLM providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Model constants for common models
const (
	ModelGPT4       = "gpt-4"
	ModelGPT35Turbo = "gpt-3.5-turbo"
	ModelClaude3    = "claude-3-sonnet-20240229"
	ModelCodeLlama  = "codellama"
)
