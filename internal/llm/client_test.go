package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Configure(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid OpenAI config",
			config: Config{
				Provider: ProviderOpenAI,
				Model:    ModelGPT35Turbo,
				APIKey:   "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid Anthropic config",
			config: Config{
				Provider: ProviderAnthropic,
				Model:    ModelClaude3,
				APIKey:   "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid Ollama config",
			config: Config{
				Provider: ProviderOllama,
				Model:    ModelCodeLlama,
			},
			wantErr: false,
		},
		{
			name: "missing provider",
			config: Config{
				Model:  ModelGPT35Turbo,
				APIKey: "test-key",
			},
			wantErr: true,
		},
		{
			name: "missing model",
			config: Config{
				Provider: ProviderOpenAI,
				APIKey:   "test-key",
			},
			wantErr: true,
		},
		{
			name: "OpenAI without API key",
			config: Config{
				Provider: ProviderOpenAI,
				Model:    ModelGPT4,
			},
			wantErr: true,
		},
		{
			name: "unsupported provider",
			config: Config{
				Provider: "bedrock",
				Model:    "some-model",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(Config{})
			err := client.Configure(tt.config)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_ConfigureDefaults(t *testing.T) {
	client := NewClient(Config{})
	err := client.Configure(Config{
		Provider: ProviderOllama,
		Model:    ModelCodeLlama,
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", client.config.BaseURL)
	assert.Equal(t, defaultMaxTokens, client.config.MaxTokens)
}

func TestClient_CallNotConfigured(t *testing.T) {
	client := NewClient(Config{})

	_, err := client.Call(context.Background(), "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestClient_CallOpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ModelGPT35Turbo, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "generate sql", req.Messages[0].Content)

		resp := openAIResponse{
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: "SELECT 1"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOpenAI,
		Model:    ModelGPT35Turbo,
		APIKey:   "test-key",
		BaseURL:  server.URL,
	}))

	text, err := client.Call(context.Background(), "generate sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", text)
}

func TestClient_CallOpenAIAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(openAIResponse{
			Error: &openAIError{Message: "rate limited", Type: "rate_limit"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOpenAI,
		Model:    ModelGPT35Turbo,
		APIKey:   "test-key",
		BaseURL:  server.URL,
	}))

	_, err := client.Call(context.Background(), "generate sql")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClient_CallAnthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		resp := anthropicResponse{
			Content: []anthropicContent{
				{Type: "text", Text: "SELECT 2"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderAnthropic,
		Model:    ModelClaude3,
		APIKey:   "test-key",
		BaseURL:  server.URL,
	}))

	text, err := client.Call(context.Background(), "generate sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", text)
}

func TestClient_CallOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "SELECT 3", Done: true})
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOllama,
		Model:    ModelCodeLlama,
		BaseURL:  server.URL,
	}))

	text, err := client.Call(context.Background(), "generate sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 3", text)
}

func TestClient_CallHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{})
	require.NoError(t, client.Configure(Config{
		Provider: ProviderOllama,
		Model:    ModelCodeLlama,
		BaseURL:  server.URL,
	}))

	_, err := client.Call(context.Background(), "generate sql")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
