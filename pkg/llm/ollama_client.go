package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/AagmanBhatia/Oora/pkg/models"
)

// OllamaClient is a client that uses a local Ollama server as the completion provider
type OllamaClient struct {
	client    *api.Client
	modelName string
}

// NewOllamaClient creates a new client for interacting with an Ollama server.
// baseURL is the server root, e.g. http://localhost:11434.
func NewOllamaClient(modelName string, baseURL string, httpClient *http.Client) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	// The api package appends /api/... itself.
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OllamaClient{
		client:    api.NewClient(u, httpClient),
		modelName: modelName,
	}, nil
}

// Model returns the model identifier sent with every request.
func (c *OllamaClient) Model() string {
	return c.modelName
}

// Chat processes a conversation and returns a response
func (c *OllamaClient) Chat(ctx context.Context, messages []models.Message) (models.Message, error) {
	ollamaMessages := make([]api.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.modelName,
		Messages: ollamaMessages,
		Stream:   &stream,
	}

	// With streaming off the callback runs once, but accumulate anyway in
	// case the server still sends chunks.
	var content strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("Ollama chat failed: %w", err)
	}

	return models.Assistant(content.String()), nil
}

// Close cleans up any resources
func (c *OllamaClient) Close() error {
	return nil
}
