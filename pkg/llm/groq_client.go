package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AagmanBhatia/Oora/pkg/models"
)

// ErrMalformedResponse is returned when the provider answered 200 but the
// body does not carry a completion.
var ErrMalformedResponse = errors.New("malformed completion response")

// APIError is a non-200 answer from the provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Groq API error (status %d): %s", e.StatusCode, e.Message)
}

// GroqClient talks to Groq's OpenAI-compatible chat completions endpoint
type GroqClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	modelName  string
}

// chatRequest is the body of a chat completions request. Sampling
// parameters are left out so provider defaults apply.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewGroqClient creates a client for the given key and model. An empty
// baseURL selects the public Groq endpoint.
func NewGroqClient(apiKey, modelName, baseURL string, httpClient *http.Client) *GroqClient {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GroqClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		modelName:  modelName,
	}
}

// Model returns the model identifier sent with every request.
func (c *GroqClient) Model() string {
	return c.modelName
}

// Chat sends the conversation and returns the first choice as an assistant message.
func (c *GroqClient) Chat(ctx context.Context, messages []models.Message) (models.Message, error) {
	req := chatRequest{
		Model:    c.modelName,
		Messages: make([]chatMessage, len(messages)),
	}
	for i, msg := range messages {
		req.Messages[i] = chatMessage{Role: string(msg.Role), Content: msg.Content}
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.Message{}, &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.Message{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return models.Message{}, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	reply := parsed.Choices[0].Message
	if reply.Role != "" {
		role, err := models.ParseRole(reply.Role)
		if err != nil {
			return models.Message{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if role != models.RoleAssistant {
			return models.Message{}, fmt.Errorf("%w: reply has role %q", ErrMalformedResponse, role)
		}
	}

	return models.Assistant(reply.Content), nil
}

// apiErrorMessage prefers the OpenAI-style error.message over the raw body.
func apiErrorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// Close cleans up any resources
func (c *GroqClient) Close() error {
	// No cleanup needed for HTTP client
	return nil
}
