package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const jsonOnlyDirective = "Respond with strictly valid JSON only. No markdown, no code fences, no commentary."

const (
	requestTimeout = 120 * time.Second
	jsonTemp       = 0.3
)

// Config holds what a generative client needs from the environment.
// BaseURL overrides the upstream endpoint for tests and proxies.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// OpenAIClient executes generation calls against the chat completions
// API. It owns request construction and raw-text-to-JSON parsing and
// nothing else: no retries, no logging, no shape validation.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: requestTimeout}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) GenerateJSON(ctx context.Context, instructions string, input any) (json.RawMessage, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal input payload: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions + "\n\n" + jsonOnlyDirective},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: jsonTemp,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ParseError{RawText: ""}
	}

	content := resp.Choices[0].Message.Content
	text := stripFences(content)
	if !json.Valid([]byte(text)) {
		return nil, &ParseError{RawText: content}
	}
	return json.RawMessage(text), nil
}

// upstreamError maps go-openai failures onto UpstreamError. API and
// request errors carry the HTTP status; pure transport failures carry 0.
func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{Status: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return &UpstreamError{Body: err.Error()}
}

// stripFences drops a markdown code fence if a lax gateway wrapped the
// JSON in one despite the JSON-only directive.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
