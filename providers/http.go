package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// chatRequest is the OpenAI-compatible /chat/completions body. Stop is
// always sent as null and stream as false.
type chatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	MaxTokens        int       `json:"max_tokens"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	Stream           bool      `json:"stream"`
	Stop             []string  `json:"stop"`
}

type chatResponseMeta struct {
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorResponse struct {
	Error *errorDetail `json:"error"`
}

// HTTPTransport talks to any OpenAI-compatible chat endpoint with net/http
// and controls the exact request body and headers.
type HTTPTransport struct {
	httpClient *http.Client
}

// NewHTTPTransport creates an HTTPTransport. A nil client selects
// http.DefaultClient; the request deadline comes from ctx.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{httpClient: client}
}

// Complete sends a chat completion request and extracts the first choice.
func (t *HTTPTransport) Complete(ctx context.Context, ep Endpoint, req Request) (*Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:            req.Model,
		Messages:         req.Messages,
		Temperature:      req.Params.Temperature,
		TopP:             req.Params.TopP,
		MaxTokens:        req.Params.MaxTokens,
		FrequencyPenalty: req.Params.FrequencyPenalty,
		PresencePenalty:  req.Params.PresencePenalty,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(ep.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+ep.APIKey)
	httpReq.Header.Set(RefererHeader, RefererValue)
	httpReq.Header.Set(TitleHeader, TitleValue)

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, statusError(httpResp.StatusCode, respBody)
	}
	return parseCompletion(respBody)
}

// statusError builds a StatusError, preferring the provider's own message.
func statusError(status int, body []byte) *StatusError {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &StatusError{StatusCode: status, Message: fmt.Sprintf("request failed with status %d", status)}
	}
	if errResp.Error != nil && errResp.Error.Message != "" {
		return &StatusError{StatusCode: status, Message: errResp.Error.Message}
	}
	return &StatusError{StatusCode: status, Message: "API request failed"}
}

// parseCompletion extracts choices[0].message.content from a 2xx body.
func parseCompletion(body []byte) (*Response, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedResponse, err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: response is not an object", ErrMalformedResponse)
	}

	content, ok := firstChoiceContent(obj)
	if !ok {
		return nil, fmt.Errorf("%w: no valid content in response", ErrMalformedResponse)
	}

	var meta chatResponseMeta
	_ = json.Unmarshal(body, &meta)
	return &Response{Model: meta.Model, Content: content, Usage: meta.Usage}, nil
}

func firstChoiceContent(obj map[string]interface{}) (string, bool) {
	choices, ok := obj["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	msg, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "", false
	}
	content, ok := msg["content"].(string)
	if !ok || content == "" {
		return "", false
	}
	return content, true
}
