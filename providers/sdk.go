package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// SDKTransport sends chat completions through the official openai-go
// client. Retries are disabled; the deadline comes from ctx.
type SDKTransport struct {
	httpClient *http.Client
}

// NewSDKTransport creates an SDKTransport. A nil client selects
// http.DefaultClient.
func NewSDKTransport(client *http.Client) *SDKTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &SDKTransport{httpClient: client}
}

// Complete sends a chat completion request using the openai-go SDK.
func (t *SDKTransport) Complete(ctx context.Context, ep Endpoint, req Request) (*Response, error) {
	client := openai.NewClient(
		option.WithAPIKey(ep.APIKey),
		option.WithBaseURL(strings.TrimRight(ep.BaseURL, "/")+"/"),
		option.WithHeader(RefererHeader, RefererValue),
		option.WithHeader(TitleHeader, TitleValue),
		option.WithMaxRetries(0),
		option.WithHTTPClient(t.httpClient),
	)

	params := openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    buildSDKMessages(req.Messages),
		Temperature: openai.Float(req.Params.Temperature),
		TopP:        openai.Float(req.Params.TopP),
		MaxTokens:   openai.Int(int64(req.Params.MaxTokens)),
	}
	if req.Params.FrequencyPenalty != nil {
		params.FrequencyPenalty = openai.Float(*req.Params.FrequencyPenalty)
	}
	if req.Params.PresencePenalty != nil {
		params.PresencePenalty = openai.Float(*req.Params.PresencePenalty)
	}

	// The raw body goes through parseCompletion so both transports accept
	// and reject the same 2xx payloads.
	var raw []byte
	if _, err := client.Chat.Completions.New(ctx, params, option.WithResponseBodyInto(&raw)); err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = fmt.Sprintf("request failed with status %d", apiErr.StatusCode)
			}
			return nil, &StatusError{StatusCode: apiErr.StatusCode, Message: msg}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return parseCompletion(raw)
}

// buildSDKMessages converts messages to the openai-go SDK union type.
func buildSDKMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
