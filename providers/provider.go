// Package providers defines the known OpenAI-compatible LLM providers, the
// live model discovery against their /models endpoint, and the transports
// that carry a chat completion to /chat/completions.
//
// Core types: ProviderConfig, Registry, ModelInfo, Request, Response.
package providers

import (
	"context"

	"github.com/ferro-labs/ferrochat/models"
)

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client identification headers sent with every chat completion.
const (
	RefererHeader = "HTTP-Referer"
	RefererValue  = "https://aihubmix.com"
	TitleHeader   = "X-Title"
	TitleValue    = "AIHub API"
)

// ProviderConfig describes a provider endpoint and its default credential.
// Values are built once at startup and never mutated.
type ProviderConfig struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"`
}

// ModelInfo describes a single model offered by a provider, ready for
// display in a model picker.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Message is a single turn sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a non-streaming chat completion request.
type Request struct {
	Model    string
	Messages []Message
	Params   models.GenerationParams
}

// Usage carries token consumption statistics when the provider reports them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the part of a chat completion the client consumes.
type Response struct {
	Model   string
	Content string
	Usage   Usage
}

// Endpoint is where and as whom a transport sends a request.
type Endpoint struct {
	BaseURL string
	APIKey  string
}

// Transport sends a chat completion to an OpenAI-compatible endpoint.
//
// Implementations return *StatusError for non-2xx responses and an error
// wrapping ErrMalformedResponse when a 2xx body has no usable content. They
// must honour ctx cancellation and never retry.
type Transport interface {
	Complete(ctx context.Context, ep Endpoint, req Request) (*Response, error)
}
