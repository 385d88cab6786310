package ferrochat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ferro-labs/ferrochat/internal/events"
	"github.com/ferro-labs/ferrochat/internal/logging"
	"github.com/ferro-labs/ferrochat/internal/metrics"
	"github.com/ferro-labs/ferrochat/internal/settings"
	"github.com/ferro-labs/ferrochat/models"
	"github.com/ferro-labs/ferrochat/providers"
)

// SendChatMessage sends text to the selected provider and model after the
// non-error turns of history, and returns the assistant's reply.
//
// Configuration problems are reported before any network call. The request
// is bounded by the client timeout and never retried. Every error is
// prefixed with "API error: " and wraps one of the typed errors of this
// package, so errors.As can recover it.
func (c *Client) SendChatMessage(ctx context.Context, text string, history []ChatMessage) (string, error) {
	ctx = logging.EnsureTraceID(ctx)
	log := logging.FromContext(ctx)

	cfg := c.settings.Load(ctx)
	p, err := c.resolve(cfg)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(cfg.SelectedProvider, cfg.SelectedModel, "rejected").Inc()
		return "", c.fail(ctx, cfg, 0, err)
	}

	req := providers.Request{
		Model:    cfg.SelectedModel,
		Messages: outbound(history, text),
		Params:   models.ParamsFor(cfg.SelectedModel),
	}
	ep := providers.Endpoint{BaseURL: p.BaseURL, APIKey: settings.EffectiveAPIKey(cfg, p)}

	log.Debug("sending chat request",
		"provider", p.Name,
		"model", req.Model,
		"messages", len(req.Messages),
		"max_tokens", req.Params.MaxTokens,
		"custom_key", cfg.CustomAPIKey != "",
	)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.Complete(reqCtx, ep, req)
	latency := time.Since(start)
	metrics.ChatRequestDuration.WithLabelValues(p.Name, req.Model).Observe(latency.Seconds())

	if err != nil {
		timedOut := errors.Is(reqCtx.Err(), context.DeadlineExceeded)
		metrics.ChatRequestsTotal.WithLabelValues(p.Name, req.Model, "error").Inc()
		return "", c.fail(ctx, cfg, latency, classify(err, timedOut, c.timeout))
	}

	metrics.ChatRequestsTotal.WithLabelValues(p.Name, req.Model, "success").Inc()
	metrics.TokensInput.WithLabelValues(p.Name, req.Model).Add(float64(resp.Usage.PromptTokens))
	metrics.TokensOutput.WithLabelValues(p.Name, req.Model).Add(float64(resp.Usage.CompletionTokens))

	log.Info("chat request completed",
		"provider", p.Name,
		"model", req.Model,
		"latency_ms", latency.Milliseconds(),
		"total_tokens", resp.Usage.TotalTokens,
	)
	c.emit(ctx, events.ChatCompleted, map[string]interface{}{
		"trace_id":          logging.TraceIDFromContext(ctx),
		"provider":          p.Name,
		"model":             req.Model,
		"duration_ms":       latency.Milliseconds(),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})
	return resp.Content, nil
}

// resolve checks the selection and returns the provider to call.
func (c *Client) resolve(cfg APIConfig) (providers.ProviderConfig, error) {
	if cfg.SelectedProvider == "" {
		return providers.ProviderConfig{}, &ConfigurationError{Reason: "no provider selected"}
	}
	p, err := c.settings.ResolveProvider(cfg)
	if err != nil {
		return providers.ProviderConfig{}, &ConfigurationError{Reason: "provider not available", Err: err}
	}
	if settings.EffectiveAPIKey(cfg, p) == "" {
		return providers.ProviderConfig{}, &ConfigurationError{Reason: fmt.Sprintf("no API key configured for %s", p.Name)}
	}
	if cfg.SelectedModel == "" {
		return providers.ProviderConfig{}, &ConfigurationError{Reason: "no model selected"}
	}
	return p, nil
}

// fail records a failed request and wraps err for the caller.
func (c *Client) fail(ctx context.Context, cfg APIConfig, latency time.Duration, err error) error {
	kind := errorType(err)
	metrics.ChatErrors.WithLabelValues(cfg.SelectedProvider, kind).Inc()
	logging.FromContext(ctx).Error("chat request failed",
		"provider", cfg.SelectedProvider,
		"model", cfg.SelectedModel,
		"error_type", kind,
		"error", err.Error(),
	)
	c.emit(ctx, events.ChatFailed, map[string]interface{}{
		"trace_id":    logging.TraceIDFromContext(ctx),
		"provider":    cfg.SelectedProvider,
		"model":       cfg.SelectedModel,
		"duration_ms": latency.Milliseconds(),
		"error_type":  kind,
		"error":       err.Error(),
	})
	return fmt.Errorf("API error: %w", err)
}

// outbound builds the provider message list: history without error turns,
// in order, then the new user turn.
func outbound(history []ChatMessage, text string) []providers.Message {
	msgs := make([]providers.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Error {
			continue
		}
		msgs = append(msgs, providers.Message{Role: m.Role, Content: m.Content})
	}
	return append(msgs, providers.Message{Role: providers.RoleUser, Content: text})
}
