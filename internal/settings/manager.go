// Package settings manages the persisted user preference: which provider and
// model to chat with, and an optional API key that overrides the provider's
// default key.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ferro-labs/ferrochat/internal/cache"
	"github.com/ferro-labs/ferrochat/internal/events"
	"github.com/ferro-labs/ferrochat/internal/logging"
	"github.com/ferro-labs/ferrochat/internal/metrics"
	"github.com/ferro-labs/ferrochat/providers"
	"github.com/ferro-labs/ferrochat/storage"
)

// DocumentKey is the storage key of the persisted preference.
const DocumentKey = "apiConfig"

// Built-in defaults.
const (
	DefaultProvider = providers.NameAIHub
	DefaultModel    = "claude-3-sonnet-20240229"
)

// LegacyModelID is an obsolete model id written by earlier releases. A
// stored preference naming it is migrated to DefaultModel on load.
const LegacyModelID = "claude-3-sonnet"

// Validation errors reported by Validate.
var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrInvalidModel    = errors.New("invalid model")
)

// APIConfig is the user's chat preference.
type APIConfig struct {
	SelectedProvider string `json:"selectedProvider"`
	SelectedModel    string `json:"selectedModel"`
	CustomAPIKey     string `json:"customApiKey,omitempty"`
}

// Defaults returns the built-in preference.
func Defaults() APIConfig {
	return APIConfig{
		SelectedProvider: DefaultProvider,
		SelectedModel:    DefaultModel,
	}
}

// ModelDiscoverer fetches a live model listing from a provider.
type ModelDiscoverer interface {
	Discover(ctx context.Context, baseURL, apiKey string) ([]providers.ModelInfo, error)
}

// Manager loads, validates and persists the preference and resolves the
// provider and model listings it refers to.
type Manager struct {
	store     storage.Store
	registry  *providers.Registry
	cache     cache.Cache
	discovery ModelDiscoverer
	sink      events.Sink
}

// NewManager creates a Manager. A nil sink discards events.
func NewManager(store storage.Store, registry *providers.Registry, c cache.Cache, d ModelDiscoverer, sink events.Sink) *Manager {
	return &Manager{
		store:     store,
		registry:  registry,
		cache:     c,
		discovery: d,
		sink:      sink,
	}
}

// Load returns the persisted preference. An absent or corrupt record, or one
// naming an unregistered provider, yields Defaults wholesale. A record whose
// model is empty or LegacyModelID keeps its provider and custom key and gets
// DefaultModel.
func (m *Manager) Load(ctx context.Context) APIConfig {
	logger := logging.FromContext(ctx)

	raw, err := m.store.Get(ctx, DocumentKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("error reading api config, using defaults", "error", err.Error())
		}
		return Defaults()
	}

	var cfg APIConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		logger.Warn("corrupt api config, using defaults", "error", err.Error())
		return Defaults()
	}
	if !m.registry.Has(cfg.SelectedProvider) {
		logger.Warn("stored provider is not registered, using defaults", "provider", cfg.SelectedProvider)
		return Defaults()
	}
	if cfg.SelectedModel == "" || cfg.SelectedModel == LegacyModelID {
		cfg.SelectedModel = DefaultModel
	}
	return cfg
}

// Validate checks cfg against the registry.
func (m *Manager) Validate(cfg APIConfig) error {
	if !m.registry.Has(cfg.SelectedProvider) {
		return ErrInvalidProvider
	}
	if cfg.SelectedModel == "" {
		return ErrInvalidModel
	}
	return nil
}

// Save persists cfg as one document. An invalid cfg is logged and dropped;
// Save never reports failure to the caller.
func (m *Manager) Save(ctx context.Context, cfg APIConfig) {
	logger := logging.FromContext(ctx)

	if err := m.Validate(cfg); err != nil {
		logger.Warn("rejected api config", "error", err.Error(),
			"provider", cfg.SelectedProvider, "model", cfg.SelectedModel)
		m.sink.Emit(ctx, events.SettingsRejected, map[string]interface{}{
			"trace_id": logging.TraceIDFromContext(ctx),
			"provider": cfg.SelectedProvider,
			"model":    cfg.SelectedModel,
			"error":    err.Error(),
		})
		return
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		logger.Error("error encoding api config", "error", err.Error())
		return
	}
	if err := m.store.Put(ctx, DocumentKey, raw); err != nil {
		logger.Error("error saving api config", "error", err.Error())
		return
	}

	logger.Info("api config saved", "provider", cfg.SelectedProvider, "model", cfg.SelectedModel)
	m.sink.Emit(ctx, events.SettingsSaved, map[string]interface{}{
		"trace_id": logging.TraceIDFromContext(ctx),
		"provider": cfg.SelectedProvider,
		"model":    cfg.SelectedModel,
	})
}

// Reset removes the persisted preference so the next Load returns Defaults.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.store.Delete(ctx, DocumentKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// ResolveProvider looks up the provider cfg selects.
func (m *Manager) ResolveProvider(cfg APIConfig) (providers.ProviderConfig, error) {
	return m.registry.Get(cfg.SelectedProvider)
}

// EffectiveAPIKey returns the custom key when set, else the provider's
// default key.
func EffectiveAPIKey(cfg APIConfig, p providers.ProviderConfig) string {
	if cfg.CustomAPIKey != "" {
		return cfg.CustomAPIKey
	}
	return p.APIKey
}

// ListModelsFor returns the models a provider offers. A fresh cache entry is
// returned unless forceRefresh is set; otherwise the listing is discovered
// with the provider's default key and written back to the cache. Discovery
// errors are returned unchanged.
func (m *Manager) ListModelsFor(ctx context.Context, provider string, forceRefresh bool) ([]providers.ModelInfo, error) {
	p, err := m.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	if !forceRefresh {
		if cached, ok := m.cache.Get(ctx, provider); ok {
			return cached, nil
		}
	}

	logger := logging.FromContext(ctx).With("provider", provider)
	start := time.Now()
	list, err := m.discovery.Discover(ctx, p.BaseURL, p.APIKey)
	if err != nil {
		status := "error"
		var de *providers.DiscoveryError
		if errors.As(err, &de) && de.Status != 0 {
			status = statusLabel(de.Status)
		}
		metrics.DiscoveryRequestsTotal.WithLabelValues(provider, status).Inc()
		logger.Warn("model discovery failed", "error", err.Error())
		m.sink.Emit(ctx, events.DiscoveryFailed, map[string]interface{}{
			"trace_id": logging.TraceIDFromContext(ctx),
			"provider": provider,
			"error":    err.Error(),
		})
		return nil, err
	}

	metrics.DiscoveryRequestsTotal.WithLabelValues(provider, "success").Inc()
	logger.Debug("models discovered", "count", len(list), "duration_ms", time.Since(start).Milliseconds())
	m.sink.Emit(ctx, events.ModelsDiscovered, map[string]interface{}{
		"trace_id": logging.TraceIDFromContext(ctx),
		"provider": provider,
		"count":    len(list),
	})

	m.cache.Put(ctx, provider, list)
	return list, nil
}

// statusLabel buckets an HTTP status for metric labels.
func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "other"
	}
}
