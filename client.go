// Package ferrochat is the core of a chat client for OpenAI-compatible LLM
// providers.
//
// The Client type is the main entry point: create one with New, then call
// SendChatMessage to converse with the selected provider and model. The
// selection (provider, model, optional custom API key) is persisted through
// SetAPIConfig, and per-provider model listings are discovered live and
// cached for 24 hours.
//
// Clients are configured via [Config], which can be loaded from a JSON, YAML
// or TOML file using [LoadConfig].
package ferrochat

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/ferro-labs/ferrochat/internal/cache"
	"github.com/ferro-labs/ferrochat/internal/settings"
	"github.com/ferro-labs/ferrochat/providers"
	"github.com/ferro-labs/ferrochat/storage"
)

// DefaultTimeout bounds a chat request when Config.TimeoutSeconds is zero.
const DefaultTimeout = 60 * time.Second

// EventHookFunc is called asynchronously after a client event (chat
// completed or failed, models discovered, settings saved, and so on).
type EventHookFunc func(ctx context.Context, subject string, data map[string]interface{})

// APIConfig is the persisted user selection.
type APIConfig = settings.APIConfig

// ModelInfo describes a model offered by a provider.
type ModelInfo = providers.ModelInfo

// ProviderConfig describes a provider endpoint.
type ProviderConfig = providers.ProviderConfig

// ChatMessage is one turn of a conversation held by the caller. Turns with
// Error set explain a failure and are never sent to the provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Error   bool   `json:"error,omitempty"`
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	store      storage.Store
	transport  providers.Transport
	httpClient *http.Client
	getenv     func(string) string
	providers  []providers.ProviderConfig
}

// WithStore sets the storage used for the preference and model cache. The
// caller keeps ownership; Close does not close it.
func WithStore(s storage.Store) Option {
	return func(o *options) { o.store = s }
}

// WithTransport replaces the chat transport selected by Config.Transport.
func WithTransport(t providers.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithHTTPClient sets the HTTP client used for discovery and chat.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithGetenv sets the function provider default keys are read through.
func WithGetenv(getenv func(string) string) Option {
	return func(o *options) { o.getenv = getenv }
}

// WithProviders replaces the built-in provider table. Config overrides
// still apply.
func WithProviders(cfgs ...providers.ProviderConfig) Option {
	return func(o *options) { o.providers = cfgs }
}

// Client owns the provider registry, the persisted selection and the model
// cache, and sends chat requests. It is safe for concurrent use.
type Client struct {
	mu        sync.RWMutex
	hooks     []EventHookFunc
	closed    bool
	pending   sync.WaitGroup
	registry  *providers.Registry
	settings  *settings.Manager
	cache     cache.Cache
	transport providers.Transport
	timeout   time.Duration
	store     storage.Store
	ownsStore bool
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{getenv: os.Getenv}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}

	c := &Client{timeout: DefaultTimeout}
	if cfg.TimeoutSeconds > 0 {
		c.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c.store = o.store
	if c.store == nil {
		s, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening storage: %w", err)
		}
		c.store = s
		c.ownsStore = true
	}

	base := o.providers
	if base == nil {
		base = providers.DefaultProviders(o.getenv)
	}
	c.registry = providers.NewRegistry(providers.ApplyOverrides(base, cfg.overrides())...)

	c.cache = cache.NewModels(c.store, cache.DefaultTTL, c.emit)
	c.settings = settings.NewManager(c.store, c.registry, c.cache, providers.NewDiscoverer(o.httpClient), c.emit)

	c.transport = o.transport
	if c.transport == nil {
		switch cfg.Transport {
		case TransportSDK:
			c.transport = providers.NewSDKTransport(o.httpClient)
		default:
			c.transport = providers.NewHTTPTransport(o.httpClient)
		}
	}
	return c, nil
}

// Close waits for running event hooks, then releases the storage the client
// opened itself. Events raised after Close are dropped.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.pending.Wait()
	if c.ownsStore {
		return c.store.Close()
	}
	return nil
}

// AddHook registers an EventHookFunc that is called asynchronously on each
// client event. Multiple hooks may be registered; all are invoked for every
// event.
func (c *Client) AddHook(fn EventHookFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// emit calls all registered hooks asynchronously. pending is incremented
// under the lock so Close never waits while a new hook is being added.
func (c *Client) emit(ctx context.Context, subject string, data map[string]interface{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	for _, h := range c.hooks {
		fn := h
		c.pending.Add(1)
		go func() {
			defer c.pending.Done()
			fn(ctx, subject, data)
		}()
	}
}

// GetAPIConfig returns the effective selection.
func (c *Client) GetAPIConfig(ctx context.Context) APIConfig {
	return c.settings.Load(ctx)
}

// SetAPIConfig persists cfg. An invalid cfg is logged and dropped without
// an error; use ValidateAPIConfig to check it first.
func (c *Client) SetAPIConfig(ctx context.Context, cfg APIConfig) {
	c.settings.Save(ctx, cfg)
}

// ValidateAPIConfig reports ErrInvalidProvider or ErrInvalidModel for a
// selection SetAPIConfig would reject.
func (c *Client) ValidateAPIConfig(cfg APIConfig) error {
	return c.settings.Validate(cfg)
}

// ResetAPIConfig removes the persisted selection.
func (c *Client) ResetAPIConfig(ctx context.Context) error {
	return c.settings.Reset(ctx)
}

// GetProviders returns every registered provider in registry order.
func (c *Client) GetProviders() []ProviderConfig {
	return c.registry.List()
}

// GetProviderConfig returns a provider by name, or *UnknownProviderError.
func (c *Client) GetProviderConfig(name string) (ProviderConfig, error) {
	return c.registry.Get(name)
}

// GetProviderModels returns the models a provider offers, from cache when
// fresh.
func (c *Client) GetProviderModels(ctx context.Context, name string) ([]ModelInfo, error) {
	return c.settings.ListModelsFor(ctx, name, false)
}

// RefreshProviderModels discards the cached listing for a provider and
// discovers it again.
func (c *Client) RefreshProviderModels(ctx context.Context, name string) ([]ModelInfo, error) {
	if _, err := c.registry.Get(name); err != nil {
		return nil, err
	}
	c.cache.Evict(ctx, name)
	return c.settings.ListModelsFor(ctx, name, true)
}

// ClearModelCache discards every cached model listing.
func (c *Client) ClearModelCache(ctx context.Context) {
	c.cache.EvictAll(ctx)
}

// Timeout returns the chat request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}
