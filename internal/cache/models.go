package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ferro-labs/ferrochat/internal/events"
	"github.com/ferro-labs/ferrochat/internal/logging"
	"github.com/ferro-labs/ferrochat/internal/metrics"
	"github.com/ferro-labs/ferrochat/providers"
	"github.com/ferro-labs/ferrochat/storage"
)

// Models is a Cache persisted as one JSON document in a storage.Store.
//
// Read-modify-write of the document is not atomic. Two writers may race and
// the last write wins, which is acceptable because every entry can be
// re-derived from model discovery.
type Models struct {
	store storage.Store
	ttl   time.Duration
	sink  events.Sink
	now   func() time.Time
}

// NewModels creates a model cache over store. A non-positive ttl selects
// DefaultTTL; a nil sink discards events.
func NewModels(store storage.Store, ttl time.Duration, sink events.Sink) *Models {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Models{store: store, ttl: ttl, sink: sink, now: time.Now}
}

// WithClock replaces the time source and returns m.
func (m *Models) WithClock(now func() time.Time) *Models {
	m.now = now
	return m
}

// Get returns the cached listing for provider if it is still fresh. An
// expired entry is evicted.
func (m *Models) Get(ctx context.Context, provider string) ([]providers.ModelInfo, bool) {
	doc, _ := m.read(ctx)
	e, ok := doc.Models[provider]
	if !ok {
		metrics.ModelCacheLookups.WithLabelValues(provider, "miss").Inc()
		return nil, false
	}

	age := m.now().Sub(time.UnixMilli(e.Timestamp))
	if age > m.ttl {
		metrics.ModelCacheLookups.WithLabelValues(provider, "expired").Inc()
		logging.FromContext(ctx).Debug("model cache entry expired", "provider", provider, "age", age.String())
		m.Evict(ctx, provider)
		return nil, false
	}

	metrics.ModelCacheLookups.WithLabelValues(provider, "hit").Inc()
	return e.Data, true
}

// Put replaces the listing for provider, stamped with the current time.
func (m *Models) Put(ctx context.Context, provider string, models []providers.ModelInfo) {
	doc, _ := m.read(ctx)
	doc.Models[provider] = entry{
		Timestamp: m.now().UnixMilli(),
		Data:      models,
	}
	m.write(ctx, doc)
}

// Evict removes the listing for provider.
func (m *Models) Evict(ctx context.Context, provider string) {
	doc, found := m.read(ctx)
	if !found {
		return
	}
	if _, ok := doc.Models[provider]; !ok {
		return
	}
	delete(doc.Models, provider)
	m.write(ctx, doc)
}

// EvictAll removes every listing.
func (m *Models) EvictAll(ctx context.Context) {
	m.write(ctx, document{Models: map[string]entry{}})
}

// read loads the cache document. A missing, unreadable or corrupt document
// yields an empty one; found reports whether a document was decoded.
func (m *Models) read(ctx context.Context) (doc document, found bool) {
	doc = document{Models: map[string]entry{}}
	raw, err := m.store.Get(ctx, DocumentKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.fail(ctx, events.CacheReadFailed, "error reading model cache", err)
		}
		return doc, false
	}

	var decoded document
	if err := json.Unmarshal(raw, &decoded); err != nil {
		m.fail(ctx, events.CacheReadFailed, "error decoding model cache", err)
		return doc, false
	}
	if decoded.Models != nil {
		doc.Models = decoded.Models
	}
	return doc, true
}

func (m *Models) write(ctx context.Context, doc document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		m.fail(ctx, events.CacheWriteFailed, "error encoding model cache", err)
		return
	}
	if err := m.store.Put(ctx, DocumentKey, raw); err != nil {
		m.fail(ctx, events.CacheWriteFailed, "error writing model cache", err)
	}
}

func (m *Models) fail(ctx context.Context, subject, msg string, err error) {
	logging.FromContext(ctx).Warn(msg, "error", err.Error())
	m.sink.Emit(ctx, subject, map[string]interface{}{
		"trace_id": logging.TraceIDFromContext(ctx),
		"error":    err.Error(),
	})
}
