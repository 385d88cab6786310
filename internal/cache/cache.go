// Package cache provides the model cache: per-provider model listings kept
// in a single storage document with a freshness window.
//
// The cache is best-effort. Storage failures are logged, emitted as events,
// and otherwise treated as a miss; callers never see them.
package cache

import (
	"context"
	"time"

	"github.com/ferro-labs/ferrochat/providers"
)

// DocumentKey is the storage key of the cache document.
const DocumentKey = "ai-model-cache"

// DefaultTTL is how long a provider listing stays fresh.
const DefaultTTL = 24 * time.Hour

// Cache defines the model cache operations.
type Cache interface {
	Get(ctx context.Context, provider string) ([]providers.ModelInfo, bool)
	Put(ctx context.Context, provider string, models []providers.ModelInfo)
	Evict(ctx context.Context, provider string)
	EvictAll(ctx context.Context)
}

// document is the persisted shape:
// {"models": {"<provider>": {"timestamp": <epoch-ms>, "data": [...]}}}.
type document struct {
	Models map[string]entry `json:"models"`
}

type entry struct {
	Timestamp int64                 `json:"timestamp"`
	Data      []providers.ModelInfo `json:"data"`
}
