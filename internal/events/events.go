// Package events defines the observability sink internal packages emit
// structured diagnostics through.
package events

import "context"

// Sink receives a structured event. Implementations must not block.
type Sink func(ctx context.Context, subject string, data map[string]interface{})

// Event subjects.
const (
	ChatCompleted    = "chat.completed"
	ChatFailed       = "chat.failed"
	ModelsDiscovered = "models.discovered"
	DiscoveryFailed  = "models.discovery_failed"
	CacheReadFailed  = "cache.read_failed"
	CacheWriteFailed = "cache.write_failed"
	SettingsSaved    = "settings.saved"
	SettingsRejected = "settings.rejected"
)

// Nop discards every event.
func Nop(context.Context, string, map[string]interface{}) {}

// Emit calls s when it is non-nil.
func (s Sink) Emit(ctx context.Context, subject string, data map[string]interface{}) {
	if s != nil {
		s(ctx, subject, data)
	}
}
