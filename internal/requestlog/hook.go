package requestlog

import (
	"context"
	"time"

	"github.com/ferro-labs/ferrochat/internal/events"
	"github.com/ferro-labs/ferrochat/internal/logging"
)

// Hook returns an event sink that writes chat.completed and chat.failed
// events to w. Other subjects are ignored. Write failures are logged.
func Hook(w Writer) events.Sink {
	return func(ctx context.Context, subject string, data map[string]interface{}) {
		var outcome string
		switch subject {
		case events.ChatCompleted:
			outcome = OutcomeCompleted
		case events.ChatFailed:
			outcome = OutcomeFailed
		default:
			return
		}

		entry := Entry{
			TraceID:          str(data["trace_id"]),
			Outcome:          outcome,
			Provider:         str(data["provider"]),
			Model:            str(data["model"]),
			DurationMs:       int64(num(data["duration_ms"])),
			PromptTokens:     num(data["prompt_tokens"]),
			CompletionTokens: num(data["completion_tokens"]),
			TotalTokens:      num(data["total_tokens"]),
			ErrorType:        str(data["error_type"]),
			ErrorMessage:     str(data["error"]),
			CreatedAt:        time.Now().UTC(),
		}
		// Hooks may run after the request context is done.
		if err := w.Write(context.WithoutCancel(ctx), entry); err != nil {
			logging.FromContext(ctx).Warn("request log write failed", "error", err.Error())
		}
	}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func num(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
