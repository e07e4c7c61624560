package observability

import (
	"context"
	"log/slog"

	"github.com/regality/formchat/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
// Answer values are never logged.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPrompt: func(ctx context.Context, e *domain.FieldEvent) {
			logger.DebugContext(ctx, "prompt", "session_id", e.SessionID, "field", e.Field, "index", e.Cursor)
		},
		OnAnswer: func(ctx context.Context, e *domain.FieldEvent) {
			logger.DebugContext(ctx, "answer", "session_id", e.SessionID, "field", e.Field, "cursor", e.Cursor)
		},
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) {
			logger.InfoContext(ctx, "form completed", "session_id", e.SessionID, "fields", e.Fields)
		},
	}
}

// Combine fans each event out to every hook set, in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPrompt: func(ctx context.Context, e *domain.FieldEvent) {
			for _, h := range hooks {
				if h.OnPrompt != nil {
					h.OnPrompt(ctx, e)
				}
			}
		},
		OnAnswer: func(ctx context.Context, e *domain.FieldEvent) {
			for _, h := range hooks {
				if h.OnAnswer != nil {
					h.OnAnswer(ctx, e)
				}
			}
		},
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) {
			for _, h := range hooks {
				if h.OnFinish != nil {
					h.OnFinish(ctx, e)
				}
			}
		},
	}
}
