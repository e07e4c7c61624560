package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPrompt EventType = "prompt"
	EventAnswer EventType = "answer"
	EventFinish EventType = "finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// FieldEvent is emitted when a field is asked or answered.
type FieldEvent struct {
	EventBase
	Field  string `json:"field"`
	Cursor int    `json:"cursor"`
}

// FinishEvent is emitted when a session completes and resets.
type FinishEvent struct {
	EventBase
	Fields int `json:"fields"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks must not block; the engine calls them inline.
type LifecycleHooks struct {
	OnPrompt func(context.Context, *FieldEvent)
	OnAnswer func(context.Context, *FieldEvent)
	OnFinish func(context.Context, *FinishEvent)
}
