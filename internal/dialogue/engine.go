package dialogue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/regality/formchat/pkg/domain"
)

// Engine advances a session through a catalog one turn at a time.
// It is a pure transition over session state: no I/O, no locking, no logging.
// Callers serialize access to a given session.
type Engine struct {
	catalog *domain.Catalog
	hooks   domain.LifecycleHooks
	now     func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine bound to catalog.
func NewEngine(catalog *domain.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine walks.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Start returns a session in its initial state.
func (e *Engine) Start(sessionID string) *domain.Session {
	return domain.NewSession(sessionID)
}

// Step applies one turn.
//
// A non-nil answer is attributed to the question asked by the previous turn
// (the field at Cursor-1). On a fresh session there is no such question and
// the answer is ignored. A nil answer on a session that is waiting for one
// re-asks the outstanding question without consuming a slot.
//
// While fields remain, the next prompt is emitted and the cursor advanced
// after it. Once every field is answered the record is returned and the
// session reset in place; the engine keeps no copy.
func (e *Engine) Step(ctx context.Context, s *domain.Session, answer *string) (domain.StepResult, error) {
	size := e.catalog.Size()
	if s.Cursor < 0 || s.Cursor > size || len(s.Answers) > s.Cursor {
		return domain.StepResult{}, fmt.Errorf("%w: cursor=%d answers=%d size=%d",
			domain.ErrInvariantViolation, s.Cursor, len(s.Answers), size)
	}

	if s.Cursor > 0 {
		if answer == nil {
			return e.reask(ctx, s)
		}
		if err := e.record(ctx, s, *answer); err != nil {
			return domain.StepResult{}, err
		}
	}

	if s.Cursor < size {
		field, err := e.catalog.FieldAt(s.Cursor)
		if err != nil {
			return domain.StepResult{}, invariant(err)
		}
		result := domain.AskNext(field, s.Cursor+1)
		e.emitPrompt(ctx, s, field, s.Cursor)
		s.Advance()
		return result, nil
	}

	record := s.Snapshot()
	s.Reset()
	e.emitFinish(ctx, s, record)
	return domain.Finished(record), nil
}

// Pending returns the question the session is waiting on, if any.
func (e *Engine) Pending(s *domain.Session) (domain.FieldDefinition, bool, error) {
	if s.Cursor == 0 {
		return domain.FieldDefinition{}, false, nil
	}
	field, err := e.catalog.FieldAt(s.Cursor - 1)
	if err != nil {
		return domain.FieldDefinition{}, false, invariant(err)
	}
	return field, true, nil
}

func (e *Engine) record(ctx context.Context, s *domain.Session, text string) error {
	// The outstanding question was already answered; only a desynchronized
	// session can get here.
	if len(s.Answers) != s.Cursor-1 {
		return fmt.Errorf("%w: cursor=%d answers=%d", domain.ErrInvariantViolation, s.Cursor, len(s.Answers))
	}
	field, err := e.catalog.FieldAt(s.Cursor - 1)
	if err != nil {
		return invariant(err)
	}
	s.RecordAnswer(field.Name, text)
	if e.hooks.OnAnswer != nil {
		e.hooks.OnAnswer(ctx, &domain.FieldEvent{
			EventBase: e.base(domain.EventAnswer, s.ID),
			Field:     field.Name,
			Cursor:    s.Cursor,
		})
	}
	return nil
}

func (e *Engine) reask(ctx context.Context, s *domain.Session) (domain.StepResult, error) {
	field, _, err := e.Pending(s)
	if err != nil {
		return domain.StepResult{}, err
	}
	e.emitPrompt(ctx, s, field, s.Cursor-1)
	return domain.AskNext(field, s.Cursor), nil
}

func (e *Engine) emitPrompt(ctx context.Context, s *domain.Session, f domain.FieldDefinition, index int) {
	if e.hooks.OnPrompt == nil {
		return
	}
	e.hooks.OnPrompt(ctx, &domain.FieldEvent{
		EventBase: e.base(domain.EventPrompt, s.ID),
		Field:     f.Name,
		Cursor:    index,
	})
}

func (e *Engine) emitFinish(ctx context.Context, s *domain.Session, r domain.Record) {
	if e.hooks.OnFinish == nil {
		return
	}
	e.hooks.OnFinish(ctx, &domain.FinishEvent{
		EventBase: e.base(domain.EventFinish, s.ID),
		Fields:    r.Len(),
	})
}

func (e *Engine) base(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: sessionID,
	}
}

func invariant(err error) error {
	if errors.Is(err, domain.ErrInvariantViolation) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInvariantViolation, err)
}
