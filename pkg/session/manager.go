package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/regality/formchat/internal/logging"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store  ports.SessionStore
	engine ports.DialogueEngine

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	sink    ports.SubmissionSink
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithSink sets the destination for finished records.
func WithSink(sink ports.SubmissionSink) Option {
	return func(m *Manager) {
		m.sink = sink
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the UpdatedAt source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager over the given store and engine.
func NewManager(store ports.SessionStore, engine ports.DialogueEngine, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		engine:  engine,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start creates (or restarts) the session for sessionID in its initial state.
func (m *Manager) Start(ctx context.Context, sessionID string) (*domain.Session, error) {
	s := domain.NewSession(sessionID)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.save(ctx, sessionID, s)
	})
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Step runs one dialogue turn for sessionID. An unknown ID starts a new session.
//
// On completion the record is submitted before the reset session is saved.
// The returned result is the engine's, unchanged.
func (m *Manager) Step(ctx context.Context, sessionID string, answer *string) (domain.StepResult, error) {
	var result domain.StepResult
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.loadOrNew(ctx, sessionID)
		if err != nil {
			return err
		}

		result, err = m.engine.Step(ctx, s, answer)
		if err != nil {
			return err
		}

		if result.IsDone() && m.sink != nil {
			if err := m.sink.Submit(ctx, sessionID, result.Record.Clone()); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
			}
			m.logger.Debug("Submission handed off", "session_id", sessionID, "fields", result.Record.Len())
		}

		return m.save(ctx, sessionID, s)
	})
	if err != nil {
		return domain.StepResult{}, err
	}
	return result, nil
}

// Current returns the outstanding question of a stored session without consuming a turn.
// ok is false when the session exists but no question has been asked yet.
func (m *Manager) Current(ctx context.Context, sessionID string) (field domain.FieldDefinition, cursor int, ok bool, err error) {
	s, err := m.Load(ctx, sessionID)
	if err != nil {
		return domain.FieldDefinition{}, 0, false, err
	}
	field, ok, err = m.engine.Pending(s)
	if err != nil {
		return domain.FieldDefinition{}, 0, false, err
	}
	return field, s.Cursor, ok, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, sessionID)
		return err
	})
	return s, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, sessionID string, s *domain.Session) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, s)
	})
}

// Delete removes the session from the store. This is how a dialogue is abandoned.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Engine returns the engine turns are applied with.
func (m *Manager) Engine() ports.DialogueEngine {
	return m.engine
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) loadOrNew(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := m.store.Load(ctx, sessionID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	m.logger.Debug("Starting new session", "session_id", sessionID)
	return domain.NewSession(sessionID), nil
}

func (m *Manager) save(ctx context.Context, sessionID string, s *domain.Session) error {
	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, sessionID, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
