package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/regality/formchat/internal/dialogue"
	"github.com/regality/formchat/pkg/adapters/memory"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/ports"
	"github.com/regality/formchat/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testCatalog() *domain.Catalog {
	return domain.MustCatalog(
		domain.FieldDefinition{Name: "fullName", Prompt: "What is your full name?"},
		domain.FieldDefinition{Name: "panNumber", Prompt: "Please enter your PAN number."},
		domain.FieldDefinition{Name: "address", Prompt: "What is your address?"},
	)
}

func newManager(opts ...session.Option) (*session.Manager, *memory.Store) {
	store := memory.NewStore()
	engine := dialogue.NewEngine(testCatalog())
	return session.NewManager(store, engine, opts...), store
}

func TestManager_Step_FullDialogue(t *testing.T) {
	sink := memory.NewSink()
	mgr, store := newManager(session.WithSink(sink))
	ctx := context.Background()
	id := "user-1"

	res, err := mgr.Step(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, "What is your full name?", res.Prompt)

	res, err = mgr.Step(ctx, id, strPtr("Ravi Kumar"))
	require.NoError(t, err)
	assert.Equal(t, "Please enter your PAN number.", res.Prompt)

	res, err = mgr.Step(ctx, id, strPtr("ABCDE1234F"))
	require.NoError(t, err)
	assert.Equal(t, "What is your address?", res.Prompt)

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Cursor)
	assert.Equal(t, 2, stored.Answers.Len())

	res, err = mgr.Step(ctx, id, strPtr("12 MG Road, Pune"))
	require.NoError(t, err)
	require.True(t, res.IsDone())
	assert.Equal(t, []string{"fullName", "panNumber", "address"}, []string{
		res.Record[0].Field, res.Record[1].Field, res.Record[2].Field,
	})

	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, id, last.SessionID)
	assert.Equal(t, res.Record, last.Record)

	stored, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.IsFresh(), "completed session must be persisted in its initial state")
}

func TestManager_Step_SinkFailureKeepsSession(t *testing.T) {
	fail := true
	sink := ports.SubmissionSinkFunc(func(ctx context.Context, id string, r domain.Record) error {
		if fail {
			return errors.New("db down")
		}
		return nil
	})
	mgr, store := newManager(session.WithSink(sink))
	ctx := context.Background()
	id := "user-2"

	for _, a := range []*string{nil, strPtr("a"), strPtr("b")} {
		_, err := mgr.Step(ctx, id, a)
		require.NoError(t, err)
	}

	_, err := mgr.Step(ctx, id, strPtr("c"))
	require.ErrorIs(t, err, domain.ErrSubmissionFailed)

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Cursor)
	assert.Equal(t, 2, stored.Answers.Len(), "failed hand-off must not persist the last answer")

	fail = false
	res, err := mgr.Step(ctx, id, strPtr("c"))
	require.NoError(t, err)
	require.True(t, res.IsDone())
	v, _ := res.Record.Get("address")
	assert.Equal(t, "c", v)
}

func TestManager_Current(t *testing.T) {
	mgr, _ := newManager()
	ctx := context.Background()

	_, _, _, err := mgr.Current(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = mgr.Start(ctx, "s")
	require.NoError(t, err)
	_, cursor, ok, err := mgr.Current(ctx, "s")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, cursor)

	_, err = mgr.Step(ctx, "s", nil)
	require.NoError(t, err)
	_, err = mgr.Step(ctx, "s", strPtr("Ravi"))
	require.NoError(t, err)

	field, cursor, ok, err := mgr.Current(ctx, "s")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "panNumber", field.Name)
	assert.Equal(t, 2, cursor)

	// Reading is free: the next answer still lands on panNumber.
	_, err = mgr.Step(ctx, "s", strPtr("PAN"))
	require.NoError(t, err)
	s, err := mgr.Load(ctx, "s")
	require.NoError(t, err)
	v, _ := s.Answers.Get("panNumber")
	assert.Equal(t, "PAN", v)
}

func TestManager_Start_Restarts(t *testing.T) {
	mgr, _ := newManager(session.WithClock(func() time.Time { return time.Unix(100, 0) }))
	ctx := context.Background()

	_, err := mgr.Step(ctx, "s", nil)
	require.NoError(t, err)
	_, err = mgr.Step(ctx, "s", strPtr("x"))
	require.NoError(t, err)

	s, err := mgr.Start(ctx, "s")
	require.NoError(t, err)
	assert.True(t, s.IsFresh())
	assert.Equal(t, time.Unix(100, 0), s.UpdatedAt)
}

func TestManager_NoCrossSessionLeakage(t *testing.T) {
	mgr, _ := newManager()
	ctx := context.Background()

	_, _ = mgr.Step(ctx, "a", nil)
	_, _ = mgr.Step(ctx, "b", nil)
	_, _ = mgr.Step(ctx, "a", strPtr("alice"))

	b, err := mgr.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Cursor)
	assert.Equal(t, 0, b.Answers.Len())

	res, err := mgr.Step(ctx, "b", strPtr("bob"))
	require.NoError(t, err)
	assert.Equal(t, "panNumber", res.Field)

	a, err := mgr.Load(ctx, "a")
	require.NoError(t, err)
	v, _ := a.Answers.Get("fullName")
	assert.Equal(t, "alice", v)
}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	time.Sleep(time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Session)
	}
	s.data[sessionID] = session.Clone()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.data[sessionID]; ok {
		return session.Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_Locking(t *testing.T) {
	const size = 20
	fields := make([]domain.FieldDefinition, size)
	for i := range fields {
		fields[i] = domain.FieldDefinition{Name: fmt.Sprintf("f%d", i), Prompt: fmt.Sprintf("q%d", i)}
	}
	engine := dialogue.NewEngine(domain.MustCatalog(fields...))
	mgr := session.NewManager(&SlowStore{}, engine)
	ctx := context.Background()
	id := "race-test"

	_, err := mgr.Step(ctx, id, nil)
	require.NoError(t, err)

	// Read-modify-write without serialization would lose updates.
	var wg sync.WaitGroup
	for i := 0; i < size-1; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			_, err := mgr.Step(ctx, id, strPtr(fmt.Sprint(val)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, size, s.Cursor)
	assert.Equal(t, size-1, s.Answers.Len())
}

type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	lastTTL  time.Duration
	failWith error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.lastTTL = ttl
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	mgr, _ := newManager(session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	_, err := mgr.Step(ctx, "s", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, locker.locks)
	assert.Equal(t, 1, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.lastTTL)

	locker.failWith = errors.New("busy")
	_, err = mgr.Step(ctx, "s", strPtr("x"))
	assert.ErrorContains(t, err, "distributed lock")
}
