package testutils

import (
	"context"
	"testing"

	"github.com/regality/formchat/internal/dialogue"
	"github.com/regality/formchat/pkg/adapters/memory"
	"github.com/regality/formchat/pkg/catalog"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/session"
	"github.com/stretchr/testify/require"
)

// Answer returns a pointer to s, for passing answers to Step.
func Answer(s string) *string {
	return &s
}

// NewManager returns a session manager over an in-memory store and the
// built-in catalog, with finished records collected in the returned sink.
func NewManager(t *testing.T, opts ...session.Option) (*session.Manager, *memory.Store, *memory.Sink) {
	t.Helper()
	store := memory.NewStore()
	sink := memory.NewSink()
	opts = append([]session.Option{session.WithSink(sink)}, opts...)
	return session.NewManager(store, dialogue.NewEngine(catalog.Default()), opts...), store, sink
}

// Stepper is anything that applies dialogue turns by session id.
type Stepper interface {
	Step(ctx context.Context, sessionID string, answer *string) (domain.StepResult, error)
}

// FillForm drives a session from its first question through one answer per
// field and returns the completion result. It fails the test if the form
// does not finish exactly on the last answer.
func FillForm(t *testing.T, s Stepper, sessionID string, answers ...string) domain.StepResult {
	t.Helper()
	ctx := context.Background()

	res, err := s.Step(ctx, sessionID, nil)
	require.NoError(t, err, "first step")
	for i, a := range answers {
		require.False(t, res.IsDone(), "form finished early, before answer %d", i)
		res, err = s.Step(ctx, sessionID, Answer(a))
		require.NoError(t, err, "step with answer %d", i)
	}
	require.True(t, res.IsDone(), "form not finished after %d answers", len(answers))
	return res
}
