package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/regality/formchat/internal/testutils"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_CompletesForm(t *testing.T) {
	mgr, _, sink := testutils.NewManager(t)

	in := strings.NewReader("Alice\nPAN123\nSBI\n")
	var out bytes.Buffer
	r := runner.NewRunner(runner.WithIO(in, &out), runner.WithSessionID("cli"))

	res, err := r.Run(context.Background(), mgr)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "cli", res.SessionID)
	assert.Equal(t, domain.Record{
		{Field: "fullName", Value: "Alice"},
		{Field: "panNumber", Value: "PAN123"},
		{Field: "bankName", Value: "SBI"},
	}, res.Record)

	text := out.String()
	assert.Contains(t, text, "What is your full name?")
	assert.Contains(t, text, "What is your PAN number?")
	assert.Contains(t, text, "Which bank are you using for foreign contributions?")
	assert.Contains(t, text, "panNumber: PAN123")

	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, res.Record, last.Record)
}

func TestRunner_AnswersAreVerbatim(t *testing.T) {
	mgr, _, _ := testutils.NewManager(t)

	in := strings.NewReader("  Alice  \r\n\nlast line without newline")
	r := runner.NewRunner(runner.WithIO(in, &bytes.Buffer{}))

	res, err := r.Run(context.Background(), mgr)
	require.NoError(t, err)
	require.True(t, res.Completed)

	name, _ := res.Record.Get("fullName")
	pan, _ := res.Record.Get("panNumber")
	bank, _ := res.Record.Get("bankName")
	assert.Equal(t, "  Alice  ", name)
	assert.Equal(t, "", pan)
	assert.Equal(t, "last line without newline", bank)
}

func TestRunner_InputClosedLeavesSessionResumable(t *testing.T) {
	mgr, store, _ := testutils.NewManager(t)
	ctx := context.Background()

	r := runner.NewRunner(runner.WithIO(strings.NewReader("Alice\n"), &bytes.Buffer{}), runner.WithSessionID("s1"))
	res, err := r.Run(ctx, mgr)
	require.NoError(t, err)
	assert.False(t, res.Completed)

	stored, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Cursor)

	// Resuming re-asks the outstanding question without consuming a slot.
	var out bytes.Buffer
	r = runner.NewRunner(runner.WithIO(strings.NewReader("PAN123\nSBI\n"), &out), runner.WithSessionID("s1"))
	res, err = r.Run(ctx, mgr)
	require.NoError(t, err)
	require.True(t, res.Completed)
	assert.True(t, strings.HasPrefix(out.String(), "What is your PAN number?"))

	name, _ := res.Record.Get("fullName")
	assert.Equal(t, "Alice", name)
}

func TestRunner_GeneratesSessionID(t *testing.T) {
	mgr, _, _ := testutils.NewManager(t)
	r := runner.NewRunner(runner.WithIO(strings.NewReader(""), &bytes.Buffer{}))

	res, err := r.Run(context.Background(), mgr)
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.False(t, res.Completed)
}

type failingStepper struct{ err error }

func (f failingStepper) Step(ctx context.Context, id string, answer *string) (domain.StepResult, error) {
	return domain.StepResult{}, f.err
}

func TestRunner_PropagatesStepError(t *testing.T) {
	r := runner.NewRunner(runner.WithIO(strings.NewReader("x\n"), &bytes.Buffer{}))

	_, err := r.Run(context.Background(), failingStepper{err: domain.ErrInvariantViolation})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestRunner_CustomHandler(t *testing.T) {
	mgr, _, _ := testutils.NewManager(t)

	var out bytes.Buffer
	h := runner.NewJSONHandler(strings.NewReader("\"Alice\"\n{\"answer\":\"PAN123\"}\nSBI\n"), &out)
	r := runner.NewRunner(runner.WithInputHandler(h))

	res, err := r.Run(context.Background(), mgr)
	require.NoError(t, err)
	require.True(t, res.Completed)

	pan, _ := res.Record.Get("panNumber")
	bank, _ := res.Record.Get("bankName")
	assert.Equal(t, "PAN123", pan)
	assert.Equal(t, "SBI", bank)
}
