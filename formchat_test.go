package formchat_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/regality/formchat"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.DialogueEngine = (*formchat.Engine)(nil)

func strPtr(s string) *string { return &s }

func TestNew_DefaultCatalog(t *testing.T) {
	eng, err := formchat.New("")
	require.NoError(t, err)
	assert.Equal(t, "default", eng.Name)
	assert.Equal(t, []string{"fullName", "panNumber", "bankName"}, eng.Catalog().Names())
}

func TestNew_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kyc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - {name: email, prompt: Email?}\n"), 0o644))

	eng, err := formchat.New(path)
	require.NoError(t, err)
	assert.Equal(t, "kyc", eng.Name)
	assert.Equal(t, 1, eng.Catalog().Size())

	_, err = formchat.New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEngine_FullDialogue(t *testing.T) {
	var finished int
	eng, err := formchat.New("", formchat.WithLifecycleHooks(domain.LifecycleHooks{
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) { finished++ },
	}))
	require.NoError(t, err)

	ctx := context.Background()
	s := eng.Start("u")

	res, err := eng.Step(ctx, s, nil)
	require.NoError(t, err)
	assert.Equal(t, "What is your full name?", res.Prompt)

	field, ok, err := eng.Pending(s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fullName", field.Name)

	for _, a := range []string{"Ravi", "ABCDE1234F", "State Bank"} {
		res, err = eng.Step(ctx, s, strPtr(a))
		require.NoError(t, err)
	}
	require.True(t, res.IsDone())
	assert.Equal(t, domain.Record{
		{Field: "fullName", Value: "Ravi"},
		{Field: "panNumber", Value: "ABCDE1234F"},
		{Field: "bankName", Value: "State Bank"},
	}, res.Record)
	assert.True(t, s.IsFresh())
	assert.Equal(t, 1, finished)
}
