package memory_test

import (
	"context"
	"testing"

	"github.com/regality/formchat/pkg/adapters/memory"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestSink_KeepsCopies(t *testing.T) {
	sink := memory.NewSink()
	ctx := context.Background()

	_, ok := sink.Last()
	assert.False(t, ok)

	rec := domain.Record{{Field: "fullName", Value: "Ravi"}}
	require.NoError(t, sink.Submit(ctx, "s1", rec))
	rec[0].Value = "mutated"

	last, ok := sink.Last()
	require.True(t, ok)
	assert.Equal(t, "s1", last.SessionID)
	v, _ := last.Record.Get("fullName")
	assert.Equal(t, "Ravi", v)

	require.NoError(t, sink.Submit(ctx, "s2", domain.Record{}))
	assert.Len(t, sink.Submissions(), 2)
}
