package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/regality/formchat/internal/testutils"
	"github.com/regality/formchat/pkg/adapters/memory"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/forms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.Sink) {
	t.Helper()
	mgr, _, sink := testutils.NewManager(t)
	return NewServer(mgr, WithForms(forms.Default())), sink
}

func TestSubmitAnswer_FullDialogue(t *testing.T) {
	s, sink := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	res, err := s.handleSubmitAnswer(ctx, req, map[string]interface{}{"session_id": "agent-1"})
	require.NoError(t, err)
	assert.Equal(t, "fullName", res.Field)
	assert.Equal(t, "What is your full name?", res.Question)
	assert.Equal(t, 1, res.Cursor)

	for _, answer := range []string{"Alice", "PAN123"} {
		res, err = s.handleSubmitAnswer(ctx, req, map[string]interface{}{"session_id": "agent-1", "answer": answer})
		require.NoError(t, err)
		assert.False(t, res.Done)
	}
	assert.Equal(t, "bankName", res.Field)

	res, err = s.handleSubmitAnswer(ctx, req, map[string]interface{}{"session_id": "agent-1", "answer": ""})
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, "submitted", res.Message)
	assert.Equal(t, domain.Record{
		{Field: "fullName", Value: "Alice"},
		{Field: "panNumber", Value: "PAN123"},
		{Field: "bankName", Value: ""},
	}, res.Data)

	_, ok := sink.Last()
	assert.True(t, ok)
}

func TestSubmitAnswer_RequiresSession(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.handleSubmitAnswer(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)
}

func TestCurrentQuestion(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleCurrentQuestion(ctx, req, map[string]interface{}{"session_id": "nobody"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleSubmitAnswer(ctx, req, map[string]interface{}{"session_id": "agent-1"})
	require.NoError(t, err)

	for range 2 {
		res, err := s.handleCurrentQuestion(ctx, req, map[string]interface{}{"session_id": "agent-1"})
		require.NoError(t, err)
		assert.Equal(t, "What is your full name?", res.Question)
		assert.Equal(t, 1, res.Cursor)
	}
}

func TestGetForm(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"name": "fc"}
	res, err := s.handleGetForm(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Form FC - Foreign Contribution")

	req.Params.Arguments = map[string]any{"name": "nope"}
	res, err = s.handleGetForm(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
