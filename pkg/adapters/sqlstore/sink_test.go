package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SubmissionSink = (*Sink)(nil)

func TestSQLiteSink_SubmitAndList(t *testing.T) {
	ctx := context.Background()
	at := time.UnixMilli(1_700_000_000_000)
	sink, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "db", "formchat.db"), WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	defer sink.Close()

	first := domain.Record{
		{Field: "fullName", Value: "Ravi"},
		{Field: "panNumber", Value: "ABCDE1234F"},
		{Field: "bankName", Value: "State Bank"},
	}
	require.NoError(t, sink.Submit(ctx, "s1", first))
	require.NoError(t, sink.Submit(ctx, "s2", domain.Record{{Field: "fullName", Value: ""}}))

	subs, err := sink.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "s2", subs[0].SessionID, "newest first")
	assert.Equal(t, "s1", subs[1].SessionID)
	assert.Equal(t, first, subs[1].Record, "field order must survive storage")
	assert.Equal(t, at, subs[1].SubmittedAt)

	limited, err := sink.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.NoError(t, sink.Ping(ctx))
}

func TestSQLiteSink_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "formchat.db")

	sink, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, sink.Submit(ctx, "s", domain.Record{{Field: "a", Value: "b"}}))
	require.NoError(t, sink.Close())

	sink, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer sink.Close()
	subs, err := sink.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestNewPostgres_RequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), "")
	assert.Error(t, err)
}

func TestDollarPlaceholders(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO t (a, b) VALUES ($1, $2)",
		dollarPlaceholders("INSERT INTO t (a, b) VALUES (?, ?)"))
	assert.Equal(t,
		"SELECT * FROM t WHERE a = '?' AND b = $1",
		dollarPlaceholders("SELECT * FROM t WHERE a = '?' AND b = ?"))
}
