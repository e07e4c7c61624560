// Package sqlstore persists finished submissions to SQL databases.
//
// SQLite (modernc.org/sqlite, pure Go) suits single-node deployments and
// tests; PostgreSQL (lib/pq) suits shared deployments. Records are stored as
// JSON text so that field order survives the round trip.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/regality/formchat/internal/logging"
	"github.com/regality/formchat/pkg/domain"
	_ "modernc.org/sqlite"
)

// Connection pool defaults.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

// Dialect captures the differences between supported databases.
type Dialect struct {
	Name   string
	Driver string
	Schema string
	// Bind rewrites ?-style placeholders for the driver.
	Bind func(query string) string
}

// SQLite is the modernc.org/sqlite dialect.
var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	Schema: `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		record TEXT NOT NULL,
		submitted_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_session ON submissions(session_id);
	`,
	Bind: func(q string) string { return q },
}

// Postgres is the lib/pq dialect.
var Postgres = Dialect{
	Name:   "postgres",
	Driver: "postgres",
	Schema: `
	CREATE TABLE IF NOT EXISTS submissions (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		record TEXT NOT NULL,
		submitted_at BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_session ON submissions(session_id);
	`,
	Bind: dollarPlaceholders,
}

// Submission is a stored record.
type Submission struct {
	ID          int64         `json:"id"`
	SessionID   string        `json:"session_id"`
	Record      domain.Record `json:"record"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// Sink implements ports.SubmissionSink over database/sql.
type Sink struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Sink.
type Option func(*Sink)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// WithClock overrides the submitted_at source.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		s.now = now
	}
}

// NewSQLite opens (creating if needed) a SQLite database file.
func NewSQLite(ctx context.Context, dbPath string, opts ...Option) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	return Open(ctx, SQLite, dsn, opts...)
}

// NewPostgres connects to PostgreSQL.
func NewPostgres(ctx context.Context, dsn string, opts ...Option) (*Sink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}
	return Open(ctx, Postgres, dsn, opts...)
}

// Open connects with the given dialect and applies its schema.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*Sink, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	s, err := New(ctx, db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and applies the dialect's schema.
func New(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*Sink, error) {
	s := &Sink{
		db:      db,
		dialect: dialect,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	s.logger.Debug("Submission store ready", "dialect", dialect.Name)
	return s, nil
}

// Submit inserts the record.
func (s *Sink) Submit(ctx context.Context, sessionID string, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	query := s.dialect.Bind(`INSERT INTO submissions (session_id, record, submitted_at) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, sessionID, string(data), s.now().UnixMilli()); err != nil {
		s.logger.Error("Submission insert failed", "session_id", sessionID, "err", err)
		return fmt.Errorf("insert submission for %s: %w", sessionID, err)
	}
	s.logger.Debug("Submission stored", "session_id", sessionID, "fields", record.Len())
	return nil
}

// List returns the newest submissions first. A non-positive limit returns all.
func (s *Sink) List(ctx context.Context, limit int) ([]Submission, error) {
	query := `SELECT id, session_id, record, submitted_at FROM submissions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var sub Submission
		var raw string
		var at int64
		if err := rows.Scan(&sub.ID, &sub.SessionID, &raw, &at); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &sub.Record); err != nil {
			return nil, fmt.Errorf("decode submission %d: %w", sub.ID, err)
		}
		sub.SubmittedAt = time.UnixMilli(at)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// Ping verifies database connectivity.
func (s *Sink) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Sink) Close() error {
	return s.db.Close()
}

// dollarPlaceholders rewrites ? to $1, $2, ... outside quoted strings.
func dollarPlaceholders(query string) string {
	var b strings.Builder
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteString("$" + strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
