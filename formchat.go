package formchat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/regality/formchat/internal/dialogue"
	"github.com/regality/formchat/internal/logging"
	"github.com/regality/formchat/pkg/catalog"
	"github.com/regality/formchat/pkg/domain"
)

// Engine is the high-level entry point for the formchat library.
// It wraps the internal dialogue engine and provides a simplified API for consumers.
type Engine struct {
	dialogue *dialogue.Engine
	catalog  *domain.Catalog
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCatalog injects a catalog, bypassing file loading.
func WithCatalog(c *domain.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine.
// The catalog is read from catalogPath (YAML or JSON); an empty path selects
// the built-in catalog. WithCatalog skips loading entirely.
func New(catalogPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.catalog == nil {
		c, err := catalog.Load(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		eng.catalog = c
	}

	eng.Name = "default"
	if catalogPath != "" {
		eng.Name = strings.TrimSuffix(filepath.Base(catalogPath), filepath.Ext(catalogPath))
	}
	eng.logger = eng.logger.With("form", eng.Name)
	eng.logger.Debug("Catalog loaded", "fields", eng.catalog.Size())

	eng.dialogue = dialogue.NewEngine(eng.catalog, dialogue.WithLifecycleHooks(eng.hooks))
	return eng, nil
}

// Start returns a new session in its initial state.
func (e *Engine) Start(sessionID string) *domain.Session {
	return e.dialogue.Start(sessionID)
}

// Step applies one turn to the session. See dialogue.Engine.Step.
func (e *Engine) Step(ctx context.Context, s *domain.Session, answer *string) (domain.StepResult, error) {
	return e.dialogue.Step(ctx, s, answer)
}

// Pending returns the question the session is waiting on, if any.
func (e *Engine) Pending(s *domain.Session) (domain.FieldDefinition, bool, error) {
	return e.dialogue.Pending(s)
}

// Catalog returns the catalog the engine walks.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Logger returns the engine's logger, tagged with the form name.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
