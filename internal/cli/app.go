package cli

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/regality/formchat"
	"github.com/regality/formchat/internal/adapters/file"
	"github.com/regality/formchat/internal/config"
	"github.com/regality/formchat/pkg/adapters/memory"
	"github.com/regality/formchat/pkg/adapters/redis"
	"github.com/regality/formchat/pkg/adapters/sqlstore"
	"github.com/regality/formchat/pkg/auth"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/forms"
	"github.com/regality/formchat/pkg/observability"
	"github.com/regality/formchat/pkg/persistence/middleware"
	"github.com/regality/formchat/pkg/ports"
	"github.com/regality/formchat/pkg/session"
)

// App is the wired object graph shared by every command.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Engine  *formchat.Engine
	Manager *session.Manager
	Forms   *forms.Registry
	Auth    *auth.Service
	Sink    ports.SubmissionSink
	// Metrics is nil unless a registerer was supplied.
	Metrics *observability.Metrics

	closers []func() error
}

// AppOptions tunes NewApp.
type AppOptions struct {
	Logger *slog.Logger
	// Registerer enables Prometheus metrics when set.
	Registerer prometheus.Registerer
}

// NewApp builds the catalog, engine, stores and sink described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, opts AppOptions) (_ *App, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = createLogger(false)
	}

	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	hooks := []domain.LifecycleHooks{observability.LoggingHooks(logger)}
	if opts.Registerer != nil {
		app.Metrics = observability.NewMetrics(opts.Registerer)
		hooks = append(hooks, app.Metrics.Hooks())
	}

	app.Engine, err = formchat.New(cfg.CatalogPath,
		formchat.WithLogger(logger),
		formchat.WithLifecycleHooks(observability.Combine(hooks...)),
	)
	if err != nil {
		return nil, err
	}

	app.Forms = forms.Default()
	if cfg.FormsPath != "" {
		if app.Forms, err = forms.Load(cfg.FormsPath); err != nil {
			return nil, err
		}
	}

	store, locker, err := app.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	if app.Sink, err = app.buildSink(ctx); err != nil {
		return nil, err
	}

	managerOpts := []session.Option{
		session.WithSink(app.Sink),
		session.WithLogger(logger),
	}
	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}
	app.Manager = session.NewManager(store, app.Engine, managerOpts...)

	app.Auth, err = buildAuth(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Application wired",
		"catalog", app.Engine.Name,
		"fields", app.Engine.Catalog().Size(),
		"store", cfg.Store.Backend,
		"sink", cfg.Sink.Backend,
	)
	return app, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildStore(ctx context.Context) (ports.SessionStore, ports.DistributedLocker, error) {
	cfg := a.Config.Store

	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	switch cfg.Backend {
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.Dir)
	case config.StoreRedis:
		rs, err := redis.New(cfg.RedisURL, redis.WithPrefix(cfg.RedisPrefix), redis.WithTTL(cfg.TTL))
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis unreachable: %w", err)
		}
		store = rs
		locker = redis.NewLocker(rs.Client(), cfg.RedisPrefix)
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Backend)
	}

	if a.Config.EncryptionKey != "" {
		key, err := middleware.ParseKey(a.Config.EncryptionKey)
		if err != nil {
			return nil, nil, err
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
		a.Logger.Debug("Session encryption enabled")
	}
	return store, locker, nil
}

func (a *App) buildSink(ctx context.Context) (ports.SubmissionSink, error) {
	cfg := a.Config.Sink

	switch cfg.Backend {
	case config.SinkMemory, "":
		return memory.NewSink(), nil
	case config.SinkSQLite, config.SinkPostgres:
		open := sqlstore.NewSQLite
		if cfg.Backend == config.SinkPostgres {
			open = sqlstore.NewPostgres
		}
		sink, err := open(ctx, cfg.DSN, sqlstore.WithLogger(a.Logger))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sink.Close)
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown submission sink %q", cfg.Backend)
	}
}

// buildAuth signs with the configured secret, or a per-process random one
// when none is set; tokens then do not survive a restart.
func buildAuth(cfg *config.Config, logger *slog.Logger) (*auth.Service, error) {
	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		logger.Warn("FORMCHAT_JWT_SECRET not set, using an ephemeral secret")
	}
	return auth.NewService(secret, auth.WithTokenTTL(cfg.Auth.TokenTTL)), nil
}
