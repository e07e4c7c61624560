package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/regality/formchat/internal/config"
	httpadapter "github.com/regality/formchat/pkg/adapters/http"
)

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Config  *config.Config
	Debug   bool
	Metrics bool
}

// NewServerHandler builds the HTTP handler for an app.
func NewServerHandler(app *App, metrics http.Handler) http.Handler {
	opts := []httpadapter.Option{
		httpadapter.WithLogger(app.Logger),
		httpadapter.WithCORSOrigin(app.Config.CORSOrigin),
		httpadapter.WithForms(app.Forms),
		httpadapter.WithAccounts(app.Auth),
		httpadapter.WithVerifier(app.Auth, app.Config.Auth.Required),
	}
	if metrics != nil {
		opts = append(opts, httpadapter.WithMetrics(metrics))
	}
	return httpadapter.NewHandler(app.Manager, opts...)
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	cfg := opts.Config
	logger, err := serverLogger(cfg.LogLevel, cfg.LogFormat, opts.Debug)
	if err != nil {
		return err
	}

	appOpts := AppOptions{Logger: logger}
	var metricsHandler http.Handler
	if opts.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appOpts.Registerer = reg
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	app, err := NewApp(ctx, cfg, appOpts)
	if err != nil {
		return fmt.Errorf("error initializing formchat: %w", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewServerHandler(app, metricsHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server listening",
			"addr", srv.Addr,
			"store", cfg.Store.Backend,
			"sink", cfg.Sink.Backend,
			"auth_required", cfg.Auth.Required,
			"metrics", opts.Metrics,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
