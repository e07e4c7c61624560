package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/regality/formchat"
	"github.com/regality/formchat/internal/config"
	"github.com/regality/formchat/internal/presentation/tui"
	"github.com/regality/formchat/pkg/domain"
	"github.com/regality/formchat/pkg/forms"
	"github.com/regality/formchat/pkg/runner"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Config    *config.Config
	SessionID string
	// Fresh discards any stored progress for SessionID first.
	Fresh bool
	// JSON switches to JSON-Lines input and output.
	JSON bool
	// Headless disables the banner and markdown rendering.
	Headless bool
	Debug    bool
	// FormType titles the filled-form document, e.g. "FC".
	FormType string

	Stdin  io.Reader
	Stdout io.Writer
}

// Execute handles the 'run' command: one interactive dialogue.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	app, err := NewApp(sigCtx, opts.Config, AppOptions{Logger: logger})
	if err != nil {
		return fmt.Errorf("error initializing formchat: %w", err)
	}
	defer app.Close()

	if opts.Fresh && opts.SessionID != "" {
		if err := app.Manager.Delete(sigCtx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	interactive := !opts.JSON && !opts.Headless && tui.IsTerminal(opts.Stdin)
	if interactive {
		tui.PrintBanner(opts.Stdout, formchat.Version)
		if opts.SessionID != "" {
			printSystemMessage(opts.Stdout, "Session '%s' active.", opts.SessionID)
		}
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithSessionID(opts.SessionID),
		runner.WithInputHandler(createHandler(opts, interactive, logger)),
	)

	res, runErr := r.Run(sigCtx, app.Manager)
	if sig := sigCtx.Signal(); sig != nil {
		logger.Info("Dialogue interrupted", "signal", sig.String(), "session_id", res.SessionID)
		if !opts.JSON {
			printSystemMessage(opts.Stdout, "Interrupted. Progress for session '%s' is kept.", res.SessionID)
		}
	}
	return handleExecutionError(runErr)
}

func createHandler(opts RunOptions, interactive bool, logger *slog.Logger) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	}

	handlerOpts := []runner.TextHandlerOption{
		runner.WithTextHandlerSummary(documentSummary(opts.FormType)),
	}
	if interactive {
		render, err := tui.NewRenderer()
		if err != nil {
			logger.Warn("Markdown rendering unavailable", "err", err)
		} else {
			handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(render))
		}
	}
	return runner.NewTextHandler(opts.Stdin, opts.Stdout, handlerOpts...)
}

// documentSummary renders the filled-form document for the finished record.
func documentSummary(formType string) func(domain.Record) string {
	formType = strings.ToUpper(strings.TrimSpace(formType))
	if formType == "" {
		formType = forms.TypeFC
	}
	return func(record domain.Record) string {
		return forms.RenderDocument(formType, record, time.Now())
	}
}
