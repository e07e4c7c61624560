package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/regality/formchat/internal/logging"
	"github.com/regality/formchat/pkg/domain"
)

// Stepper applies one dialogue turn for a session. session.Manager implements it.
type Stepper interface {
	Step(ctx context.Context, sessionID string, answer *string) (domain.StepResult, error)
}

// Result is the outcome of a Run.
type Result struct {
	SessionID string
	// Completed is false when input ended before the last answer.
	Completed bool
	Record    domain.Record
}

// Runner drives one session interactively.
type Runner struct {
	Handler   IOHandler
	Logger    *slog.Logger
	SessionID string

	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the dialogue loop until the form is complete or input ends.
//
// The first turn carries no answer, so a fresh session starts at the first
// question and a stored session resumes at its outstanding one. Each line
// read is passed to the next turn verbatim.
func (r *Runner) Run(ctx context.Context, stepper Stepper) (Result, error) {
	handler := r.resolveHandler()
	if r.SessionID == "" {
		r.SessionID = uuid.NewString()
	}
	out := Result{SessionID: r.SessionID}
	logger := r.Logger.With("session_id", r.SessionID)

	res, err := stepper.Step(ctx, r.SessionID, nil)
	for {
		if err != nil {
			return out, fmt.Errorf("step failed: %w", err)
		}

		if res.IsDone() {
			out.Completed = true
			out.Record = res.Record
			logger.Debug("Dialogue completed", "fields", res.Record.Len())
			if err := handler.Finish(ctx, res.Record); err != nil {
				return out, fmt.Errorf("output error: %w", err)
			}
			return out, nil
		}

		if err := handler.Ask(ctx, res); err != nil {
			return out, fmt.Errorf("output error: %w", err)
		}

		line, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("Input closed, abandoning dialogue", "cursor", res.Cursor)
				return out, nil
			}
			return out, err
		}

		res, err = stepper.Step(ctx, r.SessionID, &line)
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	r.Handler = NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	return r.Handler
}
