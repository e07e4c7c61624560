package runner

import (
	"context"

	"github.com/regality/formchat/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Ask presents a question.
	Ask(ctx context.Context, res domain.StepResult) error

	// Input blocks for one answer. Returns io.EOF when the user is gone.
	Input(ctx context.Context) (string, error)

	// Finish presents the completed record.
	Finish(ctx context.Context, record domain.Record) error

	// SystemOutput presents a meta-message (errors, status) distinct from the dialogue.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms text before it is written.
// This allows TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
