package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/regality/formchat/pkg/domain"
)

// SessionReport is what 'session inspect' prints.
type SessionReport struct {
	*domain.Session
	PendingField    string `json:"pending_field,omitempty"`
	PendingQuestion string `json:"pending_question,omitempty"`
	Remaining       int    `json:"remaining"`
}

// ListSessions prints the stored session ids, one per line.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	ids, err := app.Manager.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		printSystemMessage(w, "No sessions stored.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

// InspectSession prints a session and its outstanding question as JSON.
func InspectSession(ctx context.Context, app *App, sessionID string, w io.Writer) error {
	s, err := app.Manager.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}

	report := SessionReport{
		Session:   s,
		Remaining: app.Engine.Catalog().Size() - s.Answers.Len(),
	}
	if field, ok, err := app.Engine.Pending(s); err != nil {
		return err
	} else if ok {
		report.PendingField = field.Name
		report.PendingQuestion = field.Prompt
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RemoveSession deletes a stored session.
func RemoveSession(ctx context.Context, app *App, sessionID string, w io.Writer) error {
	if err := app.Manager.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to remove session %q: %w", sessionID, err)
	}
	printSystemMessage(w, "Session '%s' removed.", sessionID)
	return nil
}
