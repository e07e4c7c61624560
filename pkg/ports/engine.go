package ports

import (
	"context"

	"github.com/regality/formchat/pkg/domain"
)

// DialogueEngine is the state machine as seen by adapters.
// Implementations perform no I/O; callers own the session and serialize access to it.
type DialogueEngine interface {
	// Step applies one turn to the session.
	Step(ctx context.Context, session *domain.Session, answer *string) (domain.StepResult, error)

	// Pending returns the question the session is waiting on, if any.
	Pending(session *domain.Session) (domain.FieldDefinition, bool, error)

	// Catalog returns the catalog the engine walks.
	Catalog() *domain.Catalog
}
