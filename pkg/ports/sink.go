package ports

import (
	"context"

	"github.com/regality/formchat/pkg/domain"
)

// SubmissionSink receives finished records.
// Submit is called synchronously before the session is reset; the core keeps no copy afterwards.
type SubmissionSink interface {
	Submit(ctx context.Context, sessionID string, record domain.Record) error
}

// SubmissionSinkFunc adapts a function to SubmissionSink.
type SubmissionSinkFunc func(ctx context.Context, sessionID string, record domain.Record) error

// Submit calls f.
func (f SubmissionSinkFunc) Submit(ctx context.Context, sessionID string, record domain.Record) error {
	return f(ctx, sessionID, record)
}
