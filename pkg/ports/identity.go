package ports

import "context"

// IdentityVerifier validates a caller credential before a session is started.
// The returned subject is used as the session correlation ID.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (subject string, err error)
}
