/*
Package ports defines the driven ports (interfaces) of the form dialogue.

These interfaces decouple the core state machine from storage, locking,
submission persistence and identity, so the same engine can run behind a
terminal prompt, an HTTP API or an MCP server.

# Key Interfaces

  - SessionStore: persists in-flight sessions keyed by correlation ID.
  - DistributedLocker: serializes access to a session across replicas.
  - SubmissionSink: receives the finished record before the session is reset.
  - IdentityVerifier: resolves a caller token to a stable subject.
*/
package ports
