/*
Package session implements session management and persistence orchestration.

A Manager owns every in-flight dialogue, keyed by correlation ID. Each turn is
a load, step, save sequence run under a per-session lock (reference counted so
idle sessions leave nothing behind) and, when configured, a distributed lock
shared by all replicas.

When a turn completes the form, the record is handed to the SubmissionSink
before the reset session is persisted. If the sink fails, nothing is saved and
the caller may resend the last answer.
*/
package session
