/*
Package observability turns dialogue lifecycle events into logs and metrics.

The engine never logs; it calls domain.LifecycleHooks. This package provides
hooks that record Prometheus counters (Metrics.Hooks) and structured log lines
(LoggingHooks), and Combine to attach several at once.
*/
package observability
