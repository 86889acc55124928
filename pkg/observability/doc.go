/*
Package observability turns planner lifecycle events into metrics and logs.

Metrics registers Prometheus collectors and exposes them as
domain.LifecycleHooks; LogHooks does the same for a slog.Logger. Merge
combines several hook sets so both can be installed at once.
*/
package observability
