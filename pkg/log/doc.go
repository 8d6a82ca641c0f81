/*
Package log provides the structured logging used across the store:
a package-level zerolog.Logger initialized once via Init, plus
component-scoped child loggers (WithComponent, WithUUID, WithEvent,
WithClass) that the lock manager, safe-mode handler, event bus and
store log through; the lazy proxy does not log.

Safe-mode entry is logged at error level and safe-mode exit at info,
per-item failures (skipped match candidates, omitted fields, failed
lock releases) at warn, and lock acquisitions at debug. Stores, loads
and deletes are reported as events, not log lines.
*/
package log
