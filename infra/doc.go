// Package infra contains technical adapters: the zerolog logger, hourly
// profile loaders, metrics sinks, the MQTT publisher, Sentry reporting and
// the SQLite and Postgres run history. These packages depend only on the
// interfaces defined in the core packages.
package infra
