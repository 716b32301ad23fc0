// Package internal holds the eventio server internals.
//
// The tree is organized by responsibility:
// - api: HTTP router, handlers, middleware and problem responses
// - domain: users (signup, login, sessions) and events (events, participants)
// - storage: repository contract with PostgreSQL and SQLite backends
// - auth: session token validation
// - audit, config, metrics, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
