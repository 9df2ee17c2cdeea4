// Package domain defines the core domain models for the TrakJobs client.
//
// Domain models are plain values without any IO dependencies. This
// package contains:
//
//   - Session: bearer token plus the signed-in user record
//   - User: opaque user record with vendor scope resolution
//   - Client: UI-shaped client record and its form input
//   - QueryOptions / PageResult: list query state and page results
//   - Errors: locally detected failures with stable codes
package domain
