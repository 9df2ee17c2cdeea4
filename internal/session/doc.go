// Package session is the single source of truth for the client's
// authentication state.
//
// A Store holds the bearer token and the signed-in user record under two
// durable entries (access_token, user) and survives process restarts.
// Entries live in a Backend:
//
//   - FileBackend: one JSON document, written atomically, optionally sealed
//     with ChaCha20-Poly1305
//   - BadgerBackend: embedded badger key-value store
//   - MemoryBackend: process-local map for tests and throwaway sessions
//
// Nothing else in the module reads or writes these entries directly.
package session
