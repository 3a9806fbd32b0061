// Package state holds the session data shared between the background poller
// and the UI.
//
// # Overview
//
// The poller writes the signed-in user and the unread notification count;
// the UI reads copies through Snapshot. Entity lists are not stored here.
// They live in their own listview controllers and refresh only on user
// action.
//
// # Failures
//
// A failed poll keeps the previous user and count, records the error and
// bumps ConsecutiveFailures. Two failures in a row mark the session offline.
// A success clears the error and resets the counter.
//
// # Concurrency
//
// Store uses a sync.RWMutex: one writer (the poller) and many readers (the
// Bubble Tea update loop and the list action guards). Snapshot returns values
// by copy, and wraps LastError so callers never hold the stored instance.
package state
