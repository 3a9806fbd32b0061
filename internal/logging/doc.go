// Package logging builds the charmbracelet/log logger shared by every
// retriever component.
//
// # Overview
//
// New returns a timestamped text logger at the configured level (debug,
// info, warn or error; anything else means info). Open appends to a log
// file, creating its directory, and hands back the file as an io.Closer.
// Discard is for tests and callers that have nowhere to write.
//
// # Output
//
// The TUI owns the terminal, so while it runs nothing is written to stdout
// or stderr. Every command logs to the configured log_file instead, and
// `retriever logs` reads it back through package logtail, which expects the
// line layout produced here:
//
//	2026-01-02 15:04:05 WARN api error method=GET path=/users/me status=401
//
// # Concurrency
//
// A charmbracelet/log Logger serialises its writes, so one logger is shared
// by the poller, list controllers, the visual search flow and the UI.
package logging
