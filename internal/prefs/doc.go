// Package prefs remembers per-user TUI choices between runs.
//
// # Overview
//
// Two choices are kept: the color theme and the list that was open on exit.
// They live in ~/.config/retriever/prefs.toml unless a path is given, as a
// small TOML document:
//
//	theme = "Nightfox"
//	last_list = "matches"
//
// Load never fails the caller. A missing file yields the defaults with no
// error; a damaged one yields the defaults together with the reason so it
// can be logged.
//
// # Writes
//
// Save creates the parent directory on first use and replaces the file
// through a temp file and rename (natefinch/atomic), so a crash never
// leaves a half-written document. Update is the read-modify-write used by
// the TUI: it keeps fields the caller does not touch and repairs a damaged
// file from the defaults.
//
// # Concurrency
//
// The package holds no state. Concurrent Update calls from separate
// processes may lose one of the two changes, never the file itself.
package prefs
