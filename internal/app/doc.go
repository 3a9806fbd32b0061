// Package app wires configuration, logging, the API client and the session
// poller together for both the TUI and the one-shot CLI commands.
//
// # Overview
//
//	Setup()      load .env, config and prefs, open the log, build the client
//	StartPoller  refresh /users/me and the unread count in the background
//	Run()        Setup, one synchronous refresh, poller, then ui.Run (blocks)
//
// # Polling Behavior
//
// Each poll fetches the user and the unread notification count concurrently
// through an errgroup; either failure fails the poll and the store keeps the
// previous values. After a failure the next wait doubles, up to 30 seconds.
// Entity lists are never polled. They refresh only when the user asks or
// after a successful action.
package app
