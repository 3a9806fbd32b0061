// Package visualsearch drives the image-similarity search session.
//
// A Flow moves through five states:
//
//	Idle -> FileStaged     SelectFile with an image/* file
//	FileStaged -> Idle     RemoveFile
//	FileStaged -> Searching Submit
//	Searching -> ResultsReady on success, empty or not
//	Searching -> FileStaged on failure, file kept for retry
//	ResultsReady -> DetailOpen SelectResult
//	DetailOpen -> ResultsReady CloseDetail
//	any -> Idle            ResetAll
//
// Rendering goes through the callbacks in Config. Submit blocks, so the TUI
// runs it inside a tea.Cmd; ResetAll from another goroutine makes the
// pending Submit return ErrSuperseded without touching the session.
package visualsearch
