// Package lists binds each backend collection to a listview.Controller.
//
// # Overview
//
// Six lists are built from one generic table: items, AI matches, approved
// matches, staff, users and notifications. Each definition supplies the
// fetch call, the query predicate, the facets, the table columns, a stable
// record key, the detail fields and the record actions. Callers see the
// type-erased List interface and render Snapshot values.
//
// # Actions
//
// An action is bound to a key and targets a record by its key, not by its
// row:
//
//	err := l.Run(ctx, lists.Request{Action: "d", Record: "42"})
//
// Run looks the record up in the full collection when it runs. If a refresh
// since the row was picked removed it, Run returns ErrNoRecord and sends
// nothing. Role and status guards are checked again at run time and fail
// with ErrNotAllowed. Form actions (new report, edit report, new staff)
// describe their fields in Action.Form; missing values keep the prefill and
// blank required fields fail with ErrMissingField.
//
// Every action goes through Controller.Mutate, so a successful one reloads
// the list while a failed one leaves it untouched.
//
// # Concurrency
//
// A table caches the last rendered page behind its own mutex. Render hooks
// run on whichever goroutine drove the controller and must not call back
// into the list's mutators.
package lists
