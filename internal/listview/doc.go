// Package listview implements the fetch-once, filter-locally, paginate
// client-side engine shared by every entity list in retriever.
//
// # Overview
//
// A Controller owns one collection of records. It fetches the whole
// collection in one request, keeps it in memory, derives a filtered view on
// every query or facet change and slices that view into fixed-size pages.
// Rendering happens exclusively through the callbacks supplied in Config, so
// the controller never knows whether it is painting a Bubble Tea pane or
// printing a table to stdout.
//
// # State
//
//	all      last successful fetch, replaced wholesale
//	filtered all restricted by query/facet, always rebuilt from all
//	page     1-indexed, always within [1, TotalPages]
//	pageSize fixed at construction
//
// SetQuery resets the page to 1. Load resets the page to 1. Refresh keeps the
// page when it still exists and clamps it otherwise. GoToPage clamps and never
// refetches.
//
// # Failures
//
// A failed Load or Refresh calls OnError exactly once and keeps the previous
// collection. Nothing is retried automatically. Mutate runs a server action
// and refreshes only on success, so there is never local patching of records.
//
// # Concurrency
//
// Fetches run outside the controller lock. Every Load takes a generation
// number and a result that resolves after a newer Load started is dropped
// with ErrSuperseded, so a slow response can never overwrite a newer one.
// Callbacks are invoked without the lock held and may call View.
package listview
