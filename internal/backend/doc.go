// Package backend provides the REST client for the lost-and-found API.
//
// # Overview
//
// Client wraps a resty client rooted at the configured API base. Every
// request carries the bearer token, a User-Agent and a fresh X-Request-ID.
// List endpoints return whole collections; filtering and paging happen in
// the listview package.
//
// # Errors
//
// Non-2xx responses become *APIError with the FastAPI "detail" text when the
// body carries one. Transport failures are wrapped as "execute request: ...".
// The client never retries; callers decide what to do with a failure.
//
// # Visual Search
//
// SearchByImage posts a multipart form with a single "file" field to
// /matches/search-by-image. match_confidence and raw_score arrive as either
// numbers or strings, so they decode into FlexString and FlexFloat.
package backend
