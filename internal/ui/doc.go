// Package ui is the Bubble Tea terminal interface for retriever.
//
// The root Model owns one lists.List per entity (items, matches, approved
// matches, staff, users, notifications) shown as tabs. A list is fetched the
// first time its tab is shown and again only on R or after an action; the
// query, facet and page keys work on the fetched collection locally. Each
// frame paints the page the list's controller last rendered.
//
// The header reads state.Store, which the background poller keeps current,
// so the signed-in user, unread count and connection health refresh without
// touching the lists.
//
// Modals (confirmation and visual search) implement Modal and receive every
// key while open. The visual search modal drives a visualsearch.Flow: stage
// an image path, search, browse results and open one in detail.
package ui
