package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutSplitWidth is the minimum width to show the detail pane beside
	// the table rather than below it.
	LayoutSplitWidth = 120
)

// DefaultUIInterval is how often the header re-reads the session store.
const DefaultUIInterval = time.Second
