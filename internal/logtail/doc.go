// Package logtail reads the end of the client log for `retriever logs`.
//
// Read keeps only a bounded window of lines while scanning, so large files
// never load fully into memory. Filter drops lines below a minimum level,
// using the four-letter level tokens charmbracelet/log writes. ColorizeLine
// styles the timestamp and level with lipgloss for terminal output.
package logtail
