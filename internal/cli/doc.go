// Package cli defines the retriever cobra commands.
//
// # Commands
//
//	retriever [tui]                      interactive terminal UI
//	retriever list <kind> [flags]        print one page of an entity list
//	retriever items new|edit|show        report, change or view an item
//	retriever staff new                  create a staff account
//	retriever search <image>             visual search by photo
//	retriever logs                       tail the client log
//
// Every command builds its environment with app.Setup, so the config file,
// .env loading, logger and session store match the TUI exactly.
//
// # Actions
//
// list --do runs a record action before printing. --row picks the record on
// the printed page and is turned into that record's key, so the action hits
// the row the user saw. The items and staff commands submit the same form
// actions the TUI offers; only flags given on the command line are sent as
// values. A failed user lookup is logged and the server decides on roles.
//
// # Output
//
// Tables are drawn with lipgloss/table and followed by the page summary,
// "Page X of Y (showing a-b of n)". Errors go to stderr and exit with 1.
package cli
