package render

import (
	"os"

	"golang.org/x/term"
)

// DefaultColumns is used when the output is not a terminal.
const DefaultColumns = 80

// Columns reports the width of the terminal attached to f, or DefaultColumns.
func Columns(f *os.File) int {
	if f == nil {
		return DefaultColumns
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultColumns
	}
	return w
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// UsableWidth is the width the renderer measures against: one column is kept
// free so a full row never triggers the terminal's pending-wrap state.
func UsableWidth(columns int) int {
	if columns <= 1 {
		return 1
	}
	return columns - 1
}
