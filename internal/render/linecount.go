package render

import (
	"regexp"

	"github.com/mattn/go-runewidth"
)

// TabWidth is the number of columns a tab advances the cursor.
const TabWidth = 4

var sgrPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripSGR removes color and attribute sequences, leaving printable text and
// control characters.
func StripSGR(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}

// CountRows returns how many rows the terminal cursor moves down while
// printing text on a terminal that is width columns wide. Every newline or
// carriage return ends a row, and a row also ends once the column reaches
// width. Backspace moves the column back without clamping at zero.
func CountRows(text string, width int) int {
	if width <= 0 {
		width = 1
	}
	rows, col := 0, 0
	for _, r := range StripSGR(text) {
		switch r {
		case '\n', '\r':
			rows++
			col = 0
			continue
		case '\t':
			col += TabWidth
			continue
		case '\b':
			col--
			continue
		}
		w := cellWidth(r)
		if w > 1 && col > 0 && col < width && col+w > width {
			// a wide rune that does not fit starts the next row
			rows++
			col = 0
		}
		col += w
		if col >= width {
			rows++
			col = 0
		}
	}
	return rows
}

func cellWidth(r rune) int {
	if w := runewidth.RuneWidth(r); w > 1 {
		return w
	}
	return 1
}
