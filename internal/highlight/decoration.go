package highlight

import (
	"strings"

	"github.com/muesli/termenv"
)

const sgrReset = termenv.CSI + termenv.ResetSeq + "m"

// Decoration is the terminal style a stylesheet rule maps a class to.
// Background is parsed and kept but never emitted.
type Decoration struct {
	Foreground ColorSpec
	Background ColorSpec
	Underline  bool
	Bold       bool
	Italic     bool
}

// IsZero reports whether applying d leaves text unchanged.
func (d Decoration) IsZero() bool {
	return d.Foreground == "" && !d.Underline && !d.Bold && !d.Italic
}

// Apply wraps text in the SGR sequence for d under the given profile: color
// first, then underline, bold and italic. Resets emitted by already-decorated
// inner text re-open d so the outer style continues after nested runs.
func (d Decoration) Apply(profile termenv.Profile, text string) string {
	if d.IsZero() || text == "" {
		return text
	}
	open := d.openSequence(profile)
	if open == "" {
		return text
	}
	return open + strings.ReplaceAll(text, sgrReset, sgrReset+open) + sgrReset
}

func (d Decoration) openSequence(profile termenv.Profile) string {
	style := profile.String()
	if d.Foreground != "" {
		style = style.Foreground(profile.Color(string(d.Foreground)))
	}
	if d.Underline {
		style = style.Underline()
	}
	if d.Bold {
		style = style.Bold()
	}
	if d.Italic {
		style = style.Italic()
	}
	return strings.TrimSuffix(style.Styled(""), sgrReset)
}
