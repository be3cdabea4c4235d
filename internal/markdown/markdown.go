package markdown

import (
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"gpt-cli/internal/highlight"
	"gpt-cli/internal/logger"
	"gpt-cli/internal/render"
)

// DefaultStyle is the glamour style used for prose.
const DefaultStyle = "dark"

// codeIndent lines code up with glamour's left margin.
const codeIndent = "  "

// tabSpaces replaces tabs in code so the printed width matches the row count.
var tabSpaces = strings.Repeat(" ", render.TabWidth)

// Options configures a Renderer.
type Options struct {
	Highlighter *highlight.Highlighter
	Bridge      *highlight.Bridge
	Profile     termenv.Profile
	// Style names a glamour standard style; DefaultStyle when empty.
	Style string
}

// Renderer turns markdown into terminal text. Prose goes through glamour and
// fenced code goes through the highlighter and the highlight bridge.
type Renderer struct {
	hl      *highlight.Highlighter
	bridge  *highlight.Bridge
	profile termenv.Profile
	style   string
	log     *logger.LogEntry

	mu    sync.Mutex
	prose map[int]*glamour.TermRenderer
}

func New(opts Options) *Renderer {
	hl := opts.Highlighter
	if hl == nil {
		hl = highlight.NewHighlighter()
	}
	bridge := opts.Bridge
	if bridge == nil {
		bridge = highlight.NewBridge(nil, opts.Profile)
	}
	style := opts.Style
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{
		hl:      hl,
		bridge:  bridge,
		profile: opts.Profile,
		style:   style,
		log:     logger.Named("markdown"),
		prose:   map[int]*glamour.TermRenderer{},
	}
}

// Format renders text for a terminal width columns wide. The result is
// empty for blank input and otherwise ends with a newline.
func (r *Renderer) Format(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var parts []string
	for _, b := range SplitBlocks(text) {
		if !b.Code {
			if strings.TrimSpace(b.Text) == "" {
				continue
			}
			out, err := r.renderProse(b.Text, width)
			if err != nil {
				return "", err
			}
			parts = append(parts, out)
			continue
		}
		if out := r.renderCode(b); out != "" {
			parts = append(parts, out)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

func (r *Renderer) renderProse(text string, width int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tr, err := r.proseRenderer(width)
	if err != nil {
		return "", err
	}
	out, err := tr.Render(text)
	if err != nil {
		return "", err
	}
	return trimBlankLines(out), nil
}

// proseRenderer returns the glamour renderer for width, wrapping two columns
// short of it so padded lines never end exactly on the terminal edge.
func (r *Renderer) proseRenderer(width int) (*glamour.TermRenderer, error) {
	wrap := width - 2
	if wrap < 1 {
		wrap = 1
	}
	if tr, ok := r.prose[wrap]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithColorProfile(r.profile),
		glamour.WithWordWrap(wrap),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return nil, err
	}
	r.prose[wrap] = tr
	return tr, nil
}

func (r *Renderer) renderCode(b Block) string {
	code := strings.ReplaceAll(b.Text, "\t", tabSpaces)
	if strings.TrimSpace(code) == "" {
		return ""
	}
	res, err := r.hl.Highlight(code, b.Language)
	if err != nil {
		r.log.Warnf("highlight %q failed: %v", b.Language, err)
		return indent(r.accent(code))
	}
	if res.Plaintext {
		return indent(r.accent(code))
	}
	out, err := r.bridge.Convert(res.Markup)
	if err != nil {
		var shape *highlight.MarkupShapeError
		if errors.As(err, &shape) {
			r.log.Warnf("skipped markup nodes in %s block: %v", res.Language, err)
		} else {
			r.log.Warnf("convert %s block: %v", res.Language, err)
			return indent(r.accent(code))
		}
	}
	return indent(out)
}

// accent is the flat decoration for code without a matching grammar.
func (r *Renderer) accent(code string) string {
	return r.profile.String(code).Foreground(r.profile.Color("11")).Bold().String()
}

// indent prefixes every line with codeIndent. A trailing line that only
// carries escape sequences is folded into the line before it.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 1 && ansi.Strip(lines[n-1]) == "" {
		lines[n-2] += lines[n-1]
		lines = lines[:n-1]
	}
	for i, l := range lines {
		lines[i] = codeIndent + l
	}
	return strings.Join(lines, "\n")
}

func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(ansi.Strip(lines[start])) == "" {
		start++
	}
	for end > start && strings.TrimSpace(ansi.Strip(lines[end-1])) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
