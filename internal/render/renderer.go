package render

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"gpt-cli/internal/logger"
)

// Formatter turns message text into the terminal text that will be printed.
type Formatter interface {
	Format(text string, width int) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(text string, width int) (string, error)

func (f FormatterFunc) Format(text string, width int) (string, error) { return f(text, width) }

// Renderer redraws one in-progress message in place. It remembers how many
// rows the previous draw moved the cursor down and erases exactly those rows
// before writing the new text.
type Renderer struct {
	mu sync.Mutex

	w       io.Writer
	format  Formatter
	columns func() int
	log     *logger.LogEntry

	rows int
}

type Options struct {
	Writer    io.Writer
	Formatter Formatter
	// Columns reports the current terminal width; it is queried on every
	// render so resizes are picked up between draws.
	Columns func() int
}

func NewRenderer(opts Options) *Renderer {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	columns := opts.Columns
	if columns == nil {
		columns = func() int { return DefaultColumns }
	}
	return &Renderer{
		w:       w,
		format:  opts.Formatter,
		columns: columns,
		log:     logger.Named("render"),
	}
}

// Render formats text, erases the rows recorded by the previous render and
// prints the result. A formatting failure falls back to the raw text.
func (r *Renderer) Render(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	width := UsableWidth(r.columns())
	out := text
	if r.format != nil {
		formatted, err := r.format.Format(text, width)
		if err != nil {
			r.log.Warnf("format failed, printing raw text: %v", err)
		} else {
			out = formatted
		}
	}
	rows := CountRows(out, width)

	var b strings.Builder
	b.WriteString(EraseRows(r.rows))
	b.WriteString(out)
	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return err
	}
	r.log.Debugf("redraw erase=%d rows=%d width=%d", r.rows, rows, width)
	r.rows = rows
	return nil
}

// Reset forgets the rows on screen so the next render starts below the
// current output instead of overwriting it.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.rows = 0
	r.mu.Unlock()
}

// Rows reports the row count recorded by the last render.
func (r *Renderer) Rows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows
}

// EraseRows returns the sequence that moves the cursor up one row and clears
// it, repeated n times.
func EraseRows(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(ansi.CursorUp(1)+ansi.EraseLineRight, n)
}
