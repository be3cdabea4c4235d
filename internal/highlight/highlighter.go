package highlight

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// PlaintextLanguage is reported when no grammar matched the code.
const PlaintextLanguage = "plaintext"

// Result is what the highlighter hands to the rendering side.
type Result struct {
	Language  string
	Markup    string
	Plaintext bool
}

// Highlighter turns code into class-tagged markup using chroma lexers.
type Highlighter struct {
	formatter *chromahtml.Formatter
}

func NewHighlighter() *Highlighter {
	return &Highlighter{
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// Highlight picks a lexer from the fence language, falling back to content
// analysis. When neither finds a grammar the result is flagged Plaintext and
// carries no markup.
func (h *Highlighter) Highlight(code, language string) (Result, error) {
	lexer := pickLexer(code, language)
	if lexer == nil {
		return Result{Language: PlaintextLanguage, Plaintext: true}, nil
	}
	name := strings.ToLower(lexer.Config().Name)
	if name == PlaintextLanguage {
		return Result{Language: name, Plaintext: true}, nil
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, styles.Fallback, it); err != nil {
		return Result{}, err
	}
	return Result{Language: name, Markup: buf.String()}, nil
}

func pickLexer(code, language string) chroma.Lexer {
	if lang := strings.TrimSpace(language); lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l
		}
	}
	return lexers.Analyse(code)
}
