package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// ErrStyleUnavailable is returned when no usable stylesheet could be loaded.
// Callers degrade to unstyled code.
var ErrStyleUnavailable = errors.New("stylesheet unavailable")

// Resolver maps a bare class name to its decoration.
type Resolver interface {
	Resolve(class string) Decoration
}

// Stylesheet holds the class rules parsed from a CSS source. It is immutable
// after construction.
type Stylesheet struct {
	rules map[string]Decoration
}

var _ Resolver = (*Stylesheet)(nil)

// Resolve returns the decoration for class, or the zero Decoration when the
// stylesheet has no rule for it.
func (s *Stylesheet) Resolve(class string) Decoration {
	if s == nil {
		return Decoration{}
	}
	return s.rules[class]
}

// Len returns the number of classes with a rule.
func (s *Stylesheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// ParseStylesheet builds a Stylesheet from CSS text. Each selector contributes
// the class of its last compound; later declarations win.
func ParseStylesheet(src string) (*Stylesheet, error) {
	sheet, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyleUnavailable, err)
	}
	out := &Stylesheet{rules: map[string]Decoration{}}
	out.addRules(sheet.Rules)
	if len(out.rules) == 0 {
		return nil, fmt.Errorf("%w: no class rules", ErrStyleUnavailable)
	}
	return out, nil
}

// LoadStylesheet reads and parses a CSS file.
func LoadStylesheet(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyleUnavailable, err)
	}
	return ParseStylesheet(string(data))
}

// ChromaStylesheet renders the named chroma style as CSS and parses it, giving
// the classes emitted by the chroma HTML formatter.
func ChromaStylesheet(name string) (*Stylesheet, error) {
	style := styles.Get(name)
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyleUnavailable, err)
	}
	return ParseStylesheet(buf.String())
}

func (s *Stylesheet) addRules(rules []*css.Rule) {
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		if rule.Kind == css.AtRule {
			s.addRules(rule.Rules)
			continue
		}
		for _, selector := range rule.Selectors {
			class, ok := classKey(selector)
			if !ok {
				continue
			}
			dec := s.rules[class]
			for _, decl := range rule.Declarations {
				applyDeclaration(&dec, decl)
			}
			s.rules[class] = dec
		}
	}
}

// classKey extracts "k" from ".chroma .k" or "hljs-keyword" from
// ".hljs-keyword". Compounds with pseudo-classes, attributes or several
// classes never match a single-class element and are skipped.
func classKey(selector string) (string, bool) {
	fields := strings.Fields(selector)
	if len(fields) == 0 {
		return "", false
	}
	last := fields[len(fields)-1]
	idx := strings.IndexByte(last, '.')
	if idx < 0 {
		return "", false
	}
	class := last[idx+1:]
	if class == "" || strings.ContainsAny(class, ".:[>+~") {
		return "", false
	}
	return class, true
}

func applyDeclaration(dec *Decoration, decl *css.Declaration) {
	if decl == nil {
		return
	}
	value := strings.TrimSpace(decl.Value)
	switch strings.ToLower(strings.TrimSpace(decl.Property)) {
	case "color":
		if c, ok := ParseColor(value); ok {
			dec.Foreground = c
		}
	case "background-color":
		if c, ok := ParseColor(value); ok {
			dec.Background = c
		}
	case "background":
		if dec.Background != "" {
			return
		}
		if fields := strings.Fields(value); len(fields) > 0 {
			if c, ok := ParseColor(fields[0]); ok {
				dec.Background = c
			}
		}
	case "text-decoration":
		dec.Underline = strings.EqualFold(value, "underline")
	case "font-weight":
		dec.Bold = strings.EqualFold(value, "bold")
	case "font-style":
		dec.Italic = strings.EqualFold(value, "italic") || strings.EqualFold(value, "italics")
	}
}
