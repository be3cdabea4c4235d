package highlight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// WrapperClass is the class of the block that wraps all highlighted code;
// its rule is applied once around the whole converted result.
const WrapperClass = "chroma"

// MarkupShapeError reports a markup node the bridge does not know how to
// convert. It usually means the highlighter emits a newer markup shape.
type MarkupShapeError struct {
	Kind string
}

func (e *MarkupShapeError) Error() string {
	return fmt.Sprintf("unsupported markup node kind %q", e.Kind)
}

// entityReplacer decodes the escapes the highlighter emits. A Replacer never
// rescans its own output, so "&amp;gt;" decodes to "&gt;" and not ">".
var entityReplacer = strings.NewReplacer(
	"&gt;", ">",
	"&lt;", "<",
	"&quot;", `"`,
	"&#34;", `"`,
	"&apos;", "'",
	"&#39;", "'",
	"&amp;", "&",
)

// Unescape decodes the markup entity escapes back to literal characters.
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}

// Bridge converts highlighted markup into ANSI-decorated text.
type Bridge struct {
	styles  Resolver
	profile termenv.Profile
}

// NewBridge creates a bridge. A nil resolver means the stylesheet is
// unavailable and code is emitted unstyled.
func NewBridge(styles Resolver, profile termenv.Profile) *Bridge {
	return &Bridge{styles: styles, profile: profile}
}

// Convert walks the markup tree post-order, decorating each element with its
// class rule, wraps the result in the WrapperClass rule and unescapes
// entities. Unknown node kinds are skipped and reported through the returned
// error; the text is usable even when the error is non-nil.
func (b *Bridge) Convert(markup string) (string, error) {
	root, err := ParseMarkup(markup)
	if err != nil {
		return Unescape(markup), err
	}
	var shapeErrs []error
	text := b.convertNode(root, &shapeErrs)
	text = b.decorate(WrapperClass, text)
	return Unescape(text), errors.Join(shapeErrs...)
}

func (b *Bridge) convertNode(n Node, errs *[]error) string {
	switch node := n.(type) {
	case *Root:
		return b.convertChildren(node.Children, errs)
	case *Element:
		return b.decorate(node.Class, b.convertChildren(node.Children, errs))
	case *Text:
		return node.Raw
	case *Unknown:
		*errs = append(*errs, &MarkupShapeError{Kind: node.Kind})
		return ""
	default:
		*errs = append(*errs, &MarkupShapeError{Kind: fmt.Sprintf("%T", n)})
		return ""
	}
}

func (b *Bridge) convertChildren(children []Node, errs *[]error) string {
	var sb strings.Builder
	for _, child := range children {
		sb.WriteString(b.convertNode(child, errs))
	}
	return sb.String()
}

func (b *Bridge) decorate(class, text string) string {
	if b.styles == nil || class == "" {
		return text
	}
	return b.styles.Resolve(class).Apply(b.profile, text)
}
