package highlight

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node is one node of highlighted markup. The concrete kinds are *Root,
// *Element and *Text; anything else the tokenizer yields becomes *Unknown.
type Node interface {
	markupNode()
}

// Root is the container returned by ParseMarkup.
type Root struct {
	Children []Node
}

// Element is a tag carrying a single class name.
type Element struct {
	Tag      string
	Class    string
	Children []Node
}

// Text is literal character data. Raw keeps entity escapes as they appeared
// in the markup.
type Text struct {
	Raw string
}

// Unknown records a node kind the bridge cannot convert, such as a comment or
// doctype.
type Unknown struct {
	Kind string
	Raw  string
}

func (*Root) markupNode()    {}
func (*Element) markupNode() {}
func (*Text) markupNode()    {}
func (*Unknown) markupNode() {}

// ParseMarkup tokenizes highlighted markup into a node tree. Text is not
// entity-decoded; unmatched end tags are ignored and unclosed elements are
// closed at end of input.
func ParseMarkup(markup string) (*Root, error) {
	root := &Root{}
	var stack []*Element
	appendChild := func(n Node) {
		if len(stack) == 0 {
			root.Children = append(root.Children, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return root, nil
			}
			return root, z.Err()
		case html.TextToken:
			appendChild(&Text{Raw: string(z.Raw())})
		case html.StartTagToken:
			el := readElement(z)
			appendChild(el)
			stack = append(stack, el)
		case html.SelfClosingTagToken:
			appendChild(readElement(z))
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Tag == string(name) {
					stack = stack[:i]
					break
				}
			}
		case html.CommentToken:
			appendChild(&Unknown{Kind: "comment", Raw: string(z.Raw())})
		case html.DoctypeToken:
			appendChild(&Unknown{Kind: "doctype", Raw: string(z.Raw())})
		}
	}
}

func readElement(z *html.Tokenizer) *Element {
	name, hasAttr := z.TagName()
	el := &Element{Tag: string(name)}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) != "class" {
			continue
		}
		if fields := strings.Fields(string(val)); len(fields) > 0 {
			el.Class = fields[0]
		}
	}
	return el
}
