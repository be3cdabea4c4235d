package markdown

import "strings"

// Block is a run of markdown prose or the body of one fenced code block.
type Block struct {
	Code     bool
	Language string
	Text     string
	// Open is set for a code block whose closing fence has not arrived yet,
	// which is the normal state while a reply is still streaming.
	Open bool
}

// SplitBlocks cuts markdown into prose and fenced code blocks, in order.
// A fence is three or more backticks or tildes indented by up to three
// spaces; the text after the opening fence is the language. A block closes
// on a bare fence of the same character that is at least as long.
func SplitBlocks(text string) []Block {
	var (
		blocks []Block
		buf    []string
		open   fenceMarker
		inCode bool
		lang   string
	)
	flush := func(code, unclosed bool) {
		if !code && len(buf) == 0 {
			return
		}
		blocks = append(blocks, Block{Code: code, Language: lang, Text: strings.Join(buf, "\n"), Open: unclosed})
		buf = nil
	}

	for _, line := range strings.Split(text, "\n") {
		m, info, ok := parseFence(line)
		switch {
		case ok && !inCode:
			flush(false, false)
			open, lang, inCode = m, info, true
		case ok && inCode && m.char == open.char && m.length >= open.length && info == "":
			flush(true, false)
			lang = ""
			inCode = false
		default:
			buf = append(buf, line)
		}
	}
	if inCode {
		flush(true, true)
	} else {
		flush(false, false)
	}
	return blocks
}

type fenceMarker struct {
	char   byte
	length int
}

// parseFence reports whether line is a fence and returns its marker and the
// trimmed info string.
func parseFence(line string) (fenceMarker, string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || trimmed == "" {
		return fenceMarker{}, "", false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return fenceMarker{}, "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return fenceMarker{}, "", false
	}
	info := strings.TrimSpace(trimmed[n:])
	if c == '`' && strings.Contains(info, "`") {
		return fenceMarker{}, "", false
	}
	return fenceMarker{char: c, length: n}, info, true
}
