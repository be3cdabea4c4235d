package highlight

import (
	"fmt"
	"strings"

	"golang.org/x/image/colornames"
)

// ColorSpec is a normalized 24-bit color in "#rrggbb" form. The zero value
// means no color.
type ColorSpec string

// ParseColor accepts a hex value ("#abc" or "#aabbcc") or a CSS color keyword.
// Short hex is expanded by doubling each digit.
func ParseColor(value string) (ColorSpec, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}
	if strings.HasPrefix(v, "#") {
		switch len(v) {
		case 4:
			v = expandShortHex(v)
		case 7:
		default:
			return "", false
		}
		if !isHex(v[1:]) {
			return "", false
		}
		return ColorSpec(v), true
	}
	rgba, ok := colornames.Map[v]
	if !ok {
		return "", false
	}
	return ColorSpec(fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)), true
}

// expandShortHex turns "#abc" into "#aabbcc".
func expandShortHex(v string) string {
	var b strings.Builder
	b.Grow(7)
	b.WriteByte('#')
	for i := 1; i < 4; i++ {
		b.WriteByte(v[i])
		b.WriteByte(v[i])
	}
	return b.String()
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
