package render

import "testing"

func TestCountRows(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		width int
		want  int
	}{
		{name: "empty", text: "", width: 10, want: 0},
		{name: "short line no newline", text: "abc", width: 10, want: 0},
		{name: "line with newline", text: "abc\n", width: 10, want: 1},
		{name: "carriage return", text: "a\rb\r", width: 10, want: 2},
		{name: "exact width wraps", text: "abcde", width: 5, want: 1},
		{name: "sgr ignored", text: "\x1b[38;2;1;2;3;1mabcd\x1b[0m", width: 5, want: 0},
		{name: "tab never wraps by itself", text: "\t\t", width: 8, want: 0},
		{name: "char after tabs wraps", text: "\t\ta", width: 8, want: 1},
		{name: "backspace moves back", text: "abcd\bx", width: 5, want: 0},
		{name: "backspace unclamped", text: "\b\b\babcdefg", width: 5, want: 0},
		{name: "wide runes take two", text: "你好世", width: 6, want: 1},
		{name: "wide rune exactly fills row", text: "abc世d", width: 5, want: 1},
		{name: "wide rune overflow moves to next row", text: "abcd世xyz", width: 5, want: 2},
		{name: "wide rune overflow then newline", text: "abcd世\n", width: 5, want: 2},
		{name: "zero width treated as one", text: "ab", width: 0, want: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountRows(tc.text, tc.width); got != tc.want {
				t.Fatalf("CountRows(%q, %d) = %d, want %d", tc.text, tc.width, got, tc.want)
			}
		})
	}
}

func TestCountRows_WrappedLine(t *testing.T) {
	for _, width := range []int{1, 3, 7, 40} {
		for l := 1; l <= 100; l++ {
			text := make([]byte, l)
			for i := range text {
				text[i] = 'x'
			}
			// The trailing newline lands on the row after the last wrap unless
			// the line already ended exactly at the boundary.
			want := (l + width - 1) / width
			if l%width == 0 {
				want = l/width + 1
			}
			if got := CountRows(string(text)+"\n", width); got != want {
				t.Fatalf("width=%d len=%d: got %d rows, want %d", width, l, got, want)
			}
		}
	}
}

func TestStripSGR(t *testing.T) {
	in := "\x1b[1m\x1b[38;2;10;20;30mhi\x1b[0m \x1b[Kthere"
	if got := StripSGR(in); got != "hi \x1b[Kthere" {
		t.Fatalf("StripSGR = %q", got)
	}
}
