package markdown

import (
	"reflect"
	"testing"
)

func TestSplitBlocks(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []Block
	}{
		{
			name: "prose only",
			in:   "hello\nworld",
			want: []Block{{Text: "hello\nworld"}},
		},
		{
			name: "prose code prose",
			in:   "intro\n```go\nfunc main() {}\n```\noutro",
			want: []Block{
				{Text: "intro"},
				{Code: true, Language: "go", Text: "func main() {}"},
				{Text: "outro"},
			},
		},
		{
			name: "open fence while streaming",
			in:   "see:\n```python\nprint(1)\npri",
			want: []Block{
				{Text: "see:"},
				{Code: true, Language: "python", Text: "print(1)\npri", Open: true},
			},
		},
		{
			name: "fence with info inside code is content",
			in:   "```\n```go\n```",
			want: []Block{{Code: true, Text: "```go"}},
		},
		{
			name: "indented fence",
			in:   "   ```sh\nls\n   ```",
			want: []Block{{Code: true, Language: "sh", Text: "ls"}},
		},
		{
			name: "longer fence closes only on a long enough fence",
			in:   "````md\n```go\nx\n```\n````\nafter",
			want: []Block{
				{Code: true, Language: "md", Text: "```go\nx\n```"},
				{Text: "after"},
			},
		},
		{
			name: "tilde fence",
			in:   "~~~python\nprint(1)\n~~~",
			want: []Block{{Code: true, Language: "python", Text: "print(1)"}},
		},
		{
			name: "backticks do not close a tilde fence",
			in:   "~~~\n```\nx",
			want: []Block{{Code: true, Text: "```\nx", Open: true}},
		},
		{
			name: "inline backticks are not a fence",
			in:   "```go` x\nmore",
			want: []Block{{Text: "```go` x\nmore"}},
		},
		{
			name: "four spaces is not a fence",
			in:   "    ```\nx",
			want: []Block{{Text: "    ```\nx"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SplitBlocks(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitBlocks = %#v, want %#v", got, tc.want)
			}
		})
	}
}
