package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Node
	}{
		{
			name: "single root with marker",
			src:  `<div>{{name}}</div>`,
			want: []Node{
				&Element{Tag: "div", Children: []Node{&Text{Content: "{{name}}"}}},
			},
		},
		{
			name: "multiple roots and whitespace",
			src:  "<p>a</p>\n<p>b</p>",
			want: []Node{
				&Element{Tag: "p", Children: []Node{&Text{Content: "a"}}},
				&Text{Content: "\n"},
				&Element{Tag: "p", Children: []Node{&Text{Content: "b"}}},
			},
		},
		{
			name: "attributes keep source order and lower-case keys",
			src:  `<A Href="/x" data-handle="$link" Title="{{t}}"></A>`,
			want: []Node{
				&Element{Tag: "a", Attrs: []Attr{
					{Key: "href", Val: "/x"},
					{Key: "data-handle", Val: "$link"},
					{Key: "title", Val: "{{t}}"},
				}},
			},
		},
		{
			name: "first duplicate attribute wins",
			src:  `<i class="a" class="b"></i>`,
			want: []Node{
				&Element{Tag: "i", Attrs: []Attr{{Key: "class", Val: "a"}}},
			},
		},
		{
			name: "void and self-closing elements take no children",
			src:  `<br><img src="x"/><div/>after`,
			want: []Node{
				&Element{Tag: "br"},
				&Element{Tag: "img", Attrs: []Attr{{Key: "src", Val: "x"}}},
				&Element{Tag: "div"},
				&Text{Content: "after"},
			},
		},
		{
			name: "character references are decoded and comments dropped",
			src:  `<p>a &amp; b<!-- note --> &lt;c&gt;</p>`,
			want: []Node{
				&Element{Tag: "p", Children: []Node{&Text{Content: "a & b <c>"}}},
			},
		},
		{
			name: "control tags nest where written",
			src:  `<table><if a b><tr></tr><else><tr></tr></else></if></table>`,
			want: []Node{
				&Element{Tag: "table", Children: []Node{
					&Element{
						Tag:   "if",
						Attrs: []Attr{{Key: "a"}, {Key: "b"}},
						Children: []Node{
							&Element{Tag: "tr"},
							&Element{Tag: "else", Children: []Node{&Element{Tag: "tr"}}},
						},
					},
				}},
			},
		},
		{
			name: "stray end tag is ignored",
			src:  `<div></span>x</div>`,
			want: []Node{
				&Element{Tag: "div", Children: []Node{&Text{Content: "x"}}},
			},
		},
		{
			name: "unclosed elements close at end of input",
			src:  `<ul><li>one`,
			want: []Node{
				&Element{Tag: "ul", Children: []Node{
					&Element{Tag: "li", Children: []Node{&Text{Content: "one"}}},
				}},
			},
		},
		{
			name: "empty input",
			src:  ``,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestParse_Strict(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		target error
		tag    string
		line   int
		column int
	}{
		{
			name:   "stray end tag",
			src:    "<div>\n  </span></div>",
			target: ErrUnexpectedEndTag,
			tag:    "span",
			line:   2,
			column: 3,
		},
		{
			name:   "implicitly closed element",
			src:    "<div><span></div>",
			target: ErrUnclosedElement,
			tag:    "span",
			line:   1,
			column: 12,
		},
		{
			name:   "unclosed at end of input",
			src:    "<p>",
			target: ErrUnclosedElement,
			tag:    "p",
			line:   1,
			column: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, WithStrict(true))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}

			if !errors.Is(err, tt.target) {
				t.Errorf("error %v is not %v", err, tt.target)
			}

			if pe.Tag != tt.tag || pe.Line != tt.line || pe.Column != tt.column {
				t.Errorf("got tag=%q %d:%d, want tag=%q %d:%d",
					pe.Tag, pe.Line, pe.Column, tt.tag, tt.line, tt.column)
			}

			if !strings.Contains(pe.Error(), "^") {
				t.Errorf("error message lacks snippet: %s", pe.Error())
			}
		})
	}
}

func TestElement_Text(t *testing.T) {
	nodes, err := Parse(`<p>a<b>c<i>d</i></b>e</p>`)
	if err != nil {
		t.Fatal(err)
	}

	el, ok := nodes[0].(*Element)
	if !ok {
		t.Fatalf("expected element, got %T", nodes[0])
	}

	if got := el.Text(); got != "acde" {
		t.Errorf("Text() = %q, want %q", got, "acde")
	}

	if v, ok := el.Attr("missing"); ok || v != "" {
		t.Errorf("Attr(missing) = %q, %v", v, ok)
	}
}

func TestPrint(t *testing.T) {
	nodes, err := Parse("<ul class=\"x\"><li>a\n</li></ul>")
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := Print(&sb, nodes); err != nil {
		t.Fatal(err)
	}

	want := "ul class=x\n  li\n    text \"a\\n\"\n"
	if sb.String() != want {
		t.Errorf("Print = %q, want %q", sb.String(), want)
	}
}
