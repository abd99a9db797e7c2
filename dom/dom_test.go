package dom

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/net/html"

	"github.com/ardnew/domly/tmpl"
)

func render(t *testing.T, src string, data any, opts ...tmpl.Option) string {
	t.Helper()

	tp, err := tmpl.Compile(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}

	n, err := Execute(tp, data, nil)
	if err != nil {
		t.Fatalf("Execute(%q): %v", src, err)
	}

	s, err := RenderString(n)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	return s
}

func TestDocument_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		data any
		opts []tmpl.Option
		want string
	}{
		{
			name: "text from data",
			src:  `<div>{{name}}</div>`,
			data: map[string]any{"name": "Ann"},
			want: `<div>Ann</div>`,
		},
		{
			name: "list",
			src:  `<ul><li>{{x}}</li><li>{{y}}</li></ul>`,
			data: map[string]any{"x": "1", "y": "2"},
			want: `<ul><li>1</li><li>2</li></ul>`,
		},
		{
			name: "else branch spliced into parent",
			src:  `<section><if cond><span>yes</span><else><span>no</span></else></if></section>`,
			data: map[string]any{"cond": false},
			want: `<section><span>no</span></section>`,
		},
		{
			name: "values are text, never markup",
			src:  `<p title="{{t}}">{{v}}</p>`,
			data: map[string]any{"v": "<script>x()</script>", "t": `a"b`},
			want: `<p title="a&#34;b">&lt;script&gt;x()&lt;/script&gt;</p>`,
		},
		{
			name: "void element",
			src:  `<p>a<br>b</p>`,
			want: `<p>a<br/>b</p>`,
		},
		{
			name: "table rows stay where written",
			src:  `<table><if rows><tr><td>{{r}}</td></tr></if></table>`,
			data: map[string]any{"rows": true, "r": "1"},
			want: `<table><tr><td>1</td></tr></table>`,
		},
		{
			name: "whitespace kept",
			src:  "<ul>\n <li>a</li>\n</ul>",
			want: "<ul>\n <li>a</li>\n</ul>",
		},
		{
			name: "whitespace stripped",
			src:  "<ul>\n <li>a</li>\n</ul>",
			opts: []tmpl.Option{tmpl.WithStripWhitespace(true)},
			want: "<ul><li>a</li></ul>",
		},
		{
			name: "several roots under a fragment",
			src:  `<h1>{{t}}</h1><p>body</p>`,
			data: map[string]any{"t": "Title"},
			want: `<h1>Title</h1><p>body</p>`,
		},
		{
			name: "nothing constructed",
			src:  `<if missing><p></p></if>`,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := render(t, tt.src, tt.data, tt.opts...); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDocument_Handles(t *testing.T) {
	t.Parallel()

	tp := tmpl.Must(tmpl.Compile(context.Background(),
		`<form data-handle="$form" action="/go"><input data-handle="field" value="{{v}}"><label data-handle="$label">{{l}}</label></form>`))

	h := tmpl.Handles{}

	root, err := Execute(tp, map[string]any{"v": "x", "l": "Name"}, h)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	form, ok := Node(h, "form")
	if !ok || form != root {
		t.Fatalf("form handle = %v, want root", h["form"])
	}

	sel, ok := Query(h, "$form")
	if !ok {
		t.Fatalf("$form handle is %T, want *goquery.Selection", h["$form"])
	}

	if got, _ := sel.Attr("action"); got != "/go" {
		t.Errorf("$form action = %q, want /go", got)
	}

	if got := sel.Find("label").Text(); got != "Name" {
		t.Errorf("label text via selection = %q, want Name", got)
	}

	field, ok := Node(h, "field")
	if !ok || field.Data != "input" || field.Parent != root {
		t.Errorf("field handle = %#v", h["field"])
	}

	if _, ok := Query(h, "field"); ok {
		t.Error("handle without sigil was wrapped")
	}

	label, ok := Query(h, "$label")
	if !ok || label.Text() != "Name" {
		t.Errorf("$label = %#v", h["$label"])
	}
}

func TestDocument_Primitives(t *testing.T) {
	t.Parallel()

	var d Document

	p, _ := d.CreateElement("p")
	a, _ := d.CreateElement("a")
	b, _ := d.CreateElement("b")

	if err := d.SetAttribute(p, "class", "x"); err != nil {
		t.Fatal(err)
	}

	if err := d.SetAttribute(p, "class", "y"); err != nil {
		t.Fatal(err)
	}

	if got := len(p.(*html.Node).Attr); got != 1 {
		t.Errorf("repeated SetAttribute left %d attributes, want 1", got)
	}

	if err := d.SetTextContent(p, "old"); err != nil {
		t.Fatal(err)
	}

	if err := d.AppendChild(p, a); err != nil {
		t.Fatal(err)
	}

	if err := d.SetTextContent(p, "new"); err != nil {
		t.Fatal(err)
	}

	if s, _ := RenderString(p.(*html.Node)); s != `<p class="y">new</p>` {
		t.Errorf("after SetTextContent: %s", s)
	}

	// Appending an attached node moves it.
	_ = d.AppendChild(a, b)
	_ = d.AppendChild(p, b)

	if s, _ := RenderString(p.(*html.Node)); s != `<p class="y">new<b></b></p>` {
		t.Errorf("after move: %s", s)
	}

	if s, _ := RenderString(a.(*html.Node)); s != `<a></a>` {
		t.Errorf("old parent after move: %s", s)
	}

	txt, _ := d.CreateTextNode("t")

	if err := d.SetAttribute(txt, "k", "v"); !errors.Is(err, ErrNodeType) {
		t.Errorf("SetAttribute on text node: %v", err)
	}

	if err := d.AppendChild("not a node", p); !errors.Is(err, ErrNodeType) {
		t.Errorf("AppendChild on string: %v", err)
	}
}

func TestDocument_Concurrent(t *testing.T) {
	t.Parallel()

	tp := tmpl.Must(tmpl.Compile(context.Background(), `<p data-handle="$p">{{n}}</p>`))

	done := make(chan string, 32)

	for i := range 32 {
		go func(i int) {
			h := tmpl.Handles{}

			n, err := Execute(tp, map[string]any{"n": i}, h)
			if err != nil {
				done <- err.Error()

				return
			}

			s, _ := Query(h, "$p")
			if s.Nodes[0] != n {
				done <- "wrapped handle does not select the root"

				return
			}

			done <- ""
		}(i)
	}

	for range 32 {
		if msg := <-done; msg != "" {
			t.Error(msg)
		}
	}
}
