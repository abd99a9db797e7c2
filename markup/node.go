package markup

import (
	"io"
	"strings"
)

// Node is a parsed markup node: either an [*Element] or a [*Text].
type Node interface {
	node()
}

// Attr is one attribute of an element. Keys are lower-case.
type Attr struct {
	Key string
	Val string
}

// Element is a tag with its attributes and children in source order.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Text is a run of character data with references already decoded.
type Text struct {
	Content string
}

func (*Element) node() {}
func (*Text) node()    {}

// Attr returns the value of the attribute named key.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

// Text returns the concatenated text of all descendant text nodes.
func (e *Element) Text() string {
	var sb strings.Builder

	var walk func(nodes []Node)

	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch n := n.(type) {
			case *Text:
				sb.WriteString(n.Content)
			case *Element:
				walk(n.Children)
			}
		}
	}

	walk(e.Children)

	return sb.String()
}

// Print writes an indented outline of nodes to w, one node per line.
func Print(w io.Writer, nodes []Node) error {
	return printIndent(w, nodes, 0)
}

func printIndent(w io.Writer, nodes []Node, depth int) error {
	prefix := strings.Repeat("  ", depth)

	for _, n := range nodes {
		var line strings.Builder

		line.WriteString(prefix)

		switch n := n.(type) {
		case *Element:
			line.WriteString(n.Tag)

			for _, a := range n.Attrs {
				line.WriteString(" " + a.Key + "=" + a.Val)
			}

		case *Text:
			line.WriteString("text " + quoteText(n.Content))
		}

		line.WriteByte('\n')

		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}

		if el, ok := n.(*Element); ok {
			if err := printIndent(w, el.Children, depth+1); err != nil {
				return err
			}
		}
	}

	return nil
}

var textEscaper = strings.NewReplacer("\n", `\n`, "\t", `\t`, "\r", `\r`)

func quoteText(s string) string {
	return `"` + textEscaper.Replace(s) + `"`
}
