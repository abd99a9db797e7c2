package dom

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ardnew/domly/tmpl"
)

// ErrNodeType is returned when a node argument is not an [*html.Node] or is
// the wrong kind of node for the operation.
var ErrNodeType = tmpl.NewError("unexpected node type")

// Document is a [tmpl.Runtime] that builds [*html.Node] trees. It also
// implements [tmpl.Wrapper], wrapping nodes in [*goquery.Selection], and
// [tmpl.Fragmenter], grouping several roots under a document node.
//
// Document holds no state; the zero value is ready to use and one value may
// serve any number of concurrent executions.
type Document struct{}

var (
	_ tmpl.Runtime    = Document{}
	_ tmpl.Wrapper    = Document{}
	_ tmpl.Fragmenter = Document{}
)

// CreateElement implements [tmpl.Runtime].
func (Document) CreateElement(tag string) (tmpl.Node, error) {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}, nil
}

// CreateTextNode implements [tmpl.Runtime].
func (Document) CreateTextNode(text string) (tmpl.Node, error) {
	return &html.Node{Type: html.TextNode, Data: text}, nil
}

// SetAttribute implements [tmpl.Runtime]. Setting an existing attribute
// replaces its value in place.
func (Document) SetAttribute(el tmpl.Node, name, value string) error {
	n, err := element(el)
	if err != nil {
		return err
	}

	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr[i].Val = value

			return nil
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})

	return nil
}

// SetTextContent implements [tmpl.Runtime]. It removes every child of el
// and, unless text is empty, appends a single text node.
func (Document) SetTextContent(el tmpl.Node, text string) error {
	n, err := node(el)
	if err != nil {
		return err
	}

	if n.Type == html.TextNode {
		n.Data = text

		return nil
	}

	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}

	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}

	return nil
}

// AppendChild implements [tmpl.Runtime]. A child that already has a parent
// is moved.
func (Document) AppendChild(parent, child tmpl.Node) error {
	p, err := node(parent)
	if err != nil {
		return err
	}

	c, err := node(child)
	if err != nil {
		return err
	}

	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}

	p.AppendChild(c)

	return nil
}

// Wrap implements [tmpl.Wrapper].
func (Document) Wrap(n tmpl.Node) (any, error) {
	hn, err := node(n)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromNode(hn).Selection, nil
}

// CreateFragment implements [tmpl.Fragmenter].
func (Document) CreateFragment() (tmpl.Node, error) {
	return &html.Node{Type: html.DocumentNode}, nil
}

// Execute runs t against a [Document] and returns the constructed tree.
// Several roots are returned as children of an [html.DocumentNode]; an
// empty result is nil.
func Execute(t *tmpl.Template, data any, recv tmpl.Receiver) (*html.Node, error) {
	n, err := t.Execute(Document{}, data, recv)
	if err != nil || n == nil {
		return nil, err
	}

	return node(n)
}

// Render writes n as HTML. A document node renders its children in order.
func Render(w io.Writer, n *html.Node) error {
	if n == nil {
		return nil
	}

	return html.Render(w, n)
}

// RenderString returns n rendered as HTML.
func RenderString(n *html.Node) (string, error) {
	var sb strings.Builder

	if err := Render(&sb, n); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Node returns the handle registered under name as an [*html.Node].
func Node(h tmpl.Handles, name string) (*html.Node, bool) {
	n, ok := h[name].(*html.Node)

	return n, ok
}

// Query returns the wrapped handle registered under name, which exists only
// for handles written with the "$" sigil.
func Query(h tmpl.Handles, name string) (*goquery.Selection, bool) {
	s, ok := h[name].(*goquery.Selection)

	return s, ok
}

func node(v tmpl.Node) (*html.Node, error) {
	n, ok := v.(*html.Node)
	if !ok || n == nil {
		return nil, ErrNodeType.With(slog.String("type", fmt.Sprintf("%T", v)))
	}

	return n, nil
}

func element(v tmpl.Node) (*html.Node, error) {
	n, err := node(v)
	if err != nil {
		return nil, err
	}

	if n.Type != html.ElementNode {
		return nil, ErrNodeType.With(
			slog.String("issue", "not an element"),
			slog.String("data", n.Data),
		)
	}

	return n, nil
}
