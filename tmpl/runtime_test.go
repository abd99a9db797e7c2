package tmpl

import (
	"errors"
	"strings"
	"sync"

	"github.com/ardnew/domly/markup"
)

// fakeNode is a minimal tree used to observe what a program constructs.
type fakeNode struct {
	tag      string // "" for text nodes
	text     string
	attrs    []markup.Attr
	children []*fakeNode
}

func (n *fakeNode) String() string {
	if n.tag == "" {
		return n.text
	}

	var sb strings.Builder

	if n.tag != fragmentTag {
		sb.WriteString("<" + n.tag)

		for _, a := range n.attrs {
			sb.WriteString(" " + a.Key + `="` + a.Val + `"`)
		}

		sb.WriteString(">")
	}

	sb.WriteString(n.text)

	for _, c := range n.children {
		sb.WriteString(c.String())
	}

	if n.tag != fragmentTag {
		sb.WriteString("</" + n.tag + ">")
	}

	return sb.String()
}

const fragmentTag = "#fragment"

var errBoom = errors.New("boom")

// fakeRuntime implements only the required Runtime surface.
type fakeRuntime struct {
	mu     sync.Mutex
	failOn string // tag name whose creation fails
	calls  []string
}

func (r *fakeRuntime) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, s)
}

func (r *fakeRuntime) CreateElement(tag string) (Node, error) {
	if tag == r.failOn {
		return nil, errBoom
	}

	r.record("create " + tag)

	return &fakeNode{tag: tag}, nil
}

func (r *fakeRuntime) CreateTextNode(text string) (Node, error) {
	r.record("text " + text)

	return &fakeNode{text: text}, nil
}

func (r *fakeRuntime) SetAttribute(el Node, name, value string) error {
	r.record("attr " + name)

	n := el.(*fakeNode)
	for i := range n.attrs {
		if n.attrs[i].Key == name {
			n.attrs[i].Val = value

			return nil
		}
	}

	n.attrs = append(n.attrs, markup.Attr{Key: name, Val: value})

	return nil
}

func (r *fakeRuntime) SetTextContent(el Node, text string) error {
	r.record("settext")

	n := el.(*fakeNode)
	n.children = nil
	n.text = text

	return nil
}

func (r *fakeRuntime) AppendChild(parent, child Node) error {
	p := parent.(*fakeNode)
	p.children = append(p.children, child.(*fakeNode))

	return nil
}

// wrapped is what richRuntime hands out for sigil handles.
type wrapped struct{ node *fakeNode }

// richRuntime adds the optional Wrapper and Fragmenter capabilities.
type richRuntime struct{ fakeRuntime }

func (r *richRuntime) Wrap(n Node) (any, error) {
	return wrapped{node: n.(*fakeNode)}, nil
}

func (r *richRuntime) CreateFragment() (Node, error) {
	return &fakeNode{tag: fragmentTag}, nil
}

func str(n Node) string {
	if n == nil {
		return "<nil>"
	}

	return n.(*fakeNode).String()
}
