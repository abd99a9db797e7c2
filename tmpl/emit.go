package tmpl

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ardnew/domly/markup"
)

// Reserved markup names.
const (
	HandleAttr  = "data-handle" // registers the element with the receiver
	HandleSigil = "$"           // handle prefix requesting a wrapped registration
	IfTag       = "if"          // conditional group; attribute names are keys
	ElseTag     = "else"        // alternative branch, immediate child of IfTag
)

// emitter lowers one markup tree into a flat instruction sequence. A new
// emitter is used for every compile call, so temp numbering always starts
// at el0 and concurrent compiles share nothing.
type emitter struct {
	opts  options
	next  Temp
	code  []Instr
	roots []Temp
}

// temp allocates the next node name. Every markup node takes one, including
// skipped text nodes and <if> tags, so names are stable across options.
func (e *emitter) temp() Temp {
	t := e.next
	e.next++

	return t
}

// emit appends ins and returns its program counter.
func (e *emitter) emit(ins Instr) int {
	e.code = append(e.code, ins)

	return len(e.code) - 1
}

// children emits each node in document order under parent.
func (e *emitter) children(nodes []markup.Node, parent Temp) error {
	for _, n := range nodes {
		if err := e.node(n, parent); err != nil {
			return err
		}
	}

	return nil
}

func (e *emitter) node(n markup.Node, parent Temp) error {
	name := e.temp()

	switch n := n.(type) {
	case *markup.Element:
		if n.Tag == IfTag {
			return e.conditional(n, parent)
		}

		if err := e.element(n, name); err != nil {
			return err
		}

	case *markup.Text:
		if n.Content == "" || (e.opts.stripWhitespace && blank(n.Content)) {
			return nil
		}

		e.emit(Instr{Op: OpCreateText, Dst: name, Value: synthesize(n.Content)})

	default:
		return ErrCompile.With(
			slog.String("node", fmt.Sprintf("%T", n)),
			slog.String("issue", "unsupported node"),
		)
	}

	e.attach(name, parent)

	return nil
}

// element emits creation, handle registration, attributes, and content of
// an ordinary element, in that order.
func (e *emitter) element(el *markup.Element, name Temp) error {
	e.emit(Instr{Op: OpCreateElement, Dst: name, Name: el.Tag})

	if handle, _ := el.Attr(HandleAttr); handle != "" {
		bare := strings.TrimPrefix(handle, HandleSigil)

		e.emit(Instr{Op: OpHandle, Dst: name, Name: bare})

		if bare != handle {
			e.emit(Instr{Op: OpHandle, Dst: name, Name: handle, Wrap: true})
		}
	}

	for _, a := range el.Attrs {
		if a.Key == HandleAttr {
			continue
		}

		e.emit(Instr{
			Op:    OpSetAttribute,
			Dst:   name,
			Name:  a.Key,
			Value: synthesize(a.Val),
		})
	}

	if len(el.Children) > 0 {
		return e.children(el.Children, name)
	}

	text := el.Text()
	if e.opts.stripWhitespace && blank(text) {
		return nil
	}

	e.emit(Instr{Op: OpSetText, Dst: name, Value: synthesize(text)})

	return nil
}

// attach links name to parent, or records it as a root at the top level.
func (e *emitter) attach(name, parent Temp) {
	if parent == noParent {
		e.roots = append(e.roots, name)

		return
	}

	e.emit(Instr{Op: OpAppend, Parent: parent, Dst: name})
}

func blank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
