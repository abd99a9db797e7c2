package tmpl

import (
	"log/slog"

	"github.com/ardnew/domly/log"
)

// Node is a tree node owned by a [Runtime]. The program never inspects
// nodes; it only passes them back to the runtime that created them.
type Node = any

// Runtime is the node factory a template constructs through.
type Runtime interface {
	CreateElement(tag string) (Node, error)
	CreateTextNode(text string) (Node, error)
	SetAttribute(el Node, name, value string) error
	SetTextContent(el Node, text string) error
	AppendChild(parent, child Node) error
}

// Wrapper is implemented by runtimes that can wrap a node in a richer
// query object. Sigil handles are registered with the wrapped value.
type Wrapper interface {
	Wrap(n Node) (any, error)
}

// Fragmenter is implemented by runtimes that can group several top-level
// nodes under one container. It is required only by templates with more
// than one constructed root.
type Fragmenter interface {
	CreateFragment() (Node, error)
}

// Receiver collects the handles registered during an execution.
type Receiver interface {
	SetHandle(name string, value any)
}

// Handles is a map-backed [Receiver].
type Handles map[string]any

// SetHandle implements [Receiver]. A nil Handles discards the handle.
func (h Handles) SetHandle(name string, value any) {
	if h == nil {
		return
	}

	h[name] = value
}

// Execute runs the program once against data and returns the constructed
// tree. A single root is returned as is; several roots are returned under a
// fragment from rt; none yields a nil node.
//
// recv receives every handle registration in document order. A nil recv, or a
// nil [Handles], discards them.
func (t *Template) Execute(rt Runtime, data any, recv Receiver) (Node, error) {
	roots, err := t.ExecuteNodes(rt, data, recv)
	if err != nil {
		return nil, err
	}

	switch len(roots) {
	case 0:
		return nil, nil
	case 1:
		return roots[0], nil
	}

	f, ok := rt.(Fragmenter)
	if !ok {
		return nil, ErrRuntime.Wrap(ErrNoFragment).With(
			slog.Int("roots", len(roots)),
		)
	}

	frag, err := f.CreateFragment()
	if err != nil {
		return nil, ErrRuntime.Wrap(err).With(slog.String("op", "createFragment"))
	}

	for _, r := range roots {
		if err := rt.AppendChild(frag, r); err != nil {
			return nil, ErrRuntime.Wrap(err).With(slog.String("op", "createFragment"))
		}
	}

	return frag, nil
}

// ExecuteNodes runs the program once against data and returns the
// constructed top-level nodes in document order.
func (t *Template) ExecuteNodes(rt Runtime, data any, recv Receiver) ([]Node, error) {
	if rt == nil {
		return nil, ErrRuntime.Wrap(ErrNoRuntime)
	}

	env, err := dataMap(data)
	if err != nil {
		return nil, err
	}

	m := machine{
		rt:    rt,
		env:   env,
		recv:  recv,
		slots: make([]Node, t.temps),
		made:  make([]bool, t.temps),
		trace: t.logger.Enabled(log.DefaultContextProvider(), log.LevelTrace),
		log:   t.logger,
	}

	return m.run(t.code)
}

// machine holds the state of one execution. Slots are never shared between
// executions, so concurrent runs of one Template are independent.
type machine struct {
	rt    Runtime
	env   map[string]any
	recv  Receiver
	slots []Node
	made  []bool
	trace bool
	log   log.Logger
}

func (m *machine) run(code []Instr) ([]Node, error) {
	for pc := 0; pc < len(code); {
		ins := &code[pc]

		if m.trace {
			m.log.Trace("exec", slog.Int("pc", pc), slog.String("instr", ins.String()))
		}

		var err error

		switch ins.Op {
		case OpCreateElement:
			err = m.create(ins.Dst, func() (Node, error) {
				return m.rt.CreateElement(ins.Name)
			})

		case OpCreateText:
			err = m.create(ins.Dst, func() (Node, error) {
				return m.rt.CreateTextNode(ins.Value.Eval(m.env))
			})

		case OpSetAttribute:
			err = m.rt.SetAttribute(m.slots[ins.Dst], ins.Name, ins.Value.Eval(m.env))

		case OpSetText:
			err = m.rt.SetTextContent(m.slots[ins.Dst], ins.Value.Eval(m.env))

		case OpAppend:
			err = m.rt.AppendChild(m.slots[ins.Parent], m.slots[ins.Dst])

		case OpHandle:
			err = m.handle(ins)

		case OpBranchFalse:
			var ok bool
			if ok, err = ins.Guard.Eval(m.env); err == nil && !ok {
				pc = ins.Target

				continue
			}

		case OpJump:
			pc = ins.Target

			continue

		case OpReturn:
			return m.roots(ins.Roots), nil

		default:
			err = ErrCompile.With(slog.String("issue", "unknown op"))
		}

		if err != nil {
			return nil, ErrRuntime.Wrap(err).With(
				slog.Int("pc", pc),
				slog.String("op", ins.Op.String()),
			)
		}

		pc++
	}

	return nil, nil
}

func (m *machine) create(dst Temp, fn func() (Node, error)) error {
	n, err := fn()
	if err != nil {
		return err
	}

	m.slots[dst] = n
	m.made[dst] = true

	return nil
}

func (m *machine) handle(ins *Instr) error {
	if m.recv == nil {
		return nil
	}

	var v any = m.slots[ins.Dst]

	if ins.Wrap {
		w, ok := m.rt.(Wrapper)
		if !ok {
			return ErrNoWrapper.With(slog.String("handle", ins.Name))
		}

		wrapped, err := w.Wrap(m.slots[ins.Dst])
		if err != nil {
			return err
		}

		v = wrapped
	}

	m.recv.SetHandle(ins.Name, v)

	return nil
}

// roots returns the named roots that were constructed on the path taken.
func (m *machine) roots(names []Temp) []Node {
	out := make([]Node, 0, len(names))

	for _, r := range names {
		if m.made[r] {
			out = append(out, m.slots[r])
		}
	}

	return out
}
