package tmpl

import (
	"strconv"
	"strings"
)

// Op is the operation of one instruction.
type Op uint8

const (
	OpCreateElement Op = iota // Dst = createElement(Name)
	OpCreateText              // Dst = createTextNode(Value)
	OpSetAttribute            // Dst.setAttribute(Name, Value)
	OpSetText                 // Dst.textContent = Value
	OpAppend                  // Parent.appendChild(Dst)
	OpHandle                  // receiver[Name] = Dst, or wrap(Dst) if Wrap
	OpBranchFalse             // if !Guard { goto Target }
	OpJump                    // goto Target
	OpReturn                  // return constructed Roots
)

var opName = [...]string{
	OpCreateElement: "createElement",
	OpCreateText:    "createText",
	OpSetAttribute:  "setAttribute",
	OpSetText:       "setText",
	OpAppend:        "append",
	OpHandle:        "handle",
	OpBranchFalse:   "branchFalse",
	OpJump:          "jump",
	OpReturn:        "return",
}

func (op Op) String() string {
	if int(op) < len(opName) {
		return opName[op]
	}

	return "op(" + strconv.Itoa(int(op)) + ")"
}

// Temp names one constructed node within a single execution. Temps are
// numbered from zero per compile call.
type Temp int

// noParent marks emission at the top level.
const noParent Temp = -1

func (t Temp) String() string { return "el" + strconv.Itoa(int(t)) }

// Instr is one construction step. Which fields are meaningful depends on Op;
// see the Op constants.
type Instr struct {
	Op     Op
	Dst    Temp
	Parent Temp
	Name   string
	Value  Expr
	Guard  *Guard
	Target int
	Wrap   bool
	Roots  []Temp
}

// String renders the instruction in listing form, e.g.
// `el1.setAttribute "href", "/u/"+data["id"]`.
func (ins Instr) String() string {
	switch ins.Op {
	case OpCreateElement:
		return ins.Dst.String() + " = createElement " + strconv.Quote(ins.Name)

	case OpCreateText:
		return ins.Dst.String() + " = createTextNode " + ins.Value.String()

	case OpSetAttribute:
		return ins.Dst.String() + ".setAttribute " + strconv.Quote(ins.Name) +
			", " + ins.Value.String()

	case OpSetText:
		return ins.Dst.String() + ".textContent = " + ins.Value.String()

	case OpAppend:
		return ins.Parent.String() + ".appendChild " + ins.Dst.String()

	case OpHandle:
		target := ins.Dst.String()
		if ins.Wrap {
			target = "wrap(" + target + ")"
		}

		return "this[" + strconv.Quote(ins.Name) + "] = " + target

	case OpBranchFalse:
		return "unless " + ins.Guard.String() + " goto " + label(ins.Target)

	case OpJump:
		return "goto " + label(ins.Target)

	case OpReturn:
		names := make([]string, len(ins.Roots))
		for i, r := range ins.Roots {
			names[i] = r.String()
		}

		return "return " + strings.Join(names, ", ")

	default:
		return ins.Op.String()
	}
}

func label(pc int) string {
	s := strconv.Itoa(pc)
	if len(s) < 4 {
		s = strings.Repeat("0", 4-len(s)) + s
	}

	return s
}
