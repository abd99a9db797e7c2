package tmpl

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Guard is the compiled condition of an <if> tag: the conjunction of the
// truthiness of each named data key. A guard with no keys is always true.
type Guard struct {
	keys    []string
	program *vm.Program
}

// truthyFunc exposes [truthy] to guard programs.
var truthyFunc = expr.Function(
	"truthy",
	func(params ...any) (any, error) {
		return truthy(params[0]), nil
	},
	new(func(any) bool),
)

// compileGuard builds the guard for keys. Keys are quoted into the program
// source and looked up through $env, so any attribute name is a valid key.
func compileGuard(keys []string) (*Guard, error) {
	source := "true"

	if len(keys) > 0 {
		term := make([]string, len(keys))
		for i, k := range keys {
			term[i] = "truthy($env[" + strconv.Quote(k) + "])"
		}

		source = strings.Join(term, " && ")
	}

	program, err := expr.Compile(source, expr.AsBool(), truthyFunc)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(
			slog.String("guard", source),
		)
	}

	return &Guard{
		keys:    append([]string(nil), keys...),
		program: program,
	}, nil
}

// Keys returns the data keys the guard tests, in attribute order.
func (g *Guard) Keys() []string {
	if g == nil {
		return nil
	}

	return append([]string(nil), g.keys...)
}

// Eval reports whether every key of the guard is truthy in data.
func (g *Guard) Eval(data map[string]any) (bool, error) {
	if g == nil || len(g.keys) == 0 {
		return true, nil
	}

	if data == nil {
		data = map[string]any{}
	}

	out, err := expr.Run(g.program, data)
	if err != nil {
		return false, err
	}

	ok, _ := out.(bool)

	return ok, nil
}

// String renders the guard as a conjunction, e.g. `data["a"] && data["b"]`.
func (g *Guard) String() string {
	if g == nil || len(g.keys) == 0 {
		return "true"
	}

	term := make([]string, len(g.keys))
	for i, k := range g.keys {
		term[i] = "data[" + strconv.Quote(k) + "]"
	}

	return strings.Join(term, " && ")
}
