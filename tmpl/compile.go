package tmpl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/domly/log"
	"github.com/ardnew/domly/markup"
)

// Template is a compiled template: an immutable instruction program that
// constructs a fresh tree each time it is executed. A Template is safe for
// concurrent use.
type Template struct {
	code   []Instr
	temps  int
	keys   []string
	opts   options
	debug  bool
	logger log.Logger
}

// Compile parses src and lowers it to an instruction program.
//
// Malformed markup yields the parser's [*markup.ParseError] unchanged.
// Every call allocates temps starting from el0, so compiling the same source
// twice yields identical programs.
func Compile(ctx context.Context, src string, opts ...Option) (*Template, error) {
	t := &Template{}

	applyOptions(t, opts...)

	t.logger.TraceContext(
		ctx,
		"compile start",
		slog.Int("source_bytes", len(src)),
		slog.Bool("strip_whitespace", t.opts.stripWhitespace),
		slog.Bool("strict", t.opts.strict),
	)

	nodes, err := markup.Parse(src, markup.WithStrict(t.opts.strict))
	if err != nil {
		t.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, ErrCompile.Wrap(err)
	}

	e := &emitter{opts: t.opts}

	if err := e.children(nodes, noParent); err != nil {
		return nil, err
	}

	e.emit(Instr{Op: OpReturn, Roots: e.roots})

	t.code = e.code
	t.temps = int(e.next)
	t.keys = collectKeys(t.code)

	t.logger.TraceContext(
		ctx,
		"compile complete",
		slog.Int("instructions", len(t.code)),
		slog.Int("temps", t.temps),
		slog.Int("roots", len(e.roots)),
	)

	if t.debug {
		t.logDebug(ctx, nodes)
	}

	return t, nil
}

// Must is a helper that wraps a call returning (*Template, error) and panics
// if the error is non-nil.
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}

	return t
}

// Instructions returns a copy of the program.
func (t *Template) Instructions() []Instr {
	return append([]Instr(nil), t.code...)
}

// Keys returns every data key the template reads, in first-use order.
func (t *Template) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Temps returns the number of node names the program allocates.
func (t *Template) Temps() int { return t.temps }

// Roots returns the names of the top-level nodes in document order. Roots
// inside a conditional are constructed only when their branch is taken.
func (t *Template) Roots() []Temp {
	if len(t.code) == 0 {
		return nil
	}

	return append([]Temp(nil), t.code[len(t.code)-1].Roots...)
}

func (t *Template) logDebug(ctx context.Context, nodes []markup.Node) {
	if !t.logger.Enabled(ctx, log.LevelDebug) {
		return
	}

	var tree, listing strings.Builder

	_ = markup.Print(&tree, nodes)
	_ = t.Print(&listing)

	t.logger.DebugContext(
		ctx,
		"compiled template",
		slog.String("tree", tree.String()),
		slog.String("program", listing.String()),
	)
}

func collectKeys(code []Instr) []string {
	var keys []string

	seen := make(map[string]bool)
	add := func(ks []string) {
		for _, k := range ks {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	for _, ins := range code {
		switch ins.Op {
		case OpBranchFalse:
			add(ins.Guard.Keys())
		case OpCreateText, OpSetAttribute, OpSetText:
			add(ins.Value.Keys())
		}
	}

	return keys
}
