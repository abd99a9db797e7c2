package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/domly/tmpl"
)

// defaultIndent is the indent width for YAML and JSON listings.
const defaultIndent = 2

// Dump prints the instruction listing of a compiled template.
type Dump struct {
	TemplateFlags `embed:""`

	Format string `default:"text" enum:"text,yaml,json" help:"Listing format (${enum})." short:"f"`
	Color  bool   `default:"true"                       help:"Colorize text listings."   negatable:""`

	stdout io.Writer
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := d.compile(ctx)
	if err != nil {
		return err
	}

	w := stdout(ctx, d.stdout)

	switch d.Format {
	case "yaml":
		buf, err := yaml.MarshalWithOptions(makeListing(t), yaml.Indent(defaultIndent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(buf)

		return err

	case "json":
		buf, err := json.MarshalIndent(makeListing(t), "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = w.Write(append(buf, '\n'))

		return err

	default:
		if !d.Color {
			return t.Print(w)
		}

		return printColor(w, t)
	}
}

// listing is the structured form of a program for YAML and JSON output.
type listing struct {
	Temps   int      `json:"temps"          yaml:"temps"`
	Keys    []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	Program []step   `json:"program"        yaml:"program"`
}

// step is one instruction. Fields that do not apply to the op are omitted.
type step struct {
	PC     int      `json:"pc"               yaml:"pc"`
	Op     string   `json:"op"               yaml:"op"`
	Dst    string   `json:"dst,omitempty"    yaml:"dst,omitempty"`
	Parent string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Name   string   `json:"name,omitempty"   yaml:"name,omitempty"`
	Value  string   `json:"value,omitempty"  yaml:"value,omitempty"`
	Guard  []string `json:"guard,omitempty"  yaml:"guard,omitempty"`
	Target *int     `json:"target,omitempty" yaml:"target,omitempty"`
	Wrap   bool     `json:"wrap,omitempty"   yaml:"wrap,omitempty"`
	Roots  []string `json:"roots,omitempty"  yaml:"roots,omitempty"`
}

func makeListing(t *tmpl.Template) listing {
	code := t.Instructions()

	l := listing{
		Temps:   t.Temps(),
		Keys:    t.Keys(),
		Program: make([]step, len(code)),
	}

	for pc, ins := range code {
		s := step{PC: pc, Op: ins.Op.String()}

		switch ins.Op {
		case tmpl.OpCreateElement:
			s.Dst, s.Name = ins.Dst.String(), ins.Name
		case tmpl.OpCreateText, tmpl.OpSetText:
			s.Dst, s.Value = ins.Dst.String(), ins.Value.String()
		case tmpl.OpSetAttribute:
			s.Dst, s.Name, s.Value = ins.Dst.String(), ins.Name, ins.Value.String()
		case tmpl.OpAppend:
			s.Dst, s.Parent = ins.Dst.String(), ins.Parent.String()
		case tmpl.OpHandle:
			s.Dst, s.Name, s.Wrap = ins.Dst.String(), ins.Name, ins.Wrap
		case tmpl.OpBranchFalse:
			target := ins.Target
			s.Guard, s.Target = ins.Guard.Keys(), &target
			if s.Guard == nil {
				s.Guard = []string{}
			}
		case tmpl.OpJump:
			target := ins.Target
			s.Target = &target
		case tmpl.OpReturn:
			for _, r := range ins.Roots {
				s.Roots = append(s.Roots, r.String())
			}
		}

		l.Program[pc] = s
	}

	return l
}

var (
	pcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	createStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	setStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	linkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	handleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	flowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

func opStyle(op tmpl.Op) lipgloss.Style {
	switch op {
	case tmpl.OpCreateElement, tmpl.OpCreateText:
		return createStyle
	case tmpl.OpSetAttribute, tmpl.OpSetText:
		return setStyle
	case tmpl.OpHandle:
		return handleStyle
	case tmpl.OpBranchFalse, tmpl.OpJump, tmpl.OpReturn:
		return flowStyle
	default:
		return linkStyle
	}
}

// printColor writes the listing with the program counter dimmed and each
// instruction colored by kind.
func printColor(w io.Writer, t *tmpl.Template) error {
	var buf []byte

	for pc, ins := range t.Instructions() {
		buf = append(buf, pcStyle.Render(fmt.Sprintf("%04d", pc))...)
		buf = append(buf, "  "...)
		buf = append(buf, opStyle(ins.Op).Render(ins.String())...)
		buf = append(buf, '\n')
	}

	if _, err := w.Write(buf); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", "text"))
	}

	return nil
}
