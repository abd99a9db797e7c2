package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ardnew/domly/dom"
	"github.com/ardnew/domly/log"
	"github.com/ardnew/domly/tmpl"
)

// Render compiles a template, executes it against data, and writes HTML.
type Render struct {
	TemplateFlags `embed:""`
	DataFlags     `embed:""`

	Output  string `default:"-" help:"Output file or '-' for stdout."      short:"o"`
	Handles bool   `            help:"Log the handles the template registers."`

	stdout io.Writer
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := r.compile(ctx)
	if err != nil {
		return err
	}

	data, err := r.load(ctx, r.Template == stdinSource)
	if err != nil {
		return err
	}

	handles := tmpl.Handles{}

	root, err := dom.Execute(t, data, handles)
	if err != nil {
		return err
	}

	out, err := createOutput(r.Output, stdout(ctx, r.stdout))
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", r.Output))
	}
	defer out.Close()

	if root != nil {
		if err := dom.Render(out, root); err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("file", r.Output))
		}

		if _, err := io.WriteString(out, "\n"); err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("file", r.Output))
		}
	}

	if r.Handles {
		logHandles(ctx, handles)
	}

	return out.Close()
}

// logHandles logs each registered handle in name order.
func logHandles(ctx context.Context, h tmpl.Handles) {
	for _, name := range slices.Sorted(maps.Keys(h)) {
		log.InfoContext(ctx, "handle",
			slog.String("name", name),
			slog.String("node", describe(h[name])),
		)
	}
}

// describe summarizes a handle value, e.g. "<form>" or "selection <form>".
func describe(v any) string {
	switch n := v.(type) {
	case *html.Node:
		if n.Type == html.ElementNode {
			return "<" + n.Data + ">"
		}

		return strings.TrimSpace(n.Data)

	case *goquery.Selection:
		if n.Length() == 0 {
			return "selection"
		}

		return "selection " + describe(n.Nodes[0])

	default:
		return "unknown"
	}
}
