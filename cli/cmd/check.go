package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/domly/log"
)

// Check reports the data keys a template reads that the data does not
// provide, with a suggestion for each when a similar key exists.
type Check struct {
	TemplateFlags `embed:""`
	DataFlags     `embed:""`

	stdout io.Writer
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	t, err := c.compile(ctx)
	if err != nil {
		return err
	}

	data, err := c.load(ctx, c.Template == stdinSource)
	if err != nil {
		return err
	}

	have := slices.Sorted(maps.Keys(data))
	keys := t.Keys()
	w := stdout(ctx, c.stdout)

	var missing []string

	for _, key := range keys {
		if _, ok := data[key]; ok {
			continue
		}

		missing = append(missing, key)

		line := "missing " + strconv.Quote(key)
		if s, ok := suggest(key, have); ok {
			line += ", did you mean " + strconv.Quote(s) + "?"
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	for _, key := range have {
		if !slices.Contains(keys, key) {
			log.DebugContext(ctx, "unused data key", slog.String("key", key))
		}
	}

	if len(missing) > 0 {
		return ErrMissingKeys.With(
			slog.Int("count", len(missing)),
			slog.Any("keys", missing),
		)
	}

	_, err = fmt.Fprintf(w, "ok: %d keys\n", len(keys))

	return err
}

// suggest returns the best fuzzy match for key among candidates.
func suggest(key string, candidates []string) (string, bool) {
	if key == "" || len(candidates) == 0 {
		return "", false
	}

	matches := fuzzy.Find(key, candidates)
	if len(matches) == 0 {
		return "", false
	}

	return matches[0].Str, true
}
