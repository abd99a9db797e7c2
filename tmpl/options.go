package tmpl

import "github.com/ardnew/domly/log"

// options holds compile configuration that affects the emitted program.
// Every field participates in the cache key; see hashOptions.
type options struct {
	stripWhitespace bool
	strict          bool
}

// Option configures compilation.
type Option func(*Template)

// WithStripWhitespace skips whitespace-only text nodes and omits the
// text-content instruction for childless elements whose text is blank.
func WithStripWhitespace(strip bool) Option {
	return func(t *Template) {
		t.opts.stripWhitespace = strip
	}
}

// WithStrict makes compilation fail on stray end tags and on elements
// that are closed implicitly, instead of recovering.
func WithStrict(strict bool) Option {
	return func(t *Template) {
		t.opts.strict = strict
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(t *Template) {
		t.logger = logger
	}
}

// WithDebug logs the parsed markup tree and the instruction listing at
// debug level once compilation succeeds.
func WithDebug(debug bool) Option {
	return func(t *Template) {
		t.debug = debug
	}
}

// applyOptions applies functional options to a template.
func applyOptions(t *Template, opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
}
