package tmpl

import (
	"regexp"
	"strconv"
	"strings"
)

// markerPattern matches one {{key}} marker. The key is taken verbatim: no
// trimming, no dotted paths, and "{{}}" names the empty key. Markers do not
// span lines.
var markerPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Segment is one piece of an [Expr]: either literal text or a data key.
type Segment struct {
	Text string // literal text, or the key when Key is set
	Key  bool
}

// Expr is a string-valued expression synthesized from template text. It is
// the concatenation of its segments, where a key segment evaluates to the
// stringified value of data[key].
type Expr struct {
	segs []Segment
}

// synthesize splits s at its markers. A string without markers becomes a
// single literal segment, including the empty string.
func synthesize(s string) Expr {
	matches := markerPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return Expr{segs: []Segment{{Text: s}}}
	}

	segs := make([]Segment, 0, 2*len(matches)+1)
	last := 0

	for _, m := range matches {
		if m[0] > last {
			segs = append(segs, Segment{Text: s[last:m[0]]})
		}

		segs = append(segs, Segment{Text: s[m[2]:m[3]], Key: true})
		last = m[1]
	}

	if last < len(s) {
		segs = append(segs, Segment{Text: s[last:]})
	}

	return Expr{segs: segs}
}

// Segments returns a copy of the expression's segments in order.
func (e Expr) Segments() []Segment {
	return append([]Segment(nil), e.segs...)
}

// Literal returns the expression's value and true if it references no keys.
func (e Expr) Literal() (string, bool) {
	switch {
	case len(e.segs) == 0:
		return "", true
	case len(e.segs) == 1 && !e.segs[0].Key:
		return e.segs[0].Text, true
	}

	for _, s := range e.segs {
		if s.Key {
			return "", false
		}
	}

	var sb strings.Builder
	for _, s := range e.segs {
		sb.WriteString(s.Text)
	}

	return sb.String(), true
}

// Keys returns the data keys referenced by the expression, in order and with
// repetitions.
func (e Expr) Keys() []string {
	var keys []string

	for _, s := range e.segs {
		if s.Key {
			keys = append(keys, s.Text)
		}
	}

	return keys
}

// Eval evaluates the expression against data. A missing key and a nil value
// both contribute the empty string.
func (e Expr) Eval(data map[string]any) string {
	if lit, ok := e.Literal(); ok {
		return lit
	}

	var sb strings.Builder

	for _, s := range e.segs {
		if !s.Key {
			sb.WriteString(s.Text)

			continue
		}

		sb.WriteString(stringify(data[s.Text]))
	}

	return sb.String()
}

// String renders the expression as a concatenation, e.g. `"Hi, "+data["n"]`.
func (e Expr) String() string {
	if len(e.segs) == 0 {
		return `""`
	}

	part := make([]string, len(e.segs))

	for i, s := range e.segs {
		if s.Key {
			part[i] = "data[" + strconv.Quote(s.Text) + "]"
		} else {
			part[i] = strconv.Quote(s.Text)
		}
	}

	return strings.Join(part, "+")
}
