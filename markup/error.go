package markup

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError reports malformed markup at a position in the template source.
type ParseError struct {
	Err    error  // ErrUnexpectedEndTag, ErrUnclosedElement, or a tokenizer error
	Tag    string // offending tag name, if any
	Line   int    // 1-based
	Column int    // 1-based, in runes
	Source string // the template source, without the synthetic root
}

// Error implements the error interface. When the source is known the message
// includes the offending line and a caret under the column.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Column))
	buf.WriteString(": ")
	buf.WriteString(e.Err.Error())

	if e.Tag != "" {
		buf.WriteString(" <" + e.Tag + ">")
	}

	if snippet := e.Snippet(); snippet != "" {
		buf.WriteString("\n")
		buf.WriteString(snippet)
	}

	return buf.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", "parse error"),
		slog.String("cause", e.Err.Error()),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
	}

	if e.Tag != "" {
		attrs = append(attrs, slog.String("tag", e.Tag))
	}

	return slog.GroupValue(attrs...)
}

// Snippet returns the offending source line prefixed with its number and a
// caret line pointing at the column, or "" if the line is out of range.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Line)

	var buf strings.Builder

	buf.WriteString("  " + num + " | " + lines[e.Line-1] + "\n")

	// 2 leading spaces + " | " is 5 columns beside the number.
	buf.WriteString(strings.Repeat(" ", len(num)+5))

	if e.Column > 1 {
		buf.WriteString(strings.Repeat(" ", e.Column-1))
	}

	buf.WriteString("^")

	return buf.String()
}

// position converts a byte offset in s to a 1-based line and rune column.
func position(s string, offset int) (line, col int) {
	before := s[:offset]
	line = strings.Count(before, "\n") + 1

	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}

	return line, utf8.RuneCountInString(before) + 1
}
