package markup

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// RootTag names the synthetic element that wraps every template so that
// single- and multi-root input parse the same way. It never reaches callers.
const RootTag = "domly-root"

var (
	ErrUnexpectedEndTag = errors.New("unexpected end tag")
	ErrUnclosedElement  = errors.New("unclosed element")
)

// voidTags never take children, with or without a self-closing slash.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Option configures the parser.
type Option func(*parser)

// WithStrict makes stray end tags and implicitly closed elements parse
// errors instead of being repaired.
func WithStrict(strict bool) Option {
	return func(p *parser) {
		p.strict = strict
	}
}

// Parse parses src and returns its top-level nodes in source order.
//
// Tag and attribute names are lower-cased, character references are decoded,
// and comments and doctypes are dropped. When an attribute is repeated on one
// element, the first occurrence wins.
func Parse(src string, opts ...Option) ([]Node, error) {
	p := &parser{source: src, offset: -len(openRoot)}

	for _, opt := range opts {
		opt(p)
	}

	root, err := p.parse(strings.NewReader(openRoot + src + closeRoot))
	if err != nil {
		return nil, err
	}

	return root.Children, nil
}

const (
	openRoot  = "<" + RootTag + ">"
	closeRoot = "</" + RootTag + ">"
)

type parser struct {
	source string
	offset int // byte offset of the current token within source
	strict bool
	root   *Element
	stack  []*Element
}

func (p *parser) top() *Element { return p.stack[len(p.stack)-1] }

func (p *parser) parse(r io.Reader) (*Element, error) {
	z := html.NewTokenizer(r)

	for {
		tt := z.Next()
		size := len(z.Raw())

		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}

			return nil, p.errorf(z.Err(), "")
		}

		tok := z.Token()

		if err := p.token(tok); err != nil {
			return nil, err
		}

		p.offset += size
	}

	if len(p.stack) != 0 {
		// The tokenizer stopped before the synthetic close tag, which only
		// happens inside raw text such as an unterminated <script>.
		if p.strict {
			return nil, p.errorf(ErrUnclosedElement, p.top().Tag)
		}
	}

	return p.root, nil
}

func (p *parser) token(tok html.Token) error {
	switch tok.Type {
	case html.StartTagToken, html.SelfClosingTagToken:
		el := &Element{Tag: tok.Data, Attrs: attrs(tok.Attr)}

		if p.root == nil {
			p.root = el
			p.stack = append(p.stack, el)

			return nil
		}

		if len(p.stack) == 0 {
			return nil
		}

		p.top().Children = append(p.top().Children, el)

		if tok.Type == html.StartTagToken && !voidTags[tok.Data] {
			p.stack = append(p.stack, el)
		}

	case html.EndTagToken:
		return p.close(tok.Data)

	case html.TextToken:
		if len(p.stack) == 0 || tok.Data == "" {
			return nil
		}

		parent := p.top()

		if n := len(parent.Children); n > 0 {
			if prev, ok := parent.Children[n-1].(*Text); ok {
				prev.Content += tok.Data

				return nil
			}
		}

		parent.Children = append(parent.Children, &Text{Content: tok.Data})
	}

	return nil
}

// close pops the stack through the nearest open element named tag.
func (p *parser) close(tag string) error {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].Tag != tag {
			continue
		}

		if p.strict && i != len(p.stack)-1 {
			return p.errorf(ErrUnclosedElement, p.top().Tag)
		}

		p.stack = p.stack[:i]

		return nil
	}

	if p.strict {
		return p.errorf(ErrUnexpectedEndTag, tag)
	}

	return nil
}

func attrs(in []html.Attribute) []Attr {
	if len(in) == 0 {
		return nil
	}

	out := make([]Attr, 0, len(in))
	seen := make(map[string]bool, len(in))

	for _, a := range in {
		if seen[a.Key] {
			continue
		}

		seen[a.Key] = true
		out = append(out, Attr{Key: a.Key, Val: a.Val})
	}

	return out
}

func (p *parser) errorf(err error, tag string) *ParseError {
	offset := min(max(p.offset, 0), len(p.source))
	line, col := position(p.source, offset)

	return &ParseError{
		Err:    err,
		Tag:    tag,
		Line:   line,
		Column: col,
		Source: p.source,
	}
}
