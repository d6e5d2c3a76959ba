// Package parse reads wire text into an ir.Node tree without Go types.
package parse

import (
	"fmt"
	"strings"

	"github.com/signadot/tagwire/ir"
	"github.com/signadot/tagwire/token"
)

type parseOpts struct {
	maxDepth int
}

type ParseOption func(*parseOpts)

// MaxDepth bounds object and array nesting.
func MaxDepth(n int) ParseOption {
	return func(o *parseOpts) { o.maxDepth = n }
}

type parser struct {
	opts  *parseOpts
	depth int
}

// Parse parses a whole wire document, a single object.
func Parse(text string, opts ...ParseOption) (*ir.Node, error) {
	po := &parseOpts{maxDepth: 10000}
	for _, o := range opts {
		o(po)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrParse, token.ErrEmptyDoc)
	}
	sc := token.NewScanner(text)
	obj, err := sc.Span('{', '}')
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if !sc.Done() {
		return nil, fmt.Errorf("%w %s", ErrTrailing, sc.Pos())
	}
	p := &parser{opts: po}
	return p.object(obj)
}

func (p *parser) push(sc *token.Scanner) error {
	p.depth++
	if p.depth > p.opts.maxDepth {
		return fmt.Errorf("%w: more than %d levels %s", ErrTooDeep, p.opts.maxDepth, sc.Pos())
	}
	return nil
}

func (p *parser) object(sc *token.Scanner) (*ir.Node, error) {
	if err := p.push(sc); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	if err := sc.Expect('{'); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var fields []*ir.Node
	if !sc.Accept('}') {
		for {
			pos := sc.Pos()
			key, err := sc.Quoted()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			parts := strings.Split(key, "#")
			if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
				return nil, fmt.Errorf("%w %q %s", ErrKey, key, pos)
			}
			if err := sc.Expect(':'); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			v, err := p.value(sc, parts[1])
			if err != nil {
				return nil, err
			}
			fields = append(fields, v.WithKey(parts[0], parts[1], parts[2:]...))
			if sc.Accept(',') {
				continue
			}
			if err := sc.Expect('}'); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			break
		}
	}
	if !sc.Done() {
		return nil, fmt.Errorf("%w %s", ErrTrailing, sc.Pos())
	}
	return ir.FromObject(fields...), nil
}

func (p *parser) array(sc *token.Scanner) (*ir.Node, error) {
	if err := p.push(sc); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	if err := sc.Expect('['); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	var elems []*ir.Node
	if !sc.Accept(']') {
		for {
			pos := sc.Pos()
			tag, err := sc.Quoted()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			if tag == "" {
				return nil, fmt.Errorf("%w: empty element type %s", ErrKey, pos)
			}
			if err := sc.Expect(':'); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			v, err := p.value(sc, tag)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v.WithKey("", tag))
			if sc.Accept(',') {
				continue
			}
			if err := sc.Expect(']'); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			break
		}
	}
	if !sc.Done() {
		return nil, fmt.Errorf("%w %s", ErrTrailing, sc.Pos())
	}
	return ir.FromArray(elems...), nil
}

func (p *parser) value(sc *token.Scanner, tag string) (*ir.Node, error) {
	b, ok := sc.Peek()
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrParse, sc.Err(token.ErrExpected, "value, got end of input"))
	}
	switch b {
	case '{':
		span, err := sc.Span('{', '}')
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return p.object(span)
	case '[':
		span, err := sc.Span('[', ']')
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return p.array(span)
	case '"':
		raw, err := sc.Quoted()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if raw == "null" && IsNullTag(tag) {
			return ir.Null(), nil
		}
		return ir.FromScalar(token.Unescape(raw)), nil
	}
	return nil, fmt.Errorf("%w: %w", ErrParse, sc.Err(token.ErrExpected, "value, got %q", b))
}

// IsNullTag reports whether the text null under tag is the null
// marker. Without Go types the text tags string and char are taken to
// hold literal text and every other tag the marker.
func IsNullTag(tag string) bool {
	switch tag {
	case "string", "char":
		return false
	}
	return true
}
