package encode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/signadot/tagwire/ir"
	"github.com/signadot/tagwire/token"
)

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	depth     int
	indent    int
	hideExtra bool

	Color func(ir.Type, ColorAttr, string) string
}

// Encode writes node, an object, to w. In the compact form the output
// is wire text; the indented form adds a trailing newline.
func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	if node == nil || node.Type != ir.ObjectType {
		return fmt.Errorf("%w: document root must be an object", ErrEncoding)
	}
	if err := encode(node, w, es); err != nil {
		return err
	}
	if es.indent > 0 {
		return writeString(w, "\n")
	}
	return nil
}

// MustString returns the compact wire text of node.
func MustString(node *ir.Node, opts ...EncodeOption) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf, opts...); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}

func encode(node *ir.Node, w io.Writer, es *EncState) error {
	switch node.Type {
	case ir.ObjectType:
		return encodeContainer(node, w, es, "{", "}")
	case ir.ArrayType:
		return encodeContainer(node, w, es, "[", "]")
	case ir.NullType:
		return writeQuoted(w, es, ir.NullType, ValueColor, "null")
	case ir.ScalarType:
		text, err := token.Escape(node.Text)
		if err != nil {
			return fmt.Errorf("%w at %s: %w", ErrEncoding, node.Path(), err)
		}
		return writeQuoted(w, es, ir.ScalarType, ValueColor, text)
	}
	return fmt.Errorf("%w: unknown node type %s", ErrEncoding, node.Type)
}

func encodeContainer(node *ir.Node, w io.Writer, es *EncState, open, close string) error {
	if err := writeColored(w, es, node.Type, SepColor, open); err != nil {
		return err
	}
	if len(node.Values) == 0 {
		return writeColored(w, es, node.Type, SepColor, close)
	}
	es.depth++
	for i, kid := range node.Values {
		if i > 0 {
			if err := writeColored(w, es, node.Type, SepColor, ","); err != nil {
				return err
			}
		}
		if err := writeNL(w, es); err != nil {
			return err
		}
		if err := writeKey(w, es, kid); err != nil {
			return err
		}
		if err := encode(kid, w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeNL(w, es); err != nil {
		return err
	}
	return writeColored(w, es, node.Type, SepColor, close)
}

func writeKey(w io.Writer, es *EncState, n *ir.Node) error {
	if err := writeColored(w, es, n.Type, SepColor, `"`); err != nil {
		return err
	}
	if n.Name != "" {
		if err := writeColored(w, es, n.Type, FieldColor, n.Name+"#"); err != nil {
			return err
		}
	}
	if err := writeColored(w, es, n.Type, TagColor, n.Tag); err != nil {
		return err
	}
	if len(n.Extra) > 0 && !es.hideExtra {
		if err := writeColored(w, es, n.Type, ExtraColor, "#"+strings.Join(n.Extra, "#")); err != nil {
			return err
		}
	}
	sep := `":`
	if es.indent > 0 {
		sep += " "
	}
	return writeColored(w, es, n.Type, SepColor, sep)
}

func writeQuoted(w io.Writer, es *EncState, t ir.Type, a ColorAttr, s string) error {
	return writeColored(w, es, t, a, `"`+s+`"`)
}

func writeColored(w io.Writer, es *EncState, t ir.Type, a ColorAttr, s string) error {
	if es.Color != nil {
		s = es.Color(t, a, s)
	}
	return writeString(w, s)
}

func writeNL(w io.Writer, es *EncState) error {
	if es.indent == 0 {
		return nil
	}
	return writeString(w, "\n"+strings.Repeat(" ", es.indent*es.depth))
}

func writeString(w io.Writer, s string) error {
	_, err := w.Write([]byte(s))
	return err
}
