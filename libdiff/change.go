package libdiff

import (
	"fmt"
	"strings"

	"github.com/signadot/tagwire/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Op int

const (
	Added Op = iota
	Removed
	Changed
)

func (o Op) String() string {
	switch o {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Changed:
		return "~"
	}
	return "?"
}

// Change is one difference. Path is relative to the compared roots and
// uses the to side for additions and the from side otherwise.
type Change struct {
	Op       Op
	Path     string
	From, To *ir.Node

	// Text holds a character diff when both sides are text scalars.
	Text []diffpatch.Diff
}

func (c Change) String() string {
	path := c.Path
	if path == "" {
		path = "<root>"
	}
	switch c.Op {
	case Added:
		return fmt.Sprintf("+ %s: %s", path, summary(c.To))
	case Removed:
		return fmt.Sprintf("- %s: %s", path, summary(c.From))
	}
	if c.Text != nil {
		return fmt.Sprintf("~ %s: %s", path, textDiff(c.Text))
	}
	return fmt.Sprintf("~ %s: %s -> %s", path, summary(c.From), summary(c.To))
}

func summary(n *ir.Node) string {
	var v string
	switch n.Type {
	case ir.NullType:
		v = "null"
	case ir.ScalarType:
		v = fmt.Sprintf("%q", n.Text)
	case ir.ObjectType:
		v = fmt.Sprintf("{%d fields}", len(n.Values))
	case ir.ArrayType:
		v = fmt.Sprintf("[%d elements]", len(n.Values))
	}
	if n.Tag == "" {
		return v
	}
	return n.Tag + " " + v
}

// textDiff renders insertions as {+x+} and deletions as [-x-].
func textDiff(diffs []diffpatch.Diff) string {
	b := &strings.Builder{}
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// Reverse returns the changes that turn to back into from.
func Reverse(changes []Change) []Change {
	res := make([]Change, len(changes))
	for i, c := range changes {
		r := Change{Path: c.Path, From: c.To, To: c.From}
		switch c.Op {
		case Added:
			r.Op = Removed
		case Removed:
			r.Op = Added
		default:
			r.Op = Changed
		}
		if c.Text != nil {
			r.Text = make([]diffpatch.Diff, len(c.Text))
			for j, d := range c.Text {
				switch d.Type {
				case diffpatch.DiffInsert:
					d.Type = diffpatch.DiffDelete
				case diffpatch.DiffDelete:
					d.Type = diffpatch.DiffInsert
				}
				r.Text[j] = d
			}
		}
		res[i] = r
	}
	return res
}
