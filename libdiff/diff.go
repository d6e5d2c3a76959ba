package libdiff

import (
	"strconv"
	"strings"

	"github.com/signadot/tagwire/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns the changes turning from into to, in document order.
// Identical documents give no changes.
func Diff(from, to *ir.Node) []Change {
	d := &differ{}
	d.node("", from, to)
	return d.changes
}

type differ struct {
	changes []Change
}

func (d *differ) add(c Change) { d.changes = append(d.changes, c) }

func (d *differ) node(path string, from, to *ir.Node) {
	if from.Type != to.Type || from.Tag != to.Tag {
		d.add(Change{Op: Changed, Path: path, From: from, To: to})
		return
	}
	switch from.Type {
	case ir.ScalarType:
		if from.Text != to.Text {
			d.add(Change{Op: Changed, Path: path, From: from, To: to, Text: DiffText(from.Text, to.Text)})
		}
	case ir.ObjectType:
		d.object(path, from, to)
	case ir.ArrayType:
		d.array(path, from, to)
	}
}

func (d *differ) object(path string, from, to *ir.Node) {
	seen := make(map[string]bool, len(from.Values))
	for _, f := range from.Values {
		seen[f.Name] = true
		p := fieldPath(path, f.Name)
		t := to.Get(f.Name)
		if t == nil {
			d.add(Change{Op: Removed, Path: p, From: f})
			continue
		}
		d.node(p, f, t)
	}
	for _, t := range to.Values {
		if !seen[t.Name] {
			d.add(Change{Op: Added, Path: fieldPath(path, t.Name), To: t})
		}
	}
}

// array aligns elements by summary runes, recursing into aligned
// pairs. A removal directly followed by an addition is a change.
func (d *differ) array(path string, from, to *ir.Node) {
	m := map[string]rune{}
	fromRunes := summaryRunes(m, from)
	toRunes := summaryRunes(m, to)
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)

	fi, ti := 0, 0
	// removals of the run just before an insertion pair up with it.
	delStart, delCount := 0, 0
	for i := range diffs {
		n := len([]rune(diffs[i].Text))
		switch diffs[i].Type {
		case diffpatch.DiffDelete:
			delStart, delCount = len(d.changes), n
			for range n {
				d.add(Change{Op: Removed, Path: elemPath(path, fi), From: from.Values[fi]})
				fi++
			}
		case diffpatch.DiffInsert:
			for j := range n {
				if j < delCount {
					c := &d.changes[delStart+j]
					c.Op = Changed
					c.To = to.Values[ti]
				} else {
					d.add(Change{Op: Added, Path: elemPath(path, ti), To: to.Values[ti]})
				}
				ti++
			}
			delCount = 0
		case diffpatch.DiffEqual:
			delCount = 0
			for range n {
				d.node(elemPath(path, fi), from.Values[fi], to.Values[ti])
				fi++
				ti++
			}
		}
	}
}

func summaryRunes(m map[string]rune, node *ir.Node) []rune {
	rs := make([]rune, len(node.Values))
	for i, v := range node.Values {
		sum := summaryStr(v)
		r, ok := m[sum]
		if !ok {
			r = rune(len(m))
			m[sum] = r
		}
		rs[i] = r
	}
	return rs
}

// summaryStr keys an element for alignment. Containers align on their
// runtime type only, so edits inside them are reported as nested
// changes.
func summaryStr(node *ir.Node) string {
	switch node.Type {
	case ir.ScalarType:
		if strings.Contains(node.Text, "\n") {
			return node.Tag + "/m"
		}
		return node.Tag + "-" + node.Text
	}
	return node.Tag + "/" + node.Type.String()
}

// DiffText returns a semantic character diff of two texts, line based
// when both span lines.
func DiffText(from, to string) []diffpatch.Diff {
	dmp := diffpatch.New()
	multiLine := strings.Contains(from, "\n") && strings.Contains(to, "\n")
	diffs := dmp.DiffMain(from, to, multiLine)
	return dmp.DiffCleanupSemantic(diffs)
}

func fieldPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
