package ir

import (
	"slices"
	"strconv"
	"strings"
)

type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int

	// Name is the field name; empty for elements and the root.
	Name string
	// Tag is the type tag of a field or the runtime type name of an
	// element.
	Tag   string
	Extra []string

	Text   string
	Values []*Node
}

// FromObject returns an object node holding fields.
func FromObject(fields ...*Node) *Node {
	return adopt(&Node{Type: ObjectType}, fields)
}

// FromArray returns an array node holding elems.
func FromArray(elems ...*Node) *Node {
	return adopt(&Node{Type: ArrayType}, elems)
}

func FromScalar(text string) *Node {
	return &Node{Type: ScalarType, Text: text}
}

func Null() *Node {
	return &Node{Type: NullType}
}

func adopt(parent *Node, kids []*Node) *Node {
	parent.Values = kids
	for i, k := range kids {
		k.Parent = parent
		k.ParentIndex = i
	}
	return parent
}

// WithKey sets the name and tags of the key the node is found under.
func (n *Node) WithKey(name, tag string, extra ...string) *Node {
	n.Name = name
	n.Tag = tag
	n.Extra = extra
	return n
}

// Key returns the wire key of the node: name#tag[#extra...] for fields
// and the tag for elements.
func (n *Node) Key() string {
	if n.Name == "" {
		return n.Tag
	}
	return strings.Join(append([]string{n.Name, n.Tag}, n.Extra...), "#")
}

// IsField reports whether n is a field of an object.
func (n *Node) IsField() bool {
	return n.Parent != nil && n.Parent.Type == ObjectType
}

// Get returns the field called name of an object node.
func (n *Node) Get(name string) *Node {
	if n.Type != ObjectType {
		return nil
	}
	for _, f := range n.Values {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Path returns the location of n from the root, as in "owner.tags[2]".
func (n *Node) Path() string {
	if n.Parent == nil {
		return ""
	}
	pp := n.Parent.Path()
	if n.IsField() {
		if pp == "" {
			return n.Name
		}
		return pp + "." + n.Name
	}
	return pp + "[" + strconv.Itoa(n.ParentIndex) + "]"
}

func (n *Node) Clone() *Node {
	res := &Node{
		Type:        n.Type,
		ParentIndex: n.ParentIndex,
		Name:        n.Name,
		Tag:         n.Tag,
		Extra:       slices.Clone(n.Extra),
		Text:        n.Text,
	}
	if n.Values != nil {
		kids := make([]*Node, len(n.Values))
		for i, v := range n.Values {
			kids[i] = v.Clone()
		}
		adopt(res, kids)
	}
	return res
}

// Equal reports whether a and b are the same document, keys included.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type != b.Type || a.Name != b.Name || a.Tag != b.Tag || a.Text != b.Text {
		return false
	}
	if !slices.Equal(a.Extra, b.Extra) || len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if !Equal(a.Values[i], b.Values[i]) {
			return false
		}
	}
	return true
}

// ToAny converts n to nil, string, []any and map[string]any values.
// With tags, object keys keep their type tags and elements become
// single entry maps from runtime type to value.
func ToAny(n *Node, tags bool) any {
	switch n.Type {
	case ScalarType:
		return n.Text
	case ArrayType:
		res := make([]any, len(n.Values))
		for i, e := range n.Values {
			v := ToAny(e, tags)
			if tags {
				v = map[string]any{e.Tag: v}
			}
			res[i] = v
		}
		return res
	case ObjectType:
		res := make(map[string]any, len(n.Values))
		for _, f := range n.Values {
			k := f.Name
			if tags {
				k = f.Key()
			}
			res[k] = ToAny(f, tags)
		}
		return res
	}
	return nil
}
