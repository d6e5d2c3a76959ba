package gomap

import (
	"fmt"
	"reflect"
)

// identity of a value reached during one encode call. Slices sharing a
// backing array with different lengths are different values. A Set is
// identified by its storage.
type identity struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

// cycleGuard holds the values currently being encoded, mapped to the
// path where each was entered. Values are removed when their subtree is
// done, so shared non-cyclic substructure is allowed.
type cycleGuard struct {
	active map[identity]string
}

func newCycleGuard() *cycleGuard {
	return &cycleGuard{active: map[identity]string{}}
}

func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type(), n: v.Len()}, true
	case reflect.Map:
		if v.Len() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), typ: v.Type()}, true
	case reflect.Struct:
		if s, ok := setOf(v); ok {
			return identityOf(s.setStorage())
		}
	}
	return identity{}, false
}

func (g *cycleGuard) enter(v reflect.Value, path string) error {
	id, ok := identityOf(v)
	if !ok {
		return nil
	}
	if prev, seen := g.active[id]; seen {
		return &EncodeError{
			Kind:      ErrCycle,
			FieldPath: path,
			Message:   fmt.Sprintf("circular reference: %s at %s refers back to its ancestor at %s", v.Type(), displayPath(path), displayPath(prev)),
		}
	}
	g.active[id] = path
	return nil
}

func (g *cycleGuard) leave(v reflect.Value) {
	if id, ok := identityOf(v); ok {
		delete(g.active, id)
	}
}

func displayPath(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}
