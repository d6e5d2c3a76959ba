package gomap

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Set is an unordered collection of distinct values. Unlike a
// map[K]struct{} set, its elements need not be comparable: two values
// are the same element when they have the same contents, so a Set may
// hold lists, maps and other sets. Its type name is "set[T]".
//
// Like a map, a Set shares its storage with its copies and the zero Set
// is empty. Elements should not be modified after they are added.
type Set[T any] struct {
	d *setData[T]
}

type setData[T any] struct {
	elems []T
	index map[string]int
}

// NewSet returns a set holding vs.
func NewSet[T any](vs ...T) Set[T] {
	s := Set[T]{}
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

// Add adds v and reports whether it was not already present.
func (s *Set[T]) Add(v T) bool {
	if s.d == nil {
		s.d = &setData[T]{index: map[string]int{}}
	}
	k := keyOf(v)
	if _, ok := s.d.index[k]; ok {
		return false
	}
	s.d.index[k] = len(s.d.elems)
	s.d.elems = append(s.d.elems, v)
	return true
}

// Has reports whether v is an element of s.
func (s Set[T]) Has(v T) bool {
	if s.d == nil {
		return false
	}
	_, ok := s.d.index[keyOf(v)]
	return ok
}

// Remove removes v and reports whether it was present.
func (s Set[T]) Remove(v T) bool {
	if s.d == nil {
		return false
	}
	k := keyOf(v)
	i, ok := s.d.index[k]
	if !ok {
		return false
	}
	last := len(s.d.elems) - 1
	if i != last {
		s.d.elems[i] = s.d.elems[last]
		s.d.index[keyOf(s.d.elems[i])] = i
	}
	var zero T
	s.d.elems[last] = zero
	s.d.elems = s.d.elems[:last]
	delete(s.d.index, k)
	return true
}

func (s Set[T]) Len() int {
	if s.d == nil {
		return 0
	}
	return len(s.d.elems)
}

// Values returns the elements of s in no particular order.
func (s Set[T]) Values() []T {
	if s.d == nil {
		return nil
	}
	return slices.Clone(s.d.elems)
}

// Equal reports whether s and o hold the same elements.
func (s Set[T]) Equal(o Set[T]) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, k := range s.setKeys() {
		if _, ok := o.d.index[k]; !ok {
			return false
		}
	}
	return true
}

func (s Set[T]) String() string {
	vs := make([]string, 0, s.Len())
	for _, v := range s.Values() {
		vs = append(vs, fmt.Sprint(v))
	}
	slices.Sort(vs)
	return "{" + strings.Join(vs, " ") + "}"
}

// RegisterSet makes the type name set[T] resolvable. Set types used by
// record fields are registered with the record; sets only ever held in
// interface values need this before they can be decoded.
func RegisterSet[T any](r *Registry) error {
	_, err := r.wireName(reflect.TypeFor[Set[T]]())
	return err
}

// wireSet gives reflection access to a Set[T] whatever its T.
type wireSet interface {
	setElem() reflect.Type
	setValues() []reflect.Value
	setKeys() []string
	setStorage() reflect.Value
}

type wireSetAdder interface {
	setAdd(reflect.Value)
}

var wireSetType = reflect.TypeFor[wireSet]()

func (s Set[T]) setElem() reflect.Type { return reflect.TypeFor[T]() }

func (s Set[T]) setValues() []reflect.Value {
	if s.d == nil {
		return nil
	}
	res := make([]reflect.Value, len(s.d.elems))
	for i := range s.d.elems {
		res[i] = reflect.ValueOf(&s.d.elems[i]).Elem()
	}
	return res
}

func (s Set[T]) setKeys() []string {
	if s.d == nil {
		return nil
	}
	res := make([]string, 0, len(s.d.index))
	for k := range s.d.index {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

func (s Set[T]) setStorage() reflect.Value { return reflect.ValueOf(s.d) }

func (s *Set[T]) setAdd(v reflect.Value) {
	var x T
	if v.IsValid() {
		x, _ = v.Interface().(T)
	}
	s.Add(x)
}

var setPkgPath = reflect.TypeFor[Set[int]]().PkgPath()

// setElem returns the element type of t if t is a Set type. Structs
// embedding a Set are not sets.
func setElem(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || t.PkgPath() != setPkgPath || !strings.HasPrefix(t.Name(), "Set[") {
		return nil, false
	}
	if !t.Implements(wireSetType) {
		return nil, false
	}
	return reflect.Zero(t).Interface().(wireSet).setElem(), true
}

func setOf(v reflect.Value) (wireSet, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	if _, ok := setElem(v.Type()); !ok {
		return nil, false
	}
	return v.Interface().(wireSet), true
}

// keyOf returns the canonical text of v used to compare set elements.
func keyOf[T any](v T) string {
	sb := &strings.Builder{}
	writeKeyOf(sb, reflect.ValueOf(&v).Elem(), map[uintptr]bool{})
	return sb.String()
}

func writeKeyOf(sb *strings.Builder, v reflect.Value, active map[uintptr]bool) {
	if !v.IsValid() {
		sb.WriteString("nil")
		return
	}
	if s, ok := setOf(v); ok {
		sb.WriteString("set{")
		sb.WriteString(strings.Join(s.setKeys(), ","))
		sb.WriteByte('}')
		return
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			sb.WriteString("nil")
			return
		}
		sb.WriteString(v.Elem().Type().String())
		sb.WriteByte(':')
		writeKeyOf(sb, v.Elem(), active)
	case reflect.Pointer:
		if v.IsNil() {
			sb.WriteString("nil")
			return
		}
		p := v.Pointer()
		if active[p] {
			sb.WriteString("cycle")
			return
		}
		active[p] = true
		defer delete(active, p)
		sb.WriteByte('&')
		writeKeyOf(sb, v.Elem(), active)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			sb.WriteString("nil")
			return
		}
		sb.WriteByte('[')
		for i := range v.Len() {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeKeyOf(sb, v.Index(i), active)
		}
		sb.WriteByte(']')
	case reflect.Map:
		if v.IsNil() {
			sb.WriteString("nil")
			return
		}
		entries := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			esb := &strings.Builder{}
			writeKeyOf(esb, iter.Key(), active)
			esb.WriteByte('=')
			writeKeyOf(esb, iter.Value(), active)
			entries = append(entries, esb.String())
		}
		slices.Sort(entries)
		sb.WriteString("map[")
		sb.WriteString(strings.Join(entries, ","))
		sb.WriteByte(']')
	case reflect.Struct:
		sb.WriteByte('{')
		for i := range v.NumField() {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeKeyOf(sb, v.Field(i), active)
		}
		sb.WriteByte('}')
	case reflect.String:
		sb.WriteString(strconv.Quote(v.String()))
	case reflect.Bool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sb.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		sb.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64, reflect.Complex128:
		sb.WriteString(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	default:
		fmt.Fprintf(sb, "%s@%x", v.Kind(), v.Pointer())
	}
}
