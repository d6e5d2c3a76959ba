package gomap

import (
	"encoding"
	"reflect"
)

// Class is the encoding strategy of a type.
type Class int

const (
	Unsupported Class = iota
	Scalar
	Enum
	DateTime
	Collection
	Record
	Polymorphic
)

func (c Class) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case Enum:
		return "enum"
	case DateTime:
		return "datetime"
	case Collection:
		return "collection"
	case Record:
		return "record"
	case Polymorphic:
		return "polymorphic"
	default:
		return "unsupported"
	}
}

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Classify returns the class of t. Pointers to scalars, enums, date
// times and records share the class of their element and are nullable.
func (r *Registry) Classify(t reflect.Type) Class {
	return r.classify(t, r.lookup)
}

func (r *Registry) classify(t reflect.Type, lookup lookupFunc) Class {
	if t == nil {
		return Unsupported
	}
	if t.Kind() == reflect.Pointer {
		switch c := r.classifyValue(t.Elem(), lookup); c {
		case Scalar, Enum, DateTime, Record:
			return c
		default:
			return Unsupported
		}
	}
	return r.classifyValue(t, lookup)
}

func (r *Registry) classifyValue(t reflect.Type, lookup lookupFunc) Class {
	switch t {
	case timeType, dateType, clockType, dateTimeType:
		return DateTime
	case charType:
		return Scalar
	}
	if _, ok := setElem(t); ok {
		return Collection
	}
	if e := lookup(t); e != nil && e.enum != nil {
		return Enum
	}
	switch t.Kind() {
	case reflect.Interface:
		return Polymorphic
	case reflect.Struct:
		if hasMarker(t) {
			return Record
		}
	}
	if isTextScalar(t) {
		return Scalar
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Scalar
	case reflect.Slice, reflect.Array:
		return Collection
	case reflect.Map:
		if isSetType(t) {
			return Collection
		}
	}
	return Unsupported
}

// isTextScalar reports whether values of t round-trip through
// MarshalText and UnmarshalText.
func isTextScalar(t reflect.Type) bool {
	return t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// nullable reports whether t has a null value.
func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

func isNull(v reflect.Value) bool {
	return nullable(v.Type()) && v.IsNil()
}

func hasMarker(t reflect.Type) bool {
	_, ok := markerField(t)
	return ok
}

func markerField(t reflect.Type) (reflect.StructField, bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && f.Type == exportedType {
			return f, true
		}
	}
	return reflect.StructField{}, false
}
