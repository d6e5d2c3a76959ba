package gomap

import (
	"fmt"
	"reflect"
)

// Mapper encodes and decodes values using the types of a Registry.
type Mapper struct {
	registry *Registry
}

// NewMapper returns a mapper over r, or over the default registry when
// r is nil.
func NewMapper(r *Registry) *Mapper {
	if r == nil {
		r = DefaultRegistry()
	}
	return &Mapper{registry: r}
}

// DefaultMapper returns a mapper over the current default registry.
func DefaultMapper() *Mapper {
	return NewMapper(nil)
}

func (m *Mapper) Registry() *Registry {
	return m.registry
}

// ToText encodes the record v, a T or *T with T exportable.
func (m *Mapper) ToText(v any, opts ...MapOption) (string, error) {
	return newEncoder(m.registry, newMapConfig(opts)).encode(v)
}

// FromText decodes text into p, which must be a non-nil *T with T
// exportable. p is only written when decoding succeeds.
func (m *Mapper) FromText(text string, p any, opts ...UnmapOption) error {
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &DecodeError{Kind: ErrEligibility, Message: "target must be a non-nil pointer"}
	}
	if rv.Elem().Kind() != reflect.Struct {
		return &DecodeError{Kind: ErrEligibility,
			Message: fmt.Sprintf("target must point to a record, got %s", rv.Type())}
	}
	res, err := newDecoder(m.registry, newUnmapConfig(opts)).decode(rv.Type().Elem(), text)
	if err != nil {
		return err
	}
	rv.Elem().Set(res.Elem())
	return nil
}

// Decode decodes text into a new instance of the record type t (or of
// its element if t is a pointer) and returns it as a *T.
func (m *Mapper) Decode(t reflect.Type, text string, opts ...UnmapOption) (any, error) {
	if t == nil {
		return nil, &DecodeError{Kind: ErrEligibility, Message: "nil target type"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &DecodeError{Kind: ErrEligibility,
			Message: fmt.Sprintf("target type must be a record or pointer to one, got %s", t)}
	}
	res, err := newDecoder(m.registry, newUnmapConfig(opts)).decode(t, text)
	if err != nil {
		return nil, err
	}
	return res.Interface(), nil
}
