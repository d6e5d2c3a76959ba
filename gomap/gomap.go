package gomap

import "reflect"

// ToText encodes v with the default registry.
func ToText(v any, opts ...MapOption) (string, error) {
	return DefaultMapper().ToText(v, opts...)
}

// FromText decodes text into p with the default registry.
func FromText(text string, p any, opts ...UnmapOption) error {
	return DefaultMapper().FromText(text, p, opts...)
}

// Decode decodes text into a new *T for the record type t with the
// default registry.
func Decode(t reflect.Type, text string, opts ...UnmapOption) (any, error) {
	return DefaultMapper().Decode(t, text, opts...)
}

// Register registers a record type in the default registry.
func Register(v any, opts ...RegisterOption) error {
	return DefaultRegistry().Register(v, opts...)
}

// RegisterName registers a named scalar or collection type in the
// default registry.
func RegisterName(v any, name string) error {
	return DefaultRegistry().RegisterName(v, name)
}
