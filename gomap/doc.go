// Package gomap encodes exportable Go structs into self-describing wire
// text and decodes them back.
//
// # Usage
//
//	type Comment struct {
//	    gomap.Exported `wire:"nulls=include"`
//	    Text     string `wire:"field=comment"`
//	    Resolved bool   `wire:"field=resolved"`
//	}
//	text, err := gomap.ToText(&Comment{Text: "hello"})
//	// {"comment#string":"hello","resolved#bool":"false"}
//
//	var c Comment
//	err = gomap.FromText(text, &c)
//
// Every key carries the wire type name of its value, so decoding never
// needs a schema beyond the Go type being decoded into. Type names are
// Go type expressions over registry identifiers, for example
// "*Person", "[]string" or "map[int]struct {}".
//
// # Types
//
// Records are structs embedding [Exported]. Their fields may be
// scalars (bool, integers, floats, strings, [Char], text marshalers),
// enums registered with [RegisterEnum], date/times (time.Time and the
// civil package types), slices, arrays, sets, other records and
// interfaces. A set is a map[K]struct{} when its elements are comparable
// or a [Set] otherwise. Pointers make scalars, date/times and records
// nullable.
//
// Record types are registered in a [Registry] on first use, or up front
// with [Registry.Register] to choose names and factories.
//
// # Related Packages
//
//   - github.com/signadot/tagwire/token - escaping and scanning
//   - github.com/signadot/tagwire/stream - readers, writers and files
package gomap
