package gomap

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/signadot/tagwire/debug"
)

type encoder struct {
	reg   *Registry
	cfg   *mapConfig
	guard *cycleGuard
	log   *slog.Logger
	depth int
	names map[reflect.Type]string
}

func newEncoder(reg *Registry, cfg *mapConfig) *encoder {
	e := &encoder{reg: reg, cfg: cfg, guard: newCycleGuard(), log: cfg.log, names: map[reflect.Type]string{}}
	if e.log == nil && debug.Encode() {
		e.log = debug.Logger()
	}
	return e
}

func (e *encoder) encode(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return "", &EncodeError{Kind: ErrEligibility, Message: "cannot encode a nil value"}
	}
	sb := &strings.Builder{}
	if err := e.record(sb, rv, ""); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (e *encoder) fail(kind error, path string, err error, format string, args ...any) error {
	var ee *EncodeError
	if errors.As(err, &ee) {
		return err
	}
	if err != nil {
		kind = kindOf(err, kind)
	}
	return &EncodeError{Kind: kind, FieldPath: path, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *encoder) push(path string) error {
	e.depth++
	if e.depth > e.cfg.maxDepth {
		return e.fail(ErrUnsupportedType, path, nil, "nesting exceeds max depth %d", e.cfg.maxDepth)
	}
	return nil
}

func (e *encoder) pop() { e.depth-- }

// typeName returns the tag of a value whose type is only known at run
// time, such as the content of an interface.
func (e *encoder) typeName(t reflect.Type, path string) (string, error) {
	if n, ok := e.names[t]; ok {
		return n, nil
	}
	n, err := e.reg.wireName(t)
	if err != nil {
		return "", e.fail(ErrUnsupportedType, path, err, "cannot name %s", t)
	}
	e.names[t] = n
	return n, nil
}

// record writes v, a record value or non-nil pointer to one.
func (e *encoder) record(sb *strings.Builder, v reflect.Value, path string) error {
	if v.Kind() == reflect.Pointer {
		if err := e.guard.enter(v, path); err != nil {
			return err
		}
		defer e.guard.leave(v)
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return &EncodeError{Kind: ErrEligibility, FieldPath: path,
			Message: fmt.Sprintf("cannot encode %s: not a record or pointer to one", v.Type())}
	}
	desc, err := e.reg.Descriptor(v.Type())
	if err != nil {
		return e.fail(ErrEligibility, path, err, "cannot encode %s", v.Type())
	}
	if err := e.push(path); err != nil {
		return err
	}
	defer e.pop()
	if e.log != nil {
		e.log.Debug("encode record", "type", desc.Name, "path", displayPath(path))
	}
	sb.WriteByte('{')
	n := 0
	for _, f := range desc.Fields {
		if f.Omit {
			continue
		}
		fv := v.Field(f.Index)
		if desc.Nulls == NullExclude && isNull(fv) {
			continue
		}
		if n > 0 {
			sb.WriteByte(',')
		}
		n++
		if err := e.field(sb, f, fv, joinPath(path, f.WireName)); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

func (e *encoder) field(sb *strings.Builder, f *FieldDescriptor, fv reflect.Value, path string) error {
	class, tag := f.Class, f.TypeTag
	if class == Polymorphic {
		if fv.IsNil() {
			writeKey(sb, f.WireName, tag)
			sb.WriteString(`"null"`)
			return nil
		}
		fv = fv.Elem()
		class = e.reg.Classify(fv.Type())
		if class == Unsupported {
			return e.fail(ErrUnsupportedType, path, nil, "cannot encode value of type %s", fv.Type())
		}
		var err error
		if tag, err = e.typeName(fv.Type(), path); err != nil {
			return err
		}
	}
	switch class {
	case Scalar, Enum, DateTime:
		writeKey(sb, f.WireName, tag)
		if isNull(fv) {
			sb.WriteString(`"null"`)
			return nil
		}
		if fv.Kind() == reflect.Pointer {
			fv = fv.Elem()
		}
		var (
			text string
			err  error
		)
		if class == DateTime {
			text, err = formatDateTime(fv, f.Layout)
		} else {
			text, err = e.reg.scalarText(fv)
		}
		if err != nil {
			return e.fail(ErrFormat, path, err, "cannot encode %s value", tag)
		}
		writeQuoted(sb, text)
		return nil
	case Collection:
		if isNull(fv) {
			if f.Class == Polymorphic {
				// a typed nil keeps its type.
				writeKey(sb, f.WireName, tag, f.TypeTag)
			} else {
				writeKey(sb, f.WireName, "null", "null")
			}
			sb.WriteString(`"null"`)
			return nil
		}
		// the declared signature is kept as an extra tag.
		writeKey(sb, f.WireName, tag, f.TypeTag)
		return e.collection(sb, fv, path)
	case Record:
		writeKey(sb, f.WireName, tag)
		if isNull(fv) {
			sb.WriteString(`"null"`)
			return nil
		}
		return e.record(sb, fv, path)
	}
	return e.fail(ErrUnsupportedType, path, nil, "cannot encode value of type %s", fv.Type())
}

func (e *encoder) collection(sb *strings.Builder, v reflect.Value, path string) error {
	if err := e.guard.enter(v, path); err != nil {
		return err
	}
	defer e.guard.leave(v)
	if err := e.push(path); err != nil {
		return err
	}
	defer e.pop()
	var (
		members   []reflect.Value
		unordered bool
	)
	if isSetType(v.Type()) {
		unordered = true
		members = make([]reflect.Value, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			members = append(members, iter.Key())
		}
	} else if _, ok := setElem(v.Type()); ok {
		s, ok := setOf(v)
		if !ok {
			return e.fail(ErrAccess, path, nil, "cannot read set of type %s", v.Type())
		}
		unordered, members = true, s.setValues()
	}
	sb.WriteByte('[')
	if unordered {
		elems := make([]string, 0, len(members))
		for i, m := range members {
			esb := &strings.Builder{}
			if err := e.element(esb, m, elemPath(path, i)); err != nil {
				return err
			}
			elems = append(elems, esb.String())
		}
		slices.Sort(elems)
		sb.WriteString(strings.Join(elems, ","))
	} else {
		for i := range v.Len() {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := e.element(sb, v.Index(i), elemPath(path, i)); err != nil {
				return err
			}
		}
	}
	sb.WriteByte(']')
	return nil
}

func (e *encoder) element(sb *strings.Builder, v reflect.Value, path string) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			sb.WriteString(`"null":"null"`)
			return nil
		}
		v = v.Elem()
	}
	if isNull(v) {
		sb.WriteString(`"null":"null"`)
		return nil
	}
	class := e.reg.Classify(v.Type())
	if class == Unsupported {
		return e.fail(ErrUnsupportedType, path, nil, "cannot encode element of type %s", v.Type())
	}
	name, err := e.typeName(v.Type(), path)
	if err != nil {
		return err
	}
	switch class {
	case Scalar, Enum, DateTime:
		sv := v
		if sv.Kind() == reflect.Pointer {
			sv = sv.Elem()
		}
		var (
			text string
			err  error
		)
		if class == DateTime {
			text, err = formatDateTime(sv, "")
		} else {
			text, err = e.reg.scalarText(sv)
		}
		if err != nil {
			return e.fail(ErrFormat, path, err, "cannot encode %s element", name)
		}
		writeQuoted(sb, name)
		sb.WriteByte(':')
		writeQuoted(sb, text)
		return nil
	case Collection:
		writeQuoted(sb, name)
		sb.WriteByte(':')
		return e.collection(sb, v, path)
	case Record:
		writeQuoted(sb, name)
		sb.WriteByte(':')
		return e.record(sb, v, path)
	}
	return e.fail(ErrUnsupportedType, path, nil, "cannot encode element of type %s", v.Type())
}

func writeKey(sb *strings.Builder, parts ...string) {
	writeQuoted(sb, strings.Join(parts, "#"))
	sb.WriteByte(':')
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	sb.WriteString(s)
	sb.WriteByte('"')
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func elemPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
