package gomap

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/signadot/tagwire/debug"
	"github.com/signadot/tagwire/token"
)

type decoder struct {
	reg   *Registry
	cfg   *unmapConfig
	log   *slog.Logger
	depth int
}

func newDecoder(reg *Registry, cfg *unmapConfig) *decoder {
	d := &decoder{reg: reg, cfg: cfg, log: cfg.log}
	if d.log == nil && debug.Decode() {
		d.log = debug.Logger()
	}
	return d
}

// decode returns a *T for the record type t.
func (d *decoder) decode(t reflect.Type, text string) (reflect.Value, error) {
	if text == "" {
		return reflect.Value{}, d.fail(ErrFormat, "", token.ErrEmptyDoc, "no record")
	}
	sc := token.NewScanner(text)
	obj, err := sc.Span('{', '}')
	if err != nil {
		return reflect.Value{}, d.fail(ErrFormat, "", err, "")
	}
	if !sc.Done() {
		return reflect.Value{}, d.fail(ErrFormat, "", sc.Err(token.ErrTrailing, "after record"), "")
	}
	return d.record(t, obj, "")
}

func (d *decoder) fail(kind error, path string, err error, format string, args ...any) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	if err != nil {
		kind = kindOf(err, kind)
	}
	return &DecodeError{Kind: kind, FieldPath: path, Message: fmt.Sprintf(format, args...), Err: err}
}

func (d *decoder) push(path string) error {
	d.depth++
	if d.depth > d.cfg.maxDepth {
		return d.fail(ErrFormat, path, nil, "nesting exceeds max depth %d", d.cfg.maxDepth)
	}
	return nil
}

func (d *decoder) pop() { d.depth-- }

// record decodes the object spanned by sc into a new *T.
func (d *decoder) record(t reflect.Type, sc *token.Scanner, path string) (reflect.Value, error) {
	desc, err := d.reg.Descriptor(t)
	if err != nil {
		return reflect.Value{}, d.fail(ErrEligibility, path, err, "cannot decode %s", t)
	}
	obj, err := desc.New()
	if err != nil {
		return reflect.Value{}, d.fail(ErrEligibility, path, err, "")
	}
	if err := d.push(path); err != nil {
		return reflect.Value{}, err
	}
	defer d.pop()
	if d.log != nil {
		d.log.Debug("decode record", "type", desc.Name, "path", displayPath(path))
	}
	if err := sc.Expect('{'); err != nil {
		return reflect.Value{}, d.fail(ErrFormat, path, err, "")
	}
	if sc.Accept('}') {
		return obj, d.done(sc, path)
	}
	for {
		start := sc.Offset()
		key, err := sc.Quoted()
		if err != nil {
			return reflect.Value{}, d.fail(ErrFormat, path, err, "field key")
		}
		tags := strings.Split(key, "#")
		fpath := joinPath(path, tags[0])
		f, ok := desc.Field(tags[0])
		if !ok {
			return reflect.Value{}, d.fail(ErrFormat, fpath, nil, "unknown field %q for %s", tags[0], desc.Name)
		}
		if len(tags) < 2 {
			return reflect.Value{}, d.fail(ErrFormat, fpath, nil, "key %q has no type tag", key)
		}
		if err := sc.Expect(':'); err != nil {
			return reflect.Value{}, d.fail(ErrFormat, fpath, err, "")
		}
		fv := obj.Elem().Field(f.Index)
		if !fv.CanSet() {
			return reflect.Value{}, d.fail(ErrAccess, fpath, nil, "field %s cannot be set", f.Name)
		}
		if err := d.field(sc, f, fv, tags[1], fpath); err != nil {
			return reflect.Value{}, err
		}
		if sc.Offset() <= start {
			return reflect.Value{}, d.fail(ErrFormat, fpath, sc.Err(token.ErrNoProgress, ""), "")
		}
		if sc.Accept(',') {
			continue
		}
		if err := sc.Expect('}'); err != nil {
			return reflect.Value{}, d.fail(ErrFormat, fpath, err, "")
		}
		break
	}
	return obj, d.done(sc, path)
}

func (d *decoder) done(sc *token.Scanner, path string) error {
	if sc.Done() {
		return nil
	}
	return d.fail(ErrFormat, path, sc.Err(token.ErrTrailing, ""), "")
}

// field decodes the value following a field key into fv. tag is the
// type tag of the key.
func (d *decoder) field(sc *token.Scanner, f *FieldDescriptor, fv reflect.Value, tag, path string) error {
	class, t := f.Class, f.Type
	if class == Polymorphic {
		if tag == f.TypeTag || tag == "null" {
			raw, err := sc.Quoted()
			if err != nil {
				return d.fail(ErrFormat, path, err, "")
			}
			if raw != "null" {
				return d.fail(ErrFormat, path, nil, "interface tag %q needs a null value, got %q", tag, raw)
			}
			fv.SetZero()
			return nil
		}
		rt, err := d.resolveAs(tag, f.Type)
		if err != nil {
			return d.fail(ErrFormat, path, err, "")
		}
		t = rt
		class = d.reg.Classify(rt)
	}
	switch class {
	case Scalar, Enum, DateTime:
		raw, err := sc.Quoted()
		if err != nil {
			return d.fail(ErrFormat, path, err, "")
		}
		v, err := d.scalar(raw, t, f.Layout, class)
		if err != nil {
			return d.fail(ErrFormat, path, err, "cannot parse %q as %s", raw, tag)
		}
		fv.Set(v)
		return nil
	case Collection:
		if b, ok := sc.Peek(); ok && b == '"' {
			return d.null(sc, fv, t, path)
		}
		ct, err := d.resolveAs(tag, t)
		if err != nil {
			return d.fail(ErrFormat, path, err, "")
		}
		span, err := sc.Span('[', ']')
		if err != nil {
			return d.fail(ErrFormat, path, err, "")
		}
		v, err := d.collection(ct, span, path)
		if err != nil {
			return err
		}
		fv.Set(v)
		return nil
	case Record:
		if b, ok := sc.Peek(); ok && b == '"' {
			return d.null(sc, fv, t, path)
		}
		rt, err := d.resolveAs(tag, t)
		if err != nil {
			return d.fail(ErrFormat, path, err, "")
		}
		span, err := sc.Span('{', '}')
		if err != nil {
			return d.fail(ErrFormat, path, err, "")
		}
		v, err := d.recordValue(rt, span, path)
		if err != nil {
			return err
		}
		fv.Set(v)
		return nil
	}
	return d.fail(ErrUnsupportedType, path, nil, "cannot decode into %s", t)
}

// null consumes a quoted null value for a field of type t.
func (d *decoder) null(sc *token.Scanner, fv reflect.Value, t reflect.Type, path string) error {
	raw, err := sc.Quoted()
	if err != nil {
		return d.fail(ErrFormat, path, err, "")
	}
	if raw != "null" || !nullable(t) {
		return d.fail(ErrFormat, path, nil, "unexpected scalar %q for %s", raw, d.reg.TypeName(t))
	}
	// t differs from the field type for a typed nil in an interface.
	fv.Set(reflect.Zero(t))
	return nil
}

// scalar parses raw into a value of t, honouring the null marker when
// t is nullable.
func (d *decoder) scalar(raw string, t reflect.Type, layout string, class Class) (reflect.Value, error) {
	if raw == "null" && nullable(t) {
		return reflect.Zero(t), nil
	}
	base := t
	if t.Kind() == reflect.Pointer {
		base = t.Elem()
	}
	var (
		v   reflect.Value
		err error
	)
	if class == DateTime {
		v, err = parseDateTime(raw, base, layout)
	} else {
		v, err = d.reg.scalarValue(raw, base)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	if t.Kind() == reflect.Pointer {
		p := reflect.New(base)
		p.Elem().Set(v)
		return p, nil
	}
	return v, nil
}

// recordValue decodes a record of type t, a struct type or a pointer
// to one.
func (d *decoder) recordValue(t reflect.Type, sc *token.Scanner, path string) (reflect.Value, error) {
	st := t
	if t.Kind() == reflect.Pointer {
		st = t.Elem()
	}
	p, err := d.record(st, sc, path)
	if err != nil {
		return reflect.Value{}, err
	}
	if t.Kind() == reflect.Pointer {
		return p, nil
	}
	return p.Elem(), nil
}

func (d *decoder) collection(ct reflect.Type, sc *token.Scanner, path string) (reflect.Value, error) {
	if err := d.push(path); err != nil {
		return reflect.Value{}, err
	}
	defer d.pop()
	var (
		coll  reflect.Value
		et    reflect.Type
		adder wireSetAdder
	)
	switch ct.Kind() {
	case reflect.Struct:
		elem, ok := setElem(ct)
		if !ok {
			return reflect.Value{}, d.fail(ErrUnsupportedType, path, nil, "%s is not a collection", ct)
		}
		p := reflect.New(ct)
		coll, et, adder = p.Elem(), elem, p.Interface().(wireSetAdder)
	case reflect.Slice:
		coll, et = reflect.MakeSlice(ct, 0, 0), ct.Elem()
	case reflect.Array:
		coll, et = reflect.New(ct).Elem(), ct.Elem()
	case reflect.Map:
		coll, et = reflect.MakeMap(ct), ct.Key()
	default:
		return reflect.Value{}, d.fail(ErrUnsupportedType, path, nil, "%s is not a collection", ct)
	}
	if err := sc.Expect('['); err != nil {
		return reflect.Value{}, d.fail(ErrFormat, path, err, "")
	}
	n := 0
	if !sc.Accept(']') {
		for {
			epath := elemPath(path, n)
			start := sc.Offset()
			ev, err := d.element(sc, et, epath)
			if err != nil {
				return reflect.Value{}, err
			}
			switch ct.Kind() {
			case reflect.Slice:
				coll = reflect.Append(coll, ev)
			case reflect.Array:
				if n >= ct.Len() {
					return reflect.Value{}, d.fail(ErrFormat, epath, nil, "too many elements for %s", d.reg.TypeName(ct))
				}
				coll.Index(n).Set(ev)
			case reflect.Map:
				if !ev.Comparable() {
					return reflect.Value{}, d.fail(ErrFormat, epath, nil, "set element of type %s is not comparable", ev.Type())
				}
				coll.SetMapIndex(ev, reflect.ValueOf(struct{}{}))
			case reflect.Struct:
				adder.setAdd(ev)
			}
			n++
			if sc.Offset() <= start {
				return reflect.Value{}, d.fail(ErrFormat, epath, sc.Err(token.ErrNoProgress, ""), "")
			}
			if sc.Accept(',') {
				continue
			}
			if err := sc.Expect(']'); err != nil {
				return reflect.Value{}, d.fail(ErrFormat, epath, err, "")
			}
			break
		}
	}
	if ct.Kind() == reflect.Array && n != ct.Len() {
		return reflect.Value{}, d.fail(ErrFormat, path, nil, "%s needs %d elements, got %d", d.reg.TypeName(ct), ct.Len(), n)
	}
	return coll, d.done(sc, path)
}

// element decodes one "runtimeType":value entry into a value
// assignable to et.
func (d *decoder) element(sc *token.Scanner, et reflect.Type, path string) (reflect.Value, error) {
	name, err := sc.Quoted()
	if err != nil {
		return reflect.Value{}, d.fail(ErrFormat, path, err, "element type")
	}
	if err := sc.Expect(':'); err != nil {
		return reflect.Value{}, d.fail(ErrFormat, path, err, "")
	}
	if name == "null" {
		raw, err := sc.Quoted()
		if err != nil {
			return reflect.Value{}, d.fail(ErrFormat, path, err, "")
		}
		if raw != "null" || !nullable(et) {
			return reflect.Value{}, d.fail(ErrFormat, path, nil, "null element in collection of %s", d.reg.TypeName(et))
		}
		return reflect.Zero(et), nil
	}
	rt, err := d.resolveAs(name, et)
	if err != nil {
		return reflect.Value{}, d.fail(ErrFormat, path, err, "")
	}
	switch class := d.reg.Classify(rt); class {
	case Scalar, Enum, DateTime:
		raw, err := sc.Quoted()
		if err != nil {
			return reflect.Value{}, d.fail(ErrFormat, path, err, "")
		}
		v, err := d.scalar(raw, rt, "", class)
		if err != nil {
			return reflect.Value{}, d.fail(ErrFormat, path, err, "cannot parse %q as %s", raw, name)
		}
		return v, nil
	case Collection:
		span, err := sc.Span('[', ']')
		if err != nil {
			return reflect.Value{}, d.fail(ErrFormat, path, err, "")
		}
		return d.collection(rt, span, path)
	case Record:
		span, err := sc.Span('{', '}')
		if err != nil {
			return reflect.Value{}, d.fail(ErrFormat, path, err, "")
		}
		return d.recordValue(rt, span, path)
	}
	return reflect.Value{}, d.fail(ErrUnsupportedType, path, nil, "cannot decode element of type %s", name)
}

// resolveAs resolves a type tag found where a value of type want is
// expected. The result is want itself unless want is an interface.
func (d *decoder) resolveAs(name string, want reflect.Type) (reflect.Type, error) {
	if name == d.reg.TypeName(want) {
		return want, nil
	}
	rt, err := d.reg.Resolve(name)
	if err != nil {
		return nil, err
	}
	if want.Kind() == reflect.Interface {
		if rt.Kind() == reflect.Interface || !rt.Implements(want) {
			return nil, fmt.Errorf("%s does not implement %s", name, d.reg.TypeName(want))
		}
		return rt, nil
	}
	if rt != want {
		return nil, fmt.Errorf("type tag %q does not match %s", name, d.reg.TypeName(want))
	}
	return rt, nil
}
