package gomap

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hengadev/errsx"
)

// RecordDescriptor is the field metadata of a record type, built once
// at registration.
type RecordDescriptor struct {
	Name    string
	Type    reflect.Type
	Nulls   NullHandling
	Unknown UnknownPolicy
	// Fields are in declaration order and include omitted fields.
	Fields []*FieldDescriptor

	byWire  map[string]*FieldDescriptor
	factory func() any
}

// FieldDescriptor describes one exported field of a record.
type FieldDescriptor struct {
	Name     string
	WireName string
	Index    int
	Type     reflect.Type
	// TypeTag is the wire type name of Type.
	TypeTag string
	Class   Class
	Layout  string
	Omit    bool
}

// Field returns the non-omitted field with the given wire name.
func (d *RecordDescriptor) Field(wireName string) (*FieldDescriptor, bool) {
	f, ok := d.byWire[wireName]
	return f, ok
}

// New returns a pointer to a fresh instance, built by the registered
// factory if any.
func (d *RecordDescriptor) New() (reflect.Value, error) {
	if d.factory == nil {
		return reflect.New(d.Type), nil
	}
	v := reflect.ValueOf(d.factory())
	if v.Type() != reflect.PointerTo(d.Type) || v.IsNil() {
		return reflect.Value{}, &RegisterError{Type: d.Name, Kind: ErrEligibility,
			Message: fmt.Sprintf("factory returned %s, want non-nil *%s", v.Type(), d.Type.Name())}
	}
	return v, nil
}

const reservedWireRunes = "\"#{}[],:"

func (r *Registry) registerRecordLocked(t reflect.Type, cfg *registerConfig, tx *regTx) (*entry, error) {
	if e := r.byType[t]; e != nil {
		if e.record == nil {
			return nil, &RegisterError{Type: t.String(), Kind: ErrEligibility,
				Message: fmt.Sprintf("is already registered as non record %q", e.name)}
		}
		return e, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &RegisterError{Type: t.String(), Kind: ErrEligibility, Message: "is not a struct"}
	}
	marker, ok := markerField(t)
	if !ok {
		return nil, &RegisterError{Type: t.String(), Kind: ErrEligibility,
			Message: "is not declared exportable (embed gomap.Exported)"}
	}
	rt, err := parseRecordTag(marker.Tag.Get(TagKey))
	if err != nil {
		return nil, &RegisterError{Type: t.String(), Kind: ErrEligibility, Message: "has a bad record tag", Err: err}
	}
	if t.Name() == "" {
		return nil, &RegisterError{Type: t.String(), Kind: ErrEligibility, Message: "is not a named type"}
	}
	if first, _ := utf8.DecodeRuneInString(t.Name()); !unicode.IsUpper(first) && cfg.factory == nil {
		return nil, &RegisterError{Type: t.String(), Kind: ErrEligibility,
			Message: "has no public constructor (export the type or register a Factory)"}
	}
	name := t.Name()
	switch {
	case cfg.name != "":
		name = cfg.name
	case rt.name != "":
		name = rt.name
	}
	desc := &RecordDescriptor{
		Name:    name,
		Type:    t,
		Nulls:   rt.nulls,
		Unknown: rt.unknown,
		byWire:  map[string]*FieldDescriptor{},
		factory: cfg.factory,
	}
	e := &entry{name: name, typ: t, record: desc}
	// inserted before the fields are walked so self references resolve.
	if err := r.insertLocked(e, tx); err != nil {
		return nil, err
	}
	if err := r.buildFieldsLocked(desc, tx); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Registry) buildFieldsLocked(desc *RecordDescriptor, tx *regTx) error {
	t := desc.Type
	var errs errsx.Map
	kind := ErrEligibility
	fail := func(f reflect.StructField, k error, format string, args ...any) {
		errs.Set(fmt.Sprintf("field %s", f.Name), fmt.Errorf(format, args...))
		if kind == ErrEligibility {
			kind = k
		}
	}
	declared := map[string]bool{}
	for i := range t.NumField() {
		declared[t.Field(i).Name] = true
	}
	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Anonymous {
			if sf.Type != exportedType {
				fail(sf, ErrEligibility, "embeds %s: only flat records are exportable", sf.Type)
			}
			continue
		}
		tag, hasTag := sf.Tag.Lookup(TagKey)
		if !sf.IsExported() {
			if hasTag {
				fail(sf, ErrAccess, "unexported field carries a %s tag", TagKey)
			}
			continue
		}
		ft, err := parseFieldTag(tag)
		if err != nil {
			fail(sf, ErrEligibility, "bad tag: %w", err)
			continue
		}
		fd := &FieldDescriptor{
			Name:     sf.Name,
			WireName: sf.Name,
			Index:    i,
			Type:     sf.Type,
			Layout:   ft.layout,
			Omit:     ft.omit,
		}
		desc.Fields = append(desc.Fields, fd)
		if fd.Omit {
			continue
		}
		if ft.name != "" {
			if ft.name != sf.Name && declared[ft.name] {
				fail(sf, ErrEligibility, "wire name %q collides with declared field %s", ft.name, ft.name)
				continue
			}
			fd.WireName = ft.name
		}
		if strings.ContainsAny(fd.WireName, reservedWireRunes) {
			fail(sf, ErrEligibility, "wire name %q contains one of %s", fd.WireName, reservedWireRunes)
			continue
		}
		if other, dup := desc.byWire[fd.WireName]; dup {
			fail(sf, ErrEligibility, "wire name %q is also used by field %s", fd.WireName, other.Name)
			continue
		}
		desc.byWire[fd.WireName] = fd
		if err := r.reachLocked(sf.Type, tx, map[reflect.Type]bool{}); err != nil {
			fail(sf, kindOf(err, ErrEligibility), "%w", err)
			continue
		}
		fd.Class = r.classify(sf.Type, r.lookupLocked)
		fd.TypeTag = r.typeName(sf.Type, r.lookupLocked)
		if fd.Class == Unsupported {
			fail(sf, ErrUnsupportedType, "type %s is not supported", sf.Type)
			continue
		}
		if fd.Layout != "" && fd.Class != DateTime {
			fail(sf, ErrEligibility, "layout given for non date/time type %s", sf.Type)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return &RegisterError{Type: t.String(), Kind: kind, Message: "has invalid fields", Err: errs.AsError()}
}
