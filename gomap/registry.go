package gomap

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/signadot/tagwire/debug"
)

// Registry maps stable type identifiers to Go types, record
// descriptors and enum tables. It is safe for concurrent use; it is
// meant to be populated at startup and read during encode and decode.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*entry
	byType map[reflect.Type]*entry
	sets   map[reflect.Type]reflect.Type // element type to Set type
	log    *slog.Logger
}

type entry struct {
	name   string
	typ    reflect.Type
	record *RecordDescriptor
	enum   *enumTable
}

type enumTable struct {
	byName map[string]reflect.Value
	byVal  map[any]string
}

type lookupFunc func(reflect.Type) *entry

func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]*entry{},
		byType: map[reflect.Type]*entry{},
		sets:   map[reflect.Type]reflect.Type{},
	}
}

var defaultRegistry atomic.Pointer[Registry]

func init() {
	defaultRegistry.Store(NewRegistry())
}

// DefaultRegistry returns the registry used by the package level
// functions.
func DefaultRegistry() *Registry {
	return defaultRegistry.Load()
}

// SetDefaultRegistry replaces the registry used by the package level
// functions.
func SetDefaultRegistry(r *Registry) {
	if r == nil {
		r = NewRegistry()
	}
	defaultRegistry.Store(r)
}

// WithLogger makes r log registrations to l.
func (r *Registry) WithLogger(l *slog.Logger) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = l
	return r
}

func (r *Registry) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	if debug.Registry() {
		return debug.Logger()
	}
	return nil
}

func (r *Registry) lookup(t reflect.Type) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[t]
}

func (r *Registry) lookupLocked(t reflect.Type) *entry {
	return r.byType[t]
}

// regTx records the entries added by one registration so that they can
// be removed again if it fails.
type regTx struct {
	added []*entry
}

func (r *Registry) insertLocked(e *entry, tx *regTx) error {
	if _, ok := builtinTypes[e.name]; ok || e.name == "map" || e.name == "set" {
		return &RegisterError{Type: e.typ.String(), Kind: ErrEligibility,
			Message: fmt.Sprintf("cannot use builtin name %q", e.name)}
	}
	if !validIdent(e.name) {
		return &RegisterError{Type: e.typ.String(), Kind: ErrEligibility,
			Message: fmt.Sprintf("has invalid name %q", e.name)}
	}
	if other := r.byName[e.name]; other != nil && other.typ != e.typ {
		return &RegisterError{Type: e.typ.String(), Kind: ErrEligibility,
			Message: fmt.Sprintf("name %q is already taken by %s", e.name, other.typ)}
	}
	r.byName[e.name] = e
	r.byType[e.typ] = e
	tx.added = append(tx.added, e)
	if l := r.logger(); l != nil {
		l.Debug("register", "name", e.name, "type", e.typ.String())
	}
	return nil
}

func (r *Registry) rollbackLocked(tx *regTx) {
	for _, e := range tx.added {
		delete(r.byName, e.name)
		delete(r.byType, e.typ)
	}
}

type registerConfig struct {
	name    string
	factory func() any
}

// RegisterOption configures Register.
type RegisterOption func(*registerConfig)

// Name overrides the registry identifier of the type.
func Name(n string) RegisterOption {
	return func(c *registerConfig) { c.name = n }
}

// Factory supplies the constructor for empty instances. f must return
// a non-nil *T; it may populate defaults that decoding then overwrites.
func Factory(f func() any) RegisterOption {
	return func(c *registerConfig) { c.factory = f }
}

// Register registers the record type of v (a T, *T or reflect.Type)
// and, transitively, the named types its fields refer to.
func (r *Registry) Register(v any, opts ...RegisterOption) error {
	t, err := typeOf(v)
	if err != nil {
		return err
	}
	cfg := &registerConfig{}
	for _, o := range opts {
		o(cfg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &regTx{}
	if _, err := r.registerRecordLocked(t, cfg, tx); err != nil {
		r.rollbackLocked(tx)
		return err
	}
	return nil
}

// RegisterName registers a named scalar or collection type under name.
func (r *Registry) RegisterName(v any, name string) error {
	t, err := typeOf(v)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := r.byType[t]; e != nil {
		if e.name == name {
			return nil
		}
		return &RegisterError{Type: t.String(), Kind: ErrEligibility,
			Message: fmt.Sprintf("is already registered as %q", e.name)}
	}
	if c := r.classify(t, r.lookupLocked); c == Unsupported || c == Record {
		return &RegisterError{Type: t.String(), Kind: ErrUnsupportedType,
			Message: fmt.Sprintf("cannot be registered by name (%s)", c)}
	}
	tx := &regTx{}
	if err := r.insertLocked(&entry{name: name, typ: t}, tx); err != nil {
		return err
	}
	if err := r.reachLocked(t, tx, map[reflect.Type]bool{t: true}); err != nil {
		r.rollbackLocked(tx)
		return err
	}
	return nil
}

// RegisterEnum registers T as an enumeration with the given case names.
// Records registered earlier that refer to T are updated to encode it
// by case name.
func RegisterEnum[T comparable](r *Registry, name string, cases map[string]T) error {
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.String:
	default:
		return &RegisterError{Type: t.String(), Kind: ErrUnsupportedType,
			Message: "is not a valid enumeration type"}
	}
	if t.Name() == "" || builtinNames[t] != "" {
		return &RegisterError{Type: t.String(), Kind: ErrEligibility,
			Message: "enumerations must be named types"}
	}
	tab := &enumTable{
		byName: make(map[string]reflect.Value, len(cases)),
		byVal:  make(map[any]string, len(cases)),
	}
	for n, v := range cases {
		if !validIdent(n) {
			return &RegisterError{Type: t.String(), Kind: ErrEligibility,
				Message: fmt.Sprintf("has invalid case name %q", n)}
		}
		if other, dup := tab.byVal[v]; dup {
			return &RegisterError{Type: t.String(), Kind: ErrEligibility,
				Message: fmt.Sprintf("cases %q and %q share a value", other, n)}
		}
		tab.byName[n] = reflect.ValueOf(v)
		tab.byVal[v] = n
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ne := &entry{name: name, typ: t, enum: tab}
	e := r.byType[t]
	if e == nil {
		return r.insertLocked(ne, &regTx{})
	}
	if e.enum != nil || e.record != nil {
		return &RegisterError{Type: t.String(), Kind: ErrEligibility,
			Message: fmt.Sprintf("is already registered as %q", e.name)}
	}
	// t was reached as a plain named type by an earlier registration.
	delete(r.byName, e.name)
	delete(r.byType, t)
	if err := r.insertLocked(ne, &regTx{}); err != nil {
		r.byName[e.name], r.byType[t] = e, e
		return err
	}
	r.reclassifyLocked()
	return nil
}

// reclassifyLocked recomputes the field classes and type tags of the
// registered records. Existing entries are never modified; readers hold
// descriptors without the lock.
func (r *Registry) reclassifyLocked() {
	for name, e := range r.byName {
		if e.record == nil {
			continue
		}
		desc := *e.record
		desc.Fields = make([]*FieldDescriptor, len(e.record.Fields))
		desc.byWire = make(map[string]*FieldDescriptor, len(e.record.byWire))
		for i, f := range e.record.Fields {
			nf := *f
			if !nf.Omit {
				nf.Class = r.classify(nf.Type, r.lookupLocked)
				nf.TypeTag = r.typeName(nf.Type, r.lookupLocked)
				desc.byWire[nf.WireName] = &nf
			}
			desc.Fields[i] = &nf
		}
		ne := *e
		ne.record = &desc
		r.byName[name] = &ne
		r.byType[e.typ] = &ne
	}
}

// Descriptor returns the record descriptor of t, registering t if
// needed.
func (r *Registry) Descriptor(t reflect.Type) (*RecordDescriptor, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if e := r.lookup(t); e != nil && e.record != nil {
		return e.record, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &regTx{}
	e, err := r.registerRecordLocked(t, &registerConfig{}, tx)
	if err != nil {
		r.rollbackLocked(tx)
		return nil, err
	}
	return e.record, nil
}

func (r *Registry) enumOf(t reflect.Type) *enumTable {
	if e := r.lookup(t); e != nil {
		return e.enum
	}
	return nil
}

// reachLocked registers the named types reachable from t.
func (r *Registry) reachLocked(t reflect.Type, tx *regTx, seen map[reflect.Type]bool) error {
	for {
		if _, ok := builtinNames[t]; ok {
			return nil
		}
		if t.Kind() == reflect.Struct && hasMarker(t) {
			_, err := r.registerRecordLocked(t, &registerConfig{}, tx)
			return err
		}
		if et, ok := setElem(t); ok {
			r.sets[et] = t
			t = et
		} else {
			if t.Name() != "" && r.byType[t] == nil {
				if err := r.insertLocked(&entry{name: t.Name(), typ: t}, tx); err != nil {
					return err
				}
			}
			switch t.Kind() {
			case reflect.Pointer, reflect.Slice, reflect.Array:
				t = t.Elem()
			case reflect.Map:
				t = t.Key()
			default:
				return nil
			}
		}
		if seen[t] {
			return nil
		}
		seen[t] = true
	}
}

// wireName returns the type name of the runtime type t, first
// registering the named types it refers to. It fails when the name would
// not resolve back to t.
func (r *Registry) wireName(t reflect.Type) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &regTx{}
	if err := r.reachLocked(t, tx, map[reflect.Type]bool{t: true}); err != nil {
		r.rollbackLocked(tx)
		return "", err
	}
	name := r.typeName(t, r.lookupLocked)
	rt, rest, err := r.parseTypeLocked(name)
	if err == nil && (rest != "" || rt != t) {
		err = fmt.Errorf("it resolves to %s", rt)
	}
	if err != nil {
		return "", &RegisterError{Type: t.String(), Kind: ErrUnsupportedType,
			Message: fmt.Sprintf("has no usable type name (%q)", name), Err: err}
	}
	return name, nil
}

func typeOf(v any) (reflect.Type, error) {
	switch x := v.(type) {
	case nil:
		return nil, &RegisterError{Type: "<nil>", Kind: ErrEligibility, Message: "is nil"}
	case reflect.Type:
		return x, nil
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		t = t.Elem()
	}
	return t, nil
}
