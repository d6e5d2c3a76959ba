package gomap

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Char is a single character scalar. Its type name is "char".
type Char rune

var (
	anyType      = reflect.TypeFor[any]()
	charType     = reflect.TypeFor[Char]()
	emptyType    = reflect.TypeFor[struct{}]()
	exportedType = reflect.TypeFor[Exported]()
	timeType     = reflect.TypeFor[time.Time]()
	dateType     = reflect.TypeFor[civil.Date]()
	clockType    = reflect.TypeFor[civil.Time]()
	dateTimeType = reflect.TypeFor[civil.DateTime]()
)

// maxArrayLen bounds array lengths accepted from wire text.
const maxArrayLen = 1 << 20

var builtinNames = map[reflect.Type]string{
	reflect.TypeFor[bool]():    "bool",
	reflect.TypeFor[int]():     "int",
	reflect.TypeFor[int8]():    "int8",
	reflect.TypeFor[int16]():   "int16",
	reflect.TypeFor[int32]():   "int32",
	reflect.TypeFor[int64]():   "int64",
	reflect.TypeFor[uint]():    "uint",
	reflect.TypeFor[uint8]():   "uint8",
	reflect.TypeFor[uint16]():  "uint16",
	reflect.TypeFor[uint32]():  "uint32",
	reflect.TypeFor[uint64]():  "uint64",
	reflect.TypeFor[float32](): "float32",
	reflect.TypeFor[float64](): "float64",
	reflect.TypeFor[string]():  "string",
	charType:                   "char",
	anyType:                    "any",
	timeType:                   "time.Time",
	dateType:                   "civil.Date",
	clockType:                  "civil.Time",
	dateTimeType:               "civil.DateTime",
}

var builtinTypes = func() map[string]reflect.Type {
	res := make(map[string]reflect.Type, len(builtinNames))
	for t, n := range builtinNames {
		res[n] = t
	}
	return res
}()

func isSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem() == emptyType
}

func validIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c == '.' && i > 0:
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// TypeName returns the wire type name of t.
func (r *Registry) TypeName(t reflect.Type) string {
	return r.typeName(t, r.lookup)
}

func (r *Registry) typeName(t reflect.Type, lookup lookupFunc) string {
	if n, ok := builtinNames[t]; ok {
		return n
	}
	if e := lookup(t); e != nil {
		return e.name
	}
	if et, ok := setElem(t); ok {
		return "set[" + r.typeName(et, lookup) + "]"
	}
	if t.Name() != "" {
		// unregistered named type; Resolve will not find it.
		return t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + r.typeName(t.Elem(), lookup)
	case reflect.Slice:
		return "[]" + r.typeName(t.Elem(), lookup)
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + r.typeName(t.Elem(), lookup)
	case reflect.Map:
		if isSetType(t) {
			return "map[" + r.typeName(t.Key(), lookup) + "]struct {}"
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "any"
		}
	}
	return t.String()
}

// Resolve parses a wire type name back into a type. Identifiers must
// be builtins or registered.
func (r *Registry) Resolve(name string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, rest, err := r.parseTypeLocked(name)
	if err != nil {
		return nil, fmt.Errorf("%w: type name %q: %w", ErrFormat, name, err)
	}
	if rest != "" {
		return nil, fmt.Errorf("%w: type name %q: trailing %q", ErrFormat, name, rest)
	}
	return t, nil
}

func (r *Registry) parseTypeLocked(s string) (reflect.Type, string, error) {
	switch {
	case strings.HasPrefix(s, "*"):
		elem, rest, err := r.parseTypeLocked(s[1:])
		if err != nil {
			return nil, "", err
		}
		return reflect.PointerTo(elem), rest, nil
	case strings.HasPrefix(s, "[]"):
		elem, rest, err := r.parseTypeLocked(s[2:])
		if err != nil {
			return nil, "", err
		}
		return reflect.SliceOf(elem), rest, nil
	case strings.HasPrefix(s, "["):
		end := strings.IndexByte(s, ']')
		if end == -1 {
			return nil, "", fmt.Errorf("unterminated array length")
		}
		n, err := strconv.Atoi(s[1:end])
		if err != nil || n < 0 || n > maxArrayLen {
			return nil, "", fmt.Errorf("bad array length %q", s[1:end])
		}
		elem, rest, err := r.parseTypeLocked(s[end+1:])
		if err != nil {
			return nil, "", err
		}
		return reflect.ArrayOf(n, elem), rest, nil
	case strings.HasPrefix(s, "set["):
		elem, rest, err := r.parseTypeLocked(s[len("set["):])
		if err != nil {
			return nil, "", err
		}
		if !strings.HasPrefix(rest, "]") {
			return nil, "", fmt.Errorf("unterminated set type")
		}
		st := r.sets[elem]
		if st == nil {
			return nil, "", fmt.Errorf("no set of %s has been registered", r.typeName(elem, r.lookupLocked))
		}
		return st, rest[1:], nil
	case strings.HasPrefix(s, "map["):
		key, rest, err := r.parseTypeLocked(s[len("map["):])
		if err != nil {
			return nil, "", err
		}
		const tail = "]struct {}"
		if !strings.HasPrefix(rest, tail) {
			return nil, "", fmt.Errorf("only sets map[K]struct {} are supported")
		}
		if !key.Comparable() {
			return nil, "", fmt.Errorf("set element type %s is not comparable", key)
		}
		return reflect.MapOf(key, emptyType), rest[len(tail):], nil
	}
	i := 0
	for i < len(s) && !strings.ContainsRune("[]*", rune(s[i])) {
		i++
	}
	id := s[:i]
	if t, ok := builtinTypes[id]; ok {
		return t, s[i:], nil
	}
	if e := r.byName[id]; e != nil {
		return e.typ, s[i:], nil
	}
	if id == "" {
		return nil, "", fmt.Errorf("missing type name")
	}
	return nil, "", fmt.Errorf("unregistered type %q", id)
}
