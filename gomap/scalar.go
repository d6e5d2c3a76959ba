package gomap

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/signadot/tagwire/token"
)

// scalarText returns the wire text of a non-null scalar or enum value.
func (r *Registry) scalarText(v reflect.Value) (string, error) {
	t := v.Type()
	if tab := r.enumOf(t); tab != nil {
		name, ok := tab.byVal[v.Interface()]
		if !ok {
			return "", fmt.Errorf("%w: %v is not a case of enum %s", ErrUnsupportedType, v.Interface(), r.TypeName(t))
		}
		return name, nil
	}
	if t == charType {
		return token.Escape(string(rune(v.Int())))
	}
	if isTextScalar(t) {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}
		return token.Escape(string(b))
	}
	switch t.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, t.Bits()), nil
	case reflect.String:
		return token.Escape(v.String())
	}
	return "", fmt.Errorf("%w: %s is not a scalar", ErrUnsupportedType, t)
}

// scalarValue parses wire text into a value of the scalar or enum type
// t.
func (r *Registry) scalarValue(s string, t reflect.Type) (reflect.Value, error) {
	if tab := r.enumOf(t); tab != nil {
		v, ok := tab.byName[s]
		if !ok {
			return reflect.Value{}, fmt.Errorf("cannot parse enumerated value %q for %s", s, r.TypeName(t))
		}
		return v, nil
	}
	if t == charType {
		s = token.Unescape(s)
		c, n := utf8.DecodeRuneInString(s)
		if n == 0 {
			return reflect.Value{}, fmt.Errorf("empty char")
		}
		return reflect.ValueOf(Char(c)), nil
	}
	if isTextScalar(t) {
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(token.Unescape(s))); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	case reflect.String:
		v.SetString(token.Unescape(s))
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s is not a scalar", ErrUnsupportedType, t)
	}
	return v, nil
}
