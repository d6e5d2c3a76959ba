package gomap

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package matches exactly one
// of them with errors.Is.
var (
	ErrEligibility     = errors.New("ineligible type")
	ErrUnsupportedType = errors.New("unsupported type")
	ErrCycle           = errors.New("cycle detected")
	ErrFormat          = errors.New("malformed wire text")
	ErrAccess          = errors.New("field not accessible")
)

// EncodeError represents an error during encoding.
type EncodeError struct {
	Kind      error
	FieldPath string // Field path (e.g., "owner.address.street")
	Message   string
	Err       error
}

func (e *EncodeError) Error() string {
	return formatErr("encode", e.Kind, e.FieldPath, e.Message, e.Err)
}

func (e *EncodeError) Unwrap() []error {
	return unwrapKind(e.Kind, e.Err)
}

// DecodeError represents an error during decoding.
type DecodeError struct {
	Kind      error
	FieldPath string
	Message   string
	Err       error
}

func (e *DecodeError) Error() string {
	return formatErr("decode", e.Kind, e.FieldPath, e.Message, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return unwrapKind(e.Kind, e.Err)
}

// RegisterError reports a type that cannot be registered, either
// directly or on first use by an encode or decode call.
type RegisterError struct {
	Type    string
	Kind    error
	Message string
	Err     error
}

func (e *RegisterError) Error() string {
	msg := fmt.Sprintf("type %s %s", e.Type, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if repeatsKind(e.Kind, e.Err) {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *RegisterError) Unwrap() []error {
	return unwrapKind(e.Kind, e.Err)
}

func formatErr(op string, kind error, path, msg string, err error) string {
	if err != nil {
		if msg == "" {
			msg = err.Error()
		} else {
			msg += ": " + err.Error()
		}
	}
	if !repeatsKind(kind, err) {
		msg = fmt.Sprintf("%s: %s", kind, msg)
	}
	if path != "" {
		return fmt.Sprintf("%s error at %s: %s", op, path, msg)
	}
	return fmt.Sprintf("%s error: %s", op, msg)
}

// repeatsKind reports whether the text of err already names kind.
func repeatsKind(kind, err error) bool {
	return err != nil && errors.Is(err, kind) && strings.Contains(err.Error(), kind.Error())
}

func unwrapKind(kind, err error) []error {
	if err == nil {
		return []error{kind}
	}
	return []error{kind, err}
}

// kindOf returns the kind carried by err, defaulting to def.
func kindOf(err error, def error) error {
	var (
		re *RegisterError
		ee *EncodeError
		de *DecodeError
	)
	switch {
	case errors.As(err, &re):
		return re.Kind
	case errors.As(err, &ee):
		return ee.Kind
	case errors.As(err, &de):
		return de.Kind
	}
	for _, k := range []error{ErrEligibility, ErrUnsupportedType, ErrCycle, ErrFormat, ErrAccess} {
		if errors.Is(err, k) {
			return k
		}
	}
	return def
}
