package gomap

import (
	"fmt"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
	"github.com/signadot/tagwire/token"
)

// formatDateTime renders a date/time value with layout, or in its
// canonical form when layout is empty. Canonical forms are
// 2006-01-02 for dates, 15:04:05.999999999 for times of day, their
// T-joined combination for civil date times and RFC 3339 with
// nanoseconds for time.Time.
func formatDateTime(v reflect.Value, layout string) (string, error) {
	var s string
	switch x := v.Interface().(type) {
	case time.Time:
		if layout == "" {
			layout = time.RFC3339Nano
		}
		s = x.Format(layout)
	case civil.Date:
		if layout == "" {
			s = x.String()
		} else {
			s = x.In(time.UTC).Format(layout)
		}
	case civil.Time:
		if layout == "" {
			s = x.String()
		} else {
			s = time.Date(0, time.January, 1, x.Hour, x.Minute, x.Second, x.Nanosecond, time.UTC).Format(layout)
		}
	case civil.DateTime:
		if layout == "" {
			s = x.String()
		} else {
			s = x.In(time.UTC).Format(layout)
		}
	default:
		return "", fmt.Errorf("%w: %s is not a date/time type", ErrUnsupportedType, v.Type())
	}
	return token.Escape(s)
}

func parseDateTime(s string, t reflect.Type, layout string) (reflect.Value, error) {
	s = token.Unescape(s)
	if layout == "" {
		// zero civil dates print out of range fields.
		switch {
		case t == dateType && s == (civil.Date{}).String():
			return reflect.ValueOf(civil.Date{}), nil
		case t == dateTimeType && s == (civil.DateTime{}).String():
			return reflect.ValueOf(civil.DateTime{}), nil
		}
		switch t {
		case timeType:
			x, err := time.Parse(time.RFC3339Nano, s)
			return reflect.ValueOf(x), err
		case dateType:
			x, err := civil.ParseDate(s)
			return reflect.ValueOf(x), err
		case clockType:
			x, err := civil.ParseTime(s)
			return reflect.ValueOf(x), err
		case dateTimeType:
			x, err := civil.ParseDateTime(s)
			return reflect.ValueOf(x), err
		}
		return reflect.Value{}, fmt.Errorf("%w: %s is not a date/time type", ErrUnsupportedType, t)
	}
	tt, err := time.Parse(layout, s)
	if err != nil {
		return reflect.Value{}, err
	}
	switch t {
	case timeType:
		return reflect.ValueOf(tt), nil
	case dateType:
		return reflect.ValueOf(civil.DateOf(tt)), nil
	case clockType:
		return reflect.ValueOf(civil.TimeOf(tt)), nil
	case dateTimeType:
		return reflect.ValueOf(civil.DateTimeOf(tt)), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s is not a date/time type", ErrUnsupportedType, t)
}
