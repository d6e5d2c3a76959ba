package ir

import "errors"

var (
	ErrParse = errors.New("parse error")
	ErrShape = errors.New("unexpected node shape")
)
