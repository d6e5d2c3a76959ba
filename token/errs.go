package token

import (
	"errors"
	"fmt"
)

var (
	ErrDocBalance   = errors.New("imbalanced document")
	ErrUnterminated = errors.New("unterminated")
	ErrExpected     = errors.New("expected")
	ErrEmptyDoc     = errors.New("empty document")
	ErrNoProgress   = errors.New("scan did not advance")
	ErrTrailing     = errors.New("trailing material")
	ErrReservedRune = errors.New("reserved placeholder rune")
)

// ScanErr is an error at a position of the document being scanned.
type ScanErr struct {
	Err error
	Msg string
	Pos *Pos
}

func NewScanErr(err error, pos *Pos, format string, args ...any) error {
	return &ScanErr{Err: err, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func (e *ScanErr) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s %s", e.Err, e.Pos)
	}
	return fmt.Sprintf("%s: %s %s", e.Err, e.Msg, e.Pos)
}

func (e *ScanErr) Unwrap() error {
	return e.Err
}

// ErrImbalancedStructure reports an opening bracket or brace whose
// matching close was not found.
type ErrImbalancedStructure struct {
	Open  byte
	Close byte
	Pos   *Pos
}

func (i *ErrImbalancedStructure) Unwrap() error {
	return ErrDocBalance
}

func (i *ErrImbalancedStructure) Error() string {
	return fmt.Sprintf("%s: unmatched %c (want %c) opened %s",
		ErrDocBalance.Error(), i.Open, i.Close, i.Pos)
}
