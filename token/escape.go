package token

import (
	"fmt"
	"strings"
)

// Placeholders substituted for the structural characters inside text
// scalars: unassigned code points of the Unicode Specials block.
const (
	QuotePlaceholder       = '\uFFF0'
	LeftCurlyPlaceholder   = '\uFFF1'
	RightCurlyPlaceholder  = '\uFFF2'
	LeftSquarePlaceholder  = '\uFFF3'
	RightSquarePlaceholder = '\uFFF4'
)

const firstReserved, lastReserved = QuotePlaceholder, RightSquarePlaceholder

var (
	escaper = strings.NewReplacer(
		`"`, string(QuotePlaceholder),
		"{", string(LeftCurlyPlaceholder),
		"}", string(RightCurlyPlaceholder),
		"[", string(LeftSquarePlaceholder),
		"]", string(RightSquarePlaceholder),
	)
	unescaper = strings.NewReplacer(
		string(QuotePlaceholder), `"`,
		string(LeftCurlyPlaceholder), "{",
		string(RightCurlyPlaceholder), "}",
		string(LeftSquarePlaceholder), "[",
		string(RightSquarePlaceholder), "]",
	)
)

// Escape replaces the grammar's structural characters in s with their
// placeholders. Text that already contains a placeholder cannot be
// escaped reversibly and is rejected.
func Escape(s string) (string, error) {
	for i, r := range s {
		if r >= firstReserved && r <= lastReserved {
			return "", fmt.Errorf("%w %U at byte %d", ErrReservedRune, r, i)
		}
	}
	if !strings.ContainsAny(s, `"{}[]`) {
		return s, nil
	}
	return escaper.Replace(s), nil
}

// Unescape is the inverse of Escape.
func Unescape(s string) string {
	if !strings.ContainsFunc(s, isPlaceholder) {
		return s
	}
	return unescaper.Replace(s)
}

func isPlaceholder(r rune) bool {
	return r >= firstReserved && r <= lastReserved
}
