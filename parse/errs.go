package parse

import (
	"fmt"

	"github.com/signadot/tagwire/ir"
)

var (
	ErrParse    = ir.ErrParse
	ErrKey      = fmt.Errorf("%w: malformed key", ErrParse)
	ErrTooDeep  = fmt.Errorf("%w: nesting too deep", ErrParse)
	ErrTrailing = fmt.Errorf("%w: trailing material", ErrParse)
)
