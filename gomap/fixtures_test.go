package gomap

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

type Comment struct {
	Exported `wire:"nulls=include"`
	Text     string `wire:"field=comment"`
	Resolved bool   `wire:"field=resolved"`
}

type Maybe struct {
	Exported `wire:"nulls=include"`
	F        *int
}

type MaybeNot struct {
	Exported
	F *int
}

type Person struct {
	Exported
	Name string
	Boss *Person
}

type Team struct {
	Exported
	Lead    *Person
	Deputy  *Person
	Members []*Person
}

type Level int

const (
	Low Level = iota
	Mid
	High
)

// Hex is a text scalar.
type Hex uint32

func (h Hex) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(h), 16)), nil
}

func (h *Hex) UnmarshalText(b []byte) error {
	u, err := strconv.ParseUint(string(b), 16, 32)
	if err != nil {
		return fmt.Errorf("bad hex %q: %w", b, err)
	}
	*h = Hex(u)
	return nil
}

type Kitchen struct {
	Exported
	I     int
	I8    int8
	U16   uint16
	F32   float32
	F64   float64
	B     bool
	S     string
	C     Char
	PI    *int
	PS    *string
	L     Level
	H     Hex
	D     civil.Date
	T     civil.Time
	DT    civil.DateTime
	When  time.Time
	Clock civil.Time  `wire:"layout='03:04:05 PM'"`
	Day   *civil.Date `wire:"layout='02/01/2006'"`
	Tags  []string
	Grid  [2][2]int
	Set   map[string]struct{}
	Hexes []Hex
	Any   any
	Mixed []any
	Skip  string `wire:"omit"`
}

type Tagged struct {
	Exported
	Tags []string
	Set  map[int]struct{}
	Any  any
}

type Nested struct {
	Exported
	Matrix [][]int
	Keys   []map[[2]int]struct{}
	Mixed  []any
}

type Defaults struct {
	Exported
	Name  string
	Count int
}

type Renamed struct {
	Exported `wire:"name=Ren"`
	When     civil.Date `wire:"field=when"`
	Label    string     `wire:"field=label"`
}

type Partial struct {
	Exported
	A int
	b int
}

func ptr[T any](v T) *T { return &v }

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	reg := NewRegistry()
	if err := RegisterEnum(reg, "Level", map[string]Level{"Low": Low, "Mid": Mid, "High": High}); err != nil {
		t.Fatalf("register enum: %v", err)
	}
	if err := reg.Register(Person{}); err != nil {
		t.Fatalf("register Person: %v", err)
	}
	return NewMapper(reg)
}

func fullKitchen() *Kitchen {
	return &Kitchen{
		I:     -42,
		I8:    -8,
		U16:   65535,
		F32:   1.5,
		F64:   3.14159,
		B:     true,
		S:     `say "hi" {x} [y]`,
		C:     'é',
		PI:    ptr(7),
		L:     Mid,
		H:     Hex(0xbeef),
		D:     civil.Date{Year: 2024, Month: time.February, Day: 29},
		T:     civil.Time{Hour: 8, Minute: 30},
		DT:    civil.DateTime{Date: civil.Date{Year: 1999, Month: time.December, Day: 31}, Time: civil.Time{Hour: 23, Minute: 59, Second: 59}},
		When:  time.Date(2024, time.February, 29, 13, 45, 0, 123, time.UTC),
		Clock: civil.Time{Hour: 15, Minute: 4, Second: 5},
		Day:   &civil.Date{Year: 2023, Month: time.July, Day: 4},
		Tags:  []string{"a", "b,c", ""},
		Grid:  [2][2]int{{1, 2}, {3, 4}},
		Set:   map[string]struct{}{"x": {}, "y": {}},
		Hexes: []Hex{1, 255},
		Any:   High,
		Mixed: []any{1, "two", nil, []int{3}, &Person{Name: "p"}},
	}
}

type Holder struct {
	Exported
	R  *Renamed
	Rs []Renamed
}

type Inner struct {
	Exported `wire:"name=In"`
	A        int
}

type Box struct {
	Exported
	V  any
	Vs []any
}

type Shapes struct {
	Exported
	Groups Set[[]Set[int]]
	Words  Set[string]
	Any    any
}
