package gomap

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/signadot/tagwire/token"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "comment", in: &Comment{Text: "hello", Resolved: true}},
		{name: "kitchen", in: fullKitchen()},
		{name: "empty kitchen", in: &Kitchen{}},
		{name: "null included", in: &Maybe{}},
		{name: "nested record", in: &Person{Name: "ann", Boss: &Person{Name: "bob"}}},
		{name: "diamond", in: func() any {
			p := &Person{Name: "shared"}
			return &Team{Lead: p, Deputy: p, Members: []*Person{p, nil, p}}
		}()},
		{name: "nested collections", in: &Nested{
			Matrix: [][]int{{1, 2}, {}, nil, {3}},
			Keys:   []map[[2]int]struct{}{{{1, 2}: {}, {3, 4}: {}}, {}},
			Mixed: []any{
				[]any{"deep", []any{[]string{"deeper"}}},
				map[int]struct{}{7: {}},
				map[string]struct{}{"set": {}},
				[2]bool{true, false},
				&Person{Name: "in a list"},
			},
		}},
		{name: "text safety", in: &Comment{Text: `"quoted" {braced} [bracketed] ,:#null`}},
		{name: "renamed", in: &Holder{
			R:  &Renamed{When: civil.Date{Year: 2024, Month: time.January, Day: 2}, Label: "x"},
			Rs: []Renamed{{When: civil.Date{Year: 2000, Month: time.March, Day: 1}, Label: "]["}},
		}},
		{name: "renamed records in interfaces", in: &Box{
			V:  &Inner{A: 1},
			Vs: []any{Inner{A: 2}, &Inner{A: 3}, nil},
		}},
		{name: "typed nil record in interface", in: &Box{V: (*Person)(nil)}},
		{name: "typed nil list in interface", in: &Box{V: []string(nil)}},
		{name: "typed nil set in interface", in: &Box{V: map[int]struct{}(nil)}},
		{name: "set of lists of sets", in: &Shapes{
			Groups: NewSet([]Set[int]{NewSet(1, 2), NewSet(3)}, []Set[int]{}, nil, []Set[int]{NewSet[int]()}),
			Words:  NewSet("b", "a", "b"),
			Any:    NewSet(1.5, 2.5),
		}},
		{name: "empty sets", in: &Shapes{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t)
			text, err := m.ToText(tt.in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := m.Decode(reflect.TypeOf(tt.in), text)
			if err != nil {
				t.Fatalf("decode %s: %v", text, err)
			}
			if diff := cmp.Diff(tt.in, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			again, err := m.ToText(got)
			if err != nil {
				t.Fatalf("re-encode: %v", err)
			}
			if again != text {
				t.Errorf("re-encoding differs:\n%s\n%s", text, again)
			}
		})
	}
}

func TestDiamondIsNotACycle(t *testing.T) {
	m := newTestMapper(t)
	p := &Person{Name: "shared"}
	text, err := m.ToText(&Team{Lead: p, Deputy: p})
	if err != nil {
		t.Fatal(err)
	}
	var team Team
	if err := m.FromText(text, &team); err != nil {
		t.Fatal(err)
	}
	if team.Lead == team.Deputy {
		t.Errorf("decoded shared reference should be two distinct values")
	}
	if team.Lead.Name != "shared" || team.Deputy.Name != "shared" {
		t.Errorf("unexpected team %+v", team)
	}
}

func TestFromTextNulls(t *testing.T) {
	m := newTestMapper(t)
	var got MaybeNot
	if err := m.FromText(`{"F#*int":"null"}`, &got); err != nil {
		t.Fatal(err)
	}
	if got.F != nil {
		t.Errorf("expected nil, got %v", *got.F)
	}
	var inc Maybe
	if err := m.FromText(`{}`, &inc); err != nil {
		t.Fatal(err)
	}
	if inc.F != nil {
		t.Errorf("expected nil, got %v", *inc.F)
	}
	// the null marker is literal text for non nullable strings.
	var c Comment
	if err := m.FromText(`{"comment#string":"null"}`, &c); err != nil {
		t.Fatal(err)
	}
	if c.Text != "null" {
		t.Errorf("expected literal null, got %q", c.Text)
	}
}

func TestFromTextFactoryDefaults(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Defaults{}, Factory(func() any {
		return &Defaults{Name: "unnamed", Count: 7}
	}))
	if err != nil {
		t.Fatal(err)
	}
	var got Defaults
	if err := NewMapper(reg).FromText(`{"Count#int":"3"}`, &got); err != nil {
		t.Fatal(err)
	}
	want := Defaults{Name: "unnamed", Count: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFromTextBadFactory(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Defaults{}, Factory(func() any { return &Person{} })); err != nil {
		t.Fatal(err)
	}
	var got Defaults
	err := NewMapper(reg).FromText(`{}`, &got)
	if !errors.Is(err, ErrEligibility) {
		t.Fatalf("expected ErrEligibility, got %v", err)
	}
}

func TestFromTextLayouts(t *testing.T) {
	m := newTestMapper(t)
	var k Kitchen
	err := m.FromText(`{"Clock#civil.Time":"11:00:30 PM","Day#*civil.Date":"25/12/2020"}`, &k)
	if err != nil {
		t.Fatal(err)
	}
	if want := (civil.Time{Hour: 23, Second: 30}); k.Clock != want {
		t.Errorf("clock: got %v, want %v", k.Clock, want)
	}
	if k.Day == nil || *k.Day != (civil.Date{Year: 2020, Month: time.December, Day: 25}) {
		t.Errorf("day: got %v", k.Day)
	}
}

func TestFromTextPolymorphic(t *testing.T) {
	m := newTestMapper(t)
	tests := []struct {
		in   string
		want any
	}{
		{in: `{"Any#int":"5"}`, want: 5},
		{in: `{"Any#Level":"Low"}`, want: Low},
		{in: `{"Any#*Person":{"Name#string":"x"}}`, want: &Person{Name: "x"}},
		{in: `{"Any#Person":{"Name#string":"y"}}`, want: Person{Name: "y"}},
		{in: `{"Any#[]string#any":["string":"a"]}`, want: []string{"a"}},
		{in: `{"Any#any":"null"}`, want: nil},
		{in: `{"Any#*Person":"null"}`, want: (*Person)(nil)},
		{in: `{"Any#[]string#any":"null"}`, want: []string(nil)},
		{in: `{"Any#*int":"null"}`, want: (*int)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got Tagged
			if err := m.FromText(tt.in, &got); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got.Any); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromTextErrors(t *testing.T) {
	m := newTestMapper(t)
	tests := []struct {
		name string
		in   string
		into any
		kind error
		msg  string
	}{
		{name: "empty", in: "", into: &Comment{}, kind: ErrFormat},
		{name: "not an object", in: `["int":"1"]`, into: &Comment{}, kind: ErrFormat},
		{name: "unterminated", in: `{"comment#string":"hi"`, into: &Comment{}, kind: ErrFormat},
		{name: "trailing", in: `{}{}`, into: &Comment{}, kind: ErrFormat},
		{name: "unknown field", in: `{"nope#int":"1"}`, into: &Comment{}, kind: ErrFormat, msg: "unknown field"},
		{name: "omitted field", in: `{"Skip#string":"x"}`, into: &Kitchen{}, kind: ErrFormat, msg: "unknown field"},
		{name: "missing tag", in: `{"comment":"hi"}`, into: &Comment{}, kind: ErrFormat},
		{name: "missing colon", in: `{"comment#string""hi"}`, into: &Comment{}, kind: ErrFormat},
		{name: "bad bool", in: `{"resolved#bool":"maybe"}`, into: &Comment{}, kind: ErrFormat},
		{name: "bad int", in: `{"I#int":"x"}`, into: &Kitchen{}, kind: ErrFormat},
		{name: "overflow", in: `{"I8#int8":"300"}`, into: &Kitchen{}, kind: ErrFormat},
		{name: "bad enum", in: `{"L#Level":"Huge"}`, into: &Kitchen{}, kind: ErrFormat, msg: "cannot parse enumerated value"},
		{name: "bad date", in: `{"D#civil.Date":"yesterday"}`, into: &Kitchen{}, kind: ErrFormat},
		{name: "bad text scalar", in: `{"H#Hex":"xyz"}`, into: &Kitchen{}, kind: ErrFormat},
		{name: "unknown type", in: `{"Any#Mystery":"1"}`, into: &Tagged{}, kind: ErrFormat, msg: "unregistered"},
		{name: "record tag mismatch", in: `{"Boss#*Comment":{}}`, into: &Person{}, kind: ErrFormat},
		{name: "collection tag mismatch", in: `{"Tags#[]int#[]string":[]}`, into: &Tagged{}, kind: ErrFormat},
		{name: "short array", in: `{"Grid#[2][2]int":["[2]int":["int":"1","int":"2"]]}`, into: &Kitchen{}, kind: ErrFormat, msg: "needs 2 elements"},
		{name: "long array", in: `{"Grid#[2][2]int":["[2]int":[],"[2]int":[],"[2]int":[]]}`, into: &Kitchen{}, kind: ErrFormat},
		{name: "null into value", in: `{"Grid#null#null":"null"}`, into: &Kitchen{}, kind: ErrFormat},
		{name: "null element into strings", in: `{"Tags#[]string":["null":"null"]}`, into: &Tagged{}, kind: ErrFormat},
		{name: "imbalanced collection", in: `{"Tags#[]string":["string":"a"}`, into: &Tagged{}, kind: ErrFormat},
		{name: "ineligible target", in: `{}`, into: &struct{ A int }{}, kind: ErrEligibility},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.FromText(tt.in, tt.into)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("expected *DecodeError, got %T", err)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q in %v", tt.msg, err)
			}
		})
	}
}

func TestFromTextErrorPosition(t *testing.T) {
	m := newTestMapper(t)
	var c Comment
	err := m.FromText(`{"comment#string":"hi";"resolved#bool":"true"}`, &c)
	var se *token.ScanErr
	if !errors.As(err, &se) {
		t.Fatalf("expected positioned scan error, got %v", err)
	}
	if se.Pos.I != 22 {
		t.Errorf("expected offset 22, got %d", se.Pos.I)
	}
}

func TestFromTextLeavesTargetOnError(t *testing.T) {
	m := newTestMapper(t)
	c := Comment{Text: "keep"}
	if err := m.FromText(`{"comment#string":"new","resolved#bool":"?"}`, &c); err == nil {
		t.Fatal("expected error")
	}
	if c.Text != "keep" {
		t.Errorf("target modified on error: %+v", c)
	}
}

func TestFromTextMaxDepth(t *testing.T) {
	m := newTestMapper(t)
	text := `{"Name#string":"a","Boss#*Person":{"Name#string":"b","Boss#*Person":{"Name#string":"c"}}}`
	var p Person
	if err := m.FromText(text, &p, MaxDepth(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := m.FromText(text, &p, MaxDepth(2))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestFromTextTarget(t *testing.T) {
	m := newTestMapper(t)
	if err := m.FromText(`{}`, Comment{}); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for non pointer, got %v", err)
	}
	if err := m.FromText(`{}`, (*Comment)(nil)); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for nil pointer, got %v", err)
	}
	var p *Person
	if err := m.FromText(`{"Name#string":"x"}`, &p); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for pointer to pointer, got %v", err)
	}
	if p != nil {
		t.Errorf("target written on error: %+v", p)
	}
	n := 3
	if err := m.FromText(`{}`, &n); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for pointer to int, got %v", err)
	}
	for _, typ := range []reflect.Type{reflect.TypeFor[**Person](), reflect.TypeFor[int](), reflect.TypeFor[[]Person]()} {
		if _, err := m.Decode(typ, `{}`); !errors.Is(err, ErrEligibility) {
			t.Errorf("Decode(%s): expected ErrEligibility, got %v", typ, err)
		}
	}
}

func TestDecodeErrorNamesKindOnce(t *testing.T) {
	m := newTestMapper(t)
	var got Tagged
	err := m.FromText(`{"Any#Mystery":"1"}`, &got)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if n := strings.Count(err.Error(), ErrFormat.Error()); n != 1 {
		t.Errorf("kind named %d times in %q", n, err)
	}
}

func TestDecodeSetDeduplicates(t *testing.T) {
	m := newTestMapper(t)
	var got Shapes
	text := `{"Groups#set[[]set[int]]":["[]set[int]":["set[int]":["int":"2","int":"1"]],` +
		`"[]set[int]":["set[int]":["int":"1","int":"2","int":"1"]]],` +
		`"Words#set[string]":["string":"x","string":"x"]}`
	if err := m.FromText(text, &got); err != nil {
		t.Fatal(err)
	}
	if got.Groups.Len() != 1 {
		t.Errorf("expected 1 group, got %v", got.Groups)
	}
	if !got.Groups.Has([]Set[int]{NewSet(1, 2)}) {
		t.Errorf("missing group in %v", got.Groups)
	}
	if got.Words.Len() != 1 || !got.Words.Has("x") {
		t.Errorf("unexpected words %v", got.Words)
	}
}

func TestDecodeSetInInterface(t *testing.T) {
	text := `{"Any#set[bool]#any":["bool":"true"]}`
	reg := NewRegistry()
	var got Tagged
	if err := NewMapper(reg).FromText(text, &got); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat before the set is known, got %v", err)
	}
	if err := RegisterSet[bool](reg); err != nil {
		t.Fatal(err)
	}
	if err := NewMapper(reg).FromText(text, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(any(NewSet(true)), got.Any); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeByType(t *testing.T) {
	m := newTestMapper(t)
	for _, typ := range []reflect.Type{reflect.TypeFor[Person](), reflect.TypeFor[*Person]()} {
		got, err := m.Decode(typ, `{"Name#string":"z"}`)
		if err != nil {
			t.Fatal(err)
		}
		p, ok := got.(*Person)
		if !ok {
			t.Fatalf("expected *Person, got %T", got)
		}
		if p.Name != "z" {
			t.Errorf("unexpected %+v", p)
		}
	}
}
