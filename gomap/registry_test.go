package gomap

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func TestTypeNameResolve(t *testing.T) {
	m := newTestMapper(t)
	reg := m.Registry()
	if err := reg.Register(Holder{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(Shapes{}); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		typ  reflect.Type
		name string
	}{
		{reflect.TypeFor[int](), "int"},
		{reflect.TypeFor[uint8](), "uint8"},
		{reflect.TypeFor[Char](), "char"},
		{reflect.TypeFor[any](), "any"},
		{reflect.TypeFor[*string](), "*string"},
		{reflect.TypeFor[time.Time](), "time.Time"},
		{reflect.TypeFor[*civil.Date](), "*civil.Date"},
		{reflect.TypeFor[civil.DateTime](), "civil.DateTime"},
		{reflect.TypeFor[[]int](), "[]int"},
		{reflect.TypeFor[[3][]bool](), "[3][]bool"},
		{reflect.TypeFor[map[string]struct{}](), "map[string]struct {}"},
		{reflect.TypeFor[map[[2]int]struct{}](), "map[[2]int]struct {}"},
		{reflect.TypeFor[[]map[int]struct{}](), "[]map[int]struct {}"},
		{reflect.TypeFor[Person](), "Person"},
		{reflect.TypeFor[*Person](), "*Person"},
		{reflect.TypeFor[[]*Person](), "[]*Person"},
		{reflect.TypeFor[Renamed](), "Ren"},
		{reflect.TypeFor[[]Renamed](), "[]Ren"},
		{reflect.TypeFor[Level](), "Level"},
		{reflect.TypeFor[[]any](), "[]any"},
		{reflect.TypeFor[Set[string]](), "set[string]"},
		{reflect.TypeFor[Set[[]Set[int]]](), "set[[]set[int]]"},
		{reflect.TypeFor[[]Set[int]](), "[]set[int]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.TypeName(tt.typ); got != tt.name {
				t.Errorf("TypeName(%s) = %q, want %q", tt.typ, got, tt.name)
			}
			got, err := reg.Resolve(tt.name)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.name, err)
			}
			if got != tt.typ {
				t.Errorf("Resolve(%q) = %s, want %s", tt.name, got, tt.typ)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{
		"",
		"Mystery",
		"*Mystery",
		"[]",
		"[x]int",
		"[-1]int",
		"[99999999999]int",
		"map[int]string",
		"map[[]int]struct {}",
		"int]",
		"[2]int extra",
		"set[int]",
		"set[int",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(name)
			if !errors.Is(err, ErrFormat) {
				t.Errorf("Resolve(%q): expected ErrFormat, got %v", name, err)
			}
		})
	}
}

func TestRegisterTransitive(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&Holder{}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Holder", "Ren"} {
		if _, err := reg.Resolve(name); err != nil {
			t.Errorf("expected %s to be registered: %v", name, err)
		}
	}
	d, err := reg.Descriptor(reflect.TypeFor[Renamed]())
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Ren" {
		t.Errorf("expected name Ren, got %s", d.Name)
	}
	f, ok := d.Field("when")
	if !ok {
		t.Fatal("expected field when")
	}
	if f.Name != "When" || f.Class != DateTime || f.TypeTag != "civil.Date" {
		t.Errorf("unexpected field descriptor %+v", f)
	}
	if _, ok := d.Field("When"); ok {
		t.Errorf("declared name should not be a wire name once overridden")
	}
}

func TestRegisterRollsBack(t *testing.T) {
	type Bad struct {
		Exported
		P *Person
		C chan int
	}
	reg := NewRegistry()
	if err := reg.Register(Bad{}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	for _, name := range []string{"Bad", "Person"} {
		if _, err := reg.Resolve(name); err == nil {
			t.Errorf("%s should not stay registered after a failure", name)
		}
	}
}

func TestRegisterNameCollision(t *testing.T) {
	type Other struct {
		Exported `wire:"name=Person"`
		A        int
	}
	reg := NewRegistry()
	if err := reg.Register(Person{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(Other{}); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility, got %v", err)
	}
	if err := reg.Register(Other{}, Name("int")); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for builtin name, got %v", err)
	}
	if err := reg.Register(Other{}, Name("Other")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegisterName(t *testing.T) {
	type Celsius float64
	type Path []string
	reg := NewRegistry()
	if err := reg.RegisterName(Celsius(0), "temp.Celsius"); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterName(Path(nil), "Path"); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterName(Celsius(0), "temp.Celsius"); err != nil {
		t.Errorf("re-registering the same name should succeed: %v", err)
	}
	if err := reg.RegisterName(Celsius(0), "Other"); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility, got %v", err)
	}
	if err := reg.RegisterName(make(chan int), "Chan"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if got := reg.TypeName(reflect.TypeFor[[]Celsius]()); got != "[]temp.Celsius" {
		t.Errorf("unexpected name %q", got)
	}
	typ, err := reg.Resolve("*Path")
	if err != nil {
		t.Fatal(err)
	}
	if typ != reflect.TypeFor[*Path]() {
		t.Errorf("unexpected type %s", typ)
	}
}

func TestRegisterEnum(t *testing.T) {
	type Color string
	reg := NewRegistry()
	err := RegisterEnum(reg, "Color", map[string]Color{"Red": "r", "Green": "g"})
	if err != nil {
		t.Fatal(err)
	}
	if c := reg.Classify(reflect.TypeFor[Color]()); c != Enum {
		t.Errorf("expected enum, got %s", c)
	}
	if c := reg.Classify(reflect.TypeFor[*Color]()); c != Enum {
		t.Errorf("expected nullable enum, got %s", c)
	}
	type Dup int
	if err := RegisterEnum(reg, "Dup", map[string]Dup{"A": 1, "B": 1}); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for duplicate values, got %v", err)
	}
	if err := RegisterEnum(reg, "Bad", map[string]float64{"A": 1}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType for float enum, got %v", err)
	}
	if err := RegisterEnum(reg, "Color2", map[string]Color{"Red": "r"}); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for second registration, got %v", err)
	}
}

func TestRegisterEnumAfterRecord(t *testing.T) {
	type Mood int
	type Diary struct {
		Exported
		M  Mood
		Ms []Mood
	}
	reg := NewRegistry()
	if err := reg.Register(Diary{}); err != nil {
		t.Fatal(err)
	}
	if c := reg.Classify(reflect.TypeFor[Mood]()); c != Scalar {
		t.Fatalf("expected scalar before enum registration, got %s", c)
	}
	if err := RegisterEnum(reg, "Feeling", map[string]Mood{"Calm": 0, "Glad": 1}); err != nil {
		t.Fatal(err)
	}
	m := NewMapper(reg)
	got, err := m.ToText(&Diary{M: 1, Ms: []Mood{0}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"M#Feeling":"Glad","Ms#[]Feeling#[]Feeling":["Feeling":"Calm"]}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	var back Diary
	if err := m.FromText(got, &back); err != nil {
		t.Fatal(err)
	}
	if back.M != 1 || len(back.Ms) != 1 || back.Ms[0] != 0 {
		t.Errorf("unexpected %+v", back)
	}
	if _, err := reg.Resolve("Mood"); err == nil {
		t.Errorf("expected the plain name to be replaced")
	}
	if err := RegisterEnum(reg, "Feeling2", map[string]Mood{"Calm": 0}); !errors.Is(err, ErrEligibility) {
		t.Errorf("expected ErrEligibility for second registration, got %v", err)
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	m := newTestMapper(t)
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = m.ToText(fullKitchen())
			} else {
				_, err = m.ToText(&Holder{R: &Renamed{Label: "x"}})
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	old := DefaultRegistry()
	defer SetDefaultRegistry(old)

	reg := NewRegistry()
	SetDefaultRegistry(reg)
	text, err := ToText(&Comment{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Resolve("Comment"); err != nil {
		t.Errorf("expected Comment in the default registry: %v", err)
	}
	var c Comment
	if err := FromText(text, &c); err != nil {
		t.Fatal(err)
	}
	if c.Text != "x" {
		t.Errorf("unexpected %+v", c)
	}
	got, err := Decode(reflect.TypeFor[Comment](), text)
	if err != nil {
		t.Fatal(err)
	}
	if got.(*Comment).Text != "x" {
		t.Errorf("unexpected %+v", got)
	}
}
