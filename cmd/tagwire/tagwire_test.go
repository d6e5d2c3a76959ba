package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/tagwire/encode"
	"github.com/signadot/tagwire/ir"
	"github.com/signadot/tagwire/parse"
	"github.com/signadot/tagwire/stream"

	"github.com/goccy/go-yaml"
)

const teamDoc = `{"owner#Person":{"name#string":"ann","boss#*Person":"null"},"members#[]string#[]string":["string":"a","string":"b"]}`

func mustParse(t *testing.T, s string) *ir.Node {
	t.Helper()
	n, err := parse.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestViewDoc(t *testing.T) {
	doc := mustParse(t, teamDoc)
	buf := bytes.NewBuffer(nil)
	if err := viewDoc(buf, doc, true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != teamDoc+"\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	cfg := &ViewConfig{MainConfig: &MainConfig{}, HideExtra: true}
	if err := viewDoc(buf, doc, false, cfg.viewOpts(buf)...); err != nil {
		t.Fatal(err)
	}
	want := `{
  "owner#Person": {
    "name#string": "ann",
    "boss#*Person": "null"
  },
  "members#[]string": [
    "string": "a",
    "string": "b"
  ]
}
`
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestUseColor(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if (&MainConfig{}).useColor(buf) {
		t.Errorf("buffers are not terminals")
	}
	if !(&MainConfig{Color: true}).useColor(buf) {
		t.Errorf("-color should force color")
	}
	if n := len((&MainConfig{Color: true}).encOpts(buf)); n != 1 {
		t.Errorf("expected a color option, got %d options", n)
	}
}

func TestDumpDoc(t *testing.T) {
	doc := mustParse(t, teamDoc)
	want := map[string]any{
		"owner":   map[string]any{"name": "ann", "boss": nil},
		"members": []any{"a", "b"},
	}

	buf := bytes.NewBuffer(nil)
	if err := dumpDoc(buf, doc, false, false); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := dumpDoc(buf, doc, true, false); err != nil {
		t.Fatal(err)
	}
	got = nil
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(buf.String(), "owner:") {
		t.Errorf("yaml should keep field order, got\n%s", buf.String())
	}
}

func TestDumpDocTags(t *testing.T) {
	doc := mustParse(t, `{"any#[]any":["int":"1"]}`)
	buf := bytes.NewBuffer(nil)
	if err := dumpDoc(buf, doc, false, true); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"any#[]any": []any{map[string]any{"int": "1"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryDoc(t *testing.T) {
	doc := mustParse(t, teamDoc)
	tests := []struct {
		expr string
		tags bool
		want string
	}{
		{expr: `doc.owner.name`, want: "ann\n"},
		{expr: `len(doc.members)`, want: "2\n"},
		{expr: `doc.owner.boss`, want: "null\n"},
		{expr: `doc["owner#Person"]["name#string"]`, tags: true, want: "ann\n"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prog, err := compileQuery(tt.expr)
			if err != nil {
				t.Fatal(err)
			}
			buf := bytes.NewBuffer(nil)
			if err := queryDoc(buf, prog, doc, tt.tags); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q want %q", buf.String(), tt.want)
			}
		})
	}
	if _, err := compileQuery(`doc.(`); err == nil {
		t.Errorf("expected a compile error")
	}
}

func TestDiffInputs(t *testing.T) {
	a := mustParse(t, `{"a#int":"1","b#int":"2"}`)
	b := mustParse(t, `{"a#int":"1","c#int":"3"}`)
	buf := bytes.NewBuffer(nil)
	differs, err := diffInputs(false, buf, a, b, false)
	if err != nil {
		t.Fatal(err)
	}
	if !differs {
		t.Fatal("expected a difference")
	}
	if want := "- b: int \"2\"\n+ c: int \"3\"\n"; buf.String() != want {
		t.Errorf("got %q want %q", buf.String(), want)
	}

	buf.Reset()
	if _, err := diffInputs(true, buf, a, b, false); err != nil {
		t.Fatal(err)
	}
	if want := "+ b: int \"2\"\n- c: int \"3\"\n"; buf.String() != want {
		t.Errorf("got %q want %q", buf.String(), want)
	}

	buf.Reset()
	differs, err = diffInputs(false, buf, a, a.Clone(), false)
	if err != nil || differs || buf.Len() != 0 {
		t.Errorf("identical documents: differs=%v err=%v out=%q", differs, err, buf.String())
	}
}

func TestReadDocCompressed(t *testing.T) {
	for _, c := range []stream.Compression{stream.None, stream.Gzip, stream.Zstd} {
		t.Run(c.String(), func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			if err := stream.WriteText(buf, teamDoc, stream.Compress(c)); err != nil {
				t.Fatal(err)
			}
			doc, err := readDoc(buf)
			if err != nil {
				t.Fatal(err)
			}
			if got := encode.MustString(doc); got != teamDoc {
				t.Errorf("got %s", got)
			}
		})
	}
	if _, err := readDoc(strings.NewReader(`{"a":"1"}`)); err == nil {
		t.Errorf("expected a parse error")
	}
}
