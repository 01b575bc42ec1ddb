package jsonview

import (
	"bytes"
	"errors"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

func viewTree() *schema.Tree {
	return schema.MustBuild(schema.Struct("",
		schema.Field("hp", "int16"),
		schema.Field("speed", "float64"),
		schema.Field("ok", "bool"),
		schema.Field("grade", "char"),
		schema.Str("name").Aligned(),
		schema.List("tags", schema.Str("tag")).Aligned(),
		schema.Reference("owner"),
		schema.Field("blob", "opaque").Sized(2),
	))
}

const viewDoc = `{
  "hp": -3,
  "speed": 0.5,
  "ok": true,
  "grade": "A",
  "name": "zed",
  "tags": ["a", "bc"],
  "owner": 9,
  "blob": "beef"
}`

var viewBuf = []byte{
	0xfd, 0xff,
	0, 0, 0, 0, 0, 0, 0xe0, 0x3f,
	1,
	'A',
	3, 0, 0, 0, 'z', 'e', 'd', 0,
	2, 0, 0, 0,
	1, 0, 0, 0, 'a',
	2, 0, 0, 0, 'b', 'c', 0,
	9, 0, 0, 0, 0, 0, 0, 0,
	0xbe, 0xef,
}

func TestPack(t *testing.T) {
	tr := viewTree()
	buf, err := Pack(tr, []byte(viewDoc))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, viewBuf) {
		t.Errorf("got\n%v\nwant\n%v", []byte(buf), viewBuf)
	}

	buf, err = Pack(tr, []byte(`{"hp": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	want := layout.Zero(tr, tr.Root(), 0)
	want[0] = 1
	if !bytes.Equal(buf, want) {
		t.Errorf("missing fields: got %v, want %v", []byte(buf), want)
	}
}

func TestMarshal(t *testing.T) {
	tr := viewTree()
	d, err := Marshal(tr, viewBuf)
	if err != nil {
		t.Fatal(err)
	}
	if !jsonpatch.Equal(d, []byte(viewDoc)) {
		t.Errorf("got %s", d)
	}
	v, err := Render(tr, viewBuf)
	if err != nil {
		t.Fatal(err)
	}
	obj, ok := v.(Object)
	if !ok || len(obj) != 8 || obj[0].Name != "hp" || obj[7].Name != "blob" {
		t.Fatalf("got %#v", v)
	}
	if tags, _ := obj.Get("tags"); len(tags.([]any)) != 2 {
		t.Errorf("tags %v", tags)
	}
}

func TestPackRoundTrip(t *testing.T) {
	tr := viewTree()
	docs := []string{
		viewDoc,
		`{"speed": "NaN(0x7ff8000000000001)", "grade": "\\x00", "tags": []}`,
		`{"speed": "-Inf", "ok": false, "owner": 18446744073709551615}`,
		`{"speed": -0, "name": "aé"}`,
		`{"speed": 5e-324, "hp": -32768}`,
	}
	for _, doc := range docs {
		buf, err := Pack(tr, []byte(doc))
		if err != nil {
			t.Errorf("%s: %v", doc, err)
			continue
		}
		d, err := Marshal(tr, buf)
		if err != nil {
			t.Errorf("%s: %v", doc, err)
			continue
		}
		again, err := Pack(tr, d)
		if err != nil {
			t.Errorf("%s: %v", d, err)
			continue
		}
		if !bytes.Equal(buf, again) {
			t.Errorf("%s: got %v, want %v", d, []byte(again), []byte(buf))
		}
	}
}

func TestPackErrors(t *testing.T) {
	tr := viewTree()
	docs := []string{
		`{"nope": 1}`,
		`{"hp": 40000}`,
		`{"hp": 1.5}`,
		`{"hp": "x"}`,
		`{"name": 3}`,
		`{"tags": "a"}`,
		`{"tags": [1]}`,
		`{"blob": "zz"}`,
		`{"blob": "beefbe"}`,
		`[]`,
	}
	for _, doc := range docs {
		if _, err := Pack(tr, []byte(doc)); !errors.Is(err, codec.ErrBadValue) {
			t.Errorf("%s: got %v", doc, err)
		}
	}
	if _, err := Pack(tr, []byte(`{`)); err == nil {
		t.Errorf("expected a syntax error")
	}
}

func TestMergePatch(t *testing.T) {
	tr := viewTree()
	target, err := Pack(tr, []byte(`{"hp": 4, "speed": 0.5, "name": "zed", "tags": ["q"], "owner": 9}`))
	if err != nil {
		t.Fatal(err)
	}
	patch, err := MergePatch(tr, viewBuf, target)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"hp": 4, "ok": false, "grade": "\\x00", "tags": ["q"], "blob": "0000"}`
	if !jsonpatch.Equal(patch, []byte(want)) {
		t.Errorf("got %s", patch)
	}
	got, err := ApplyMergePatch(tr, viewBuf, patch)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, target) {
		t.Errorf("got %v, want %v", []byte(got), []byte(target))
	}
	eq, err := Equal(tr, got, target)
	if err != nil || !eq {
		t.Errorf("Equal: %v %v", eq, err)
	}
	if eq, _ := Equal(tr, viewBuf, target); eq {
		t.Errorf("different buffers compare equal")
	}
}

func TestRenderErrors(t *testing.T) {
	tr := viewTree()
	if _, err := Render(tr, viewBuf[:20]); !errors.Is(err, layout.ErrOutOfBounds) {
		t.Errorf("got %v", err)
	}
}
