package override

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/instdiff/codec"
)

func ref(id codec.ObjectID) *codec.ObjectID { return &id }

func paths(recs []Record) []string {
	res := make([]string, len(recs))
	for i, r := range recs {
		res[i] = r.Path
	}
	return res
}

func TestSort(t *testing.T) {
	recs := []Record{
		{Path: "a.data[3].x", Value: "1"},
		{Path: "a.data[3].b.size", Value: "2"},
		{Path: "hp", Value: "3"},
		{Path: "a.size", Value: "4"},
		{Path: "a.data[3].y", Value: "5"},
	}
	Sort(recs)
	want := []string{
		"a.size",
		"a.data[3].b.size",
		"hp",
		"a.data[3].x",
		"a.data[3].y",
	}
	if d := cmp.Diff(want, paths(recs)); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestDuplicates(t *testing.T) {
	a := Record{Path: "r", Ref: ref(3), Owner: ref(1)}
	b := Record{Path: "r", Ref: ref(3), Owner: ref(2)}
	c := Record{Path: "r", Ref: ref(4)}
	d := Record{Path: "r", Value: "3"}
	if !a.Duplicates(b) {
		t.Errorf("owner should not matter")
	}
	if a.Duplicates(c) || a.Duplicates(d) {
		t.Errorf("different references should not be duplicates")
	}
	got := Dedup([]Record{a, c, b, d, a})
	if d := cmp.Diff([]Record{a, c, d}, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestLatest(t *testing.T) {
	recs := []Record{
		{Path: "x", Value: "1"},
		{Path: "y", Value: "2"},
		{Path: "x", Value: "3"},
	}
	want := []Record{
		{Path: "y", Value: "2"},
		{Path: "x", Value: "3"},
	}
	if d := cmp.Diff(want, Latest(recs)); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestSet(t *testing.T) {
	r := New("r", codec.RefValue(5))
	if r.Ref == nil || *r.Ref != 5 || r.Value != "" {
		t.Fatalf("got %+v", r)
	}
	r.Set(codec.Value{Text: "x"})
	if r.Ref != nil || r.Value != "x" {
		t.Errorf("got %+v", r)
	}
	if r.String() != "r=x" {
		t.Errorf("got %s", r)
	}
}

func TestFilter(t *testing.T) {
	recs := []Record{
		{Path: "items.size", Value: "2"},
		{Path: "items.data[0].id", Value: "1"},
		{Path: "items.data[0].target", Ref: ref(9), Owner: ref(7)},
		{Path: "items.data[10].id", Value: "1"},
		{Path: "hp", Value: "100"},
	}
	tests := []struct {
		src  string
		want []string
	}{
		{`size`, []string{"items.size"}},
		{`under("items.data[0]")`, []string{"items.data[0].id", "items.data[0].target"}},
		{`ref != 0 && owner == 7`, []string{"items.data[0].target"}},
		{`value == "1" && !size`, []string{"items.data[0].id", "items.data[10].id"}},
		{`path startsWith "h"`, []string{"hp"}},
	}
	for _, tc := range tests {
		f, err := Compile(tc.src)
		if err != nil {
			t.Errorf("%s: %v", tc.src, err)
			continue
		}
		got, err := f.Select(recs)
		if err != nil {
			t.Errorf("%s: %v", tc.src, err)
			continue
		}
		if d := cmp.Diff(tc.want, paths(got)); d != "" {
			t.Errorf("%s (-want +got):\n%s", tc.src, d)
		}
	}
	if _, err := Compile(`path +`); err == nil {
		t.Errorf("expected a compile error")
	}
	if _, err := Compile(`path`); err == nil {
		t.Errorf("expected an error for a non boolean filter")
	}
}

func TestYAML(t *testing.T) {
	recs := []Record{
		{Path: "items.size", Value: "2"},
		{Path: "items.data[1].target", Ref: ref(42), Owner: ref(1)},
		{Path: "name", Value: "true"},
	}
	buf := bytes.NewBuffer(nil)
	if err := WriteYAML(buf, recs); err != nil {
		t.Fatal(err)
	}
	got, err := ReadYAML(buf)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(recs, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}

	buf.Reset()
	if err := WriteYAML(buf, nil); err != nil {
		t.Fatal(err)
	}
	got, err = ReadYAML(buf)
	if err != nil || len(got) != 0 {
		t.Errorf("empty round trip: %v %v", got, err)
	}

	if _, err := ReadYAML(strings.NewReader("- {}\n")); err == nil {
		t.Errorf("expected an error for an empty record")
	}
}
