package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/override"
	"github.com/signadot/instdiff/schema"
)

func reportTree() *schema.Tree {
	return schema.MustBuild(schema.Struct("",
		schema.Field("hp", "int32"),
		schema.Str("name"),
		schema.List("items", schema.Struct("item", schema.Reference("target"))),
	))
}

// hp 100, name "abcd", items [{target 5}]
var reportBase = []byte{
	100, 0, 0, 0,
	4, 0, 0, 0, 'a', 'b', 'c', 'd',
	1, 0, 0, 0,
	5, 0, 0, 0, 0, 0, 0, 0,
}

func ref(id codec.ObjectID) *codec.ObjectID { return &id }

var reportRecs = []override.Record{
	{Path: "hp", Value: "7"},
	{Path: "name", Value: "ad"},
	{Path: "items.size", Value: "2"},
	{Path: "items.data[0].target", Ref: ref(6)},
	{Path: "items.data[1].target", Ref: ref(42), Owner: ref(3)},
	{Path: "x", Value: "1"},
}

func TestWrite(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if err := Write(buf, reportTree(), reportBase, reportRecs, WithOwner(true)); err != nil {
		t.Fatal(err)
	}
	want := `hp: 100 -> 7
name: "a[-bc-]d"
items.size: 1 -> 2
items.data[0].target: &5 -> &6
items.data[1].target: (none) -> &42 (owner 3)
x: (unresolved) -> 1
`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestWriteNoBaseline(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if err := Write(buf, reportTree(), nil, reportRecs[:3]); err != nil {
		t.Fatal(err)
	}
	want := "hp: 7\nname: \"ad\"\nitems.size: 2\n"
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestStringDiff(t *testing.T) {
	tests := []struct {
		from, to, want string
	}{
		{"abc", "abXc", "ab{+X+}c"},
		{"abcd", "ad", "a[-bc-]d"},
		{"same", "same", "same"},
		{"", "a\nb", `{+a\nb+}`},
	}
	for _, tc := range tests {
		if got := stringDiff(nil, tc.from, tc.to); got != tc.want {
			t.Errorf("%q -> %q: got %q, want %q", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestColors(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = noColor }()

	buf := bytes.NewBuffer(nil)
	if err := Write(buf, reportTree(), reportBase, reportRecs[:2], WithColors(NewColors())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("no escape sequences in %q", out)
	}
	if strings.Contains(out, "[-") {
		t.Errorf("colored output should not use markup: %q", out)
	}
}
