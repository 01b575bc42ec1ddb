package layout

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/instdiff/schema"
)

type writer struct{ b []byte }

func (w *writer) u8(v uint8) *writer   { w.b = append(w.b, v); return w }
func (w *writer) u16(v uint16) *writer { w.b = binary.LittleEndian.AppendUint16(w.b, v); return w }
func (w *writer) u32(v uint32) *writer { w.b = binary.LittleEndian.AppendUint32(w.b, v); return w }
func (w *writer) str(s string) *writer { w.u32(uint32(len(s))); w.b = append(w.b, s...); return w }
func (w *writer) pad() *writer {
	for len(w.b)%4 != 0 {
		w.b = append(w.b, 0)
	}
	return w
}

func unitTree() *schema.Tree {
	return schema.MustBuild(schema.Struct("unit",
		schema.Field("hp", "int32"),
		schema.Str("name").Aligned(),
		schema.List("items", schema.Struct("item",
			schema.Field("id", "uint16"),
			schema.Str("tag"),
		)).Aligned(),
		schema.Field("flag", "uint8"),
	))
}

// unitBuf is hp=7 name=ab items=[{1 x} {2 yz}] flag=9.
//
//	0 hp | 4 name | 12 items | 16 item0 | 23 item1 | 31 pad | 32 flag
func unitBuf() Buffer {
	w := &writer{}
	w.u32(7)
	w.str("ab").pad()
	w.u32(2)
	w.u16(1).str("x")
	w.u16(2).str("yz")
	w.pad()
	w.u8(9)
	return Buffer(w.b)
}

func child(t *testing.T, tr *schema.Tree, name string) schema.NodeID {
	t.Helper()
	id, ok := tr.Child(tr.Root(), name)
	if !ok {
		t.Fatalf("no child %q", name)
	}
	return id
}

func TestWalk(t *testing.T) {
	tr := unitTree()
	buf := unitBuf()
	end, err := Walk(tr, tr.Root(), buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if end != 33 || len(buf) != 33 {
		t.Fatalf("end %d len %d, want 33", end, len(buf))
	}
	items := child(t, tr, "items")
	end, err = Walk(tr, items, buf, 12)
	if err != nil {
		t.Fatal(err)
	}
	if end != 32 {
		t.Errorf("items end %d want 32", end)
	}
	off, size, err := Elem(tr, items, buf, 12, 1)
	if err != nil {
		t.Fatal(err)
	}
	if off != 23 || size != 2 {
		t.Errorf("Elem(1) = %d, %d", off, size)
	}
	if _, _, err := Elem(tr, items, buf, 12, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Elem(2) err %v", err)
	}
}

func TestWalkOutOfBounds(t *testing.T) {
	tr := unitTree()
	buf := unitBuf()
	tests := []struct {
		name string
		buf  []byte
	}{
		{"truncated", buf[:30]},
		{"missing padding", buf[:31]},
		{"empty", nil},
		{"huge count", func() []byte {
			b := bytes.Clone(buf)
			binary.LittleEndian.PutUint32(b[12:], 1<<31)
			return b
		}()},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Walk(tr, tr.Root(), test.buf, 0); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("got %v want ErrOutOfBounds", err)
			}
		})
	}
}

func TestZero(t *testing.T) {
	tr := unitTree()
	items := child(t, tr, "items")
	name := child(t, tr, "name")
	if got := Zero(tr, tr.ElemOf(items), 1); len(got) != 6 {
		t.Errorf("zero item is %d bytes, want 6", len(got))
	}
	// 4 byte prefix at 1 ends at 5, padded to 8
	if got := Zero(tr, name, 1); len(got) != 7 {
		t.Errorf("zero aligned string at 1 is %d bytes, want 7", len(got))
	}
	if got := Zero(tr, name, 0); len(got) != 4 {
		t.Errorf("zero aligned string at 0 is %d bytes, want 4", len(got))
	}
	root := Zero(tr, tr.Root(), 0)
	end, err := Walk(tr, tr.Root(), root, 0)
	if err != nil || end != len(root) {
		t.Errorf("zero root does not walk: %d of %d, %v", end, len(root), err)
	}
}

func TestResize(t *testing.T) {
	tr := unitTree()
	items := child(t, tr, "items")
	orig := unitBuf()

	t.Run("shrink keeps survivors", func(t *testing.T) {
		b := orig.Clone()
		if err := Resize(tr, &b, items, 12, 1, FillZero); err != nil {
			t.Fatal(err)
		}
		want := &writer{b: bytes.Clone(orig[:12])}
		want.u32(1)
		want.b = append(want.b, orig[16:23]...)
		want.pad().u8(9)
		if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
	t.Run("grow zero", func(t *testing.T) {
		b := orig.Clone()
		if err := Resize(tr, &b, items, 12, 3, FillZero); err != nil {
			t.Fatal(err)
		}
		want := &writer{b: bytes.Clone(orig[:12])}
		want.u32(3)
		want.b = append(want.b, orig[16:31]...)
		want.u16(0).str("").pad().u8(9)
		if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
	t.Run("grow clone last", func(t *testing.T) {
		b := orig.Clone()
		if err := Resize(tr, &b, items, 12, 3, FillCloneLast); err != nil {
			t.Fatal(err)
		}
		want := &writer{b: bytes.Clone(orig[:12])}
		want.u32(3)
		want.b = append(want.b, orig[16:31]...)
		want.b = append(want.b, orig[23:31]...)
		want.pad().u8(9)
		if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
	t.Run("same size", func(t *testing.T) {
		b := orig.Clone()
		if err := Resize(tr, &b, items, 12, 2, FillZero); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(b, orig) {
			t.Errorf("buffer changed")
		}
	})
	t.Run("not an array", func(t *testing.T) {
		b := orig.Clone()
		if err := Resize(tr, &b, child(t, tr, "hp"), 0, 2, FillZero); !errors.Is(err, ErrKind) {
			t.Errorf("got %v want ErrKind", err)
		}
	})
}

func TestResizeZeroWidth(t *testing.T) {
	tr := schema.MustBuild(schema.Struct("root", schema.List("e", schema.Struct("x"))))
	e := child(t, tr, "e")
	b := Buffer{0xff, 0xff, 0xff, 0xff}
	if _, err := Walk(tr, tr.Root(), b, 0); err != nil {
		t.Fatal(err)
	}
	if err := Resize(tr, &b, e, 0, 0, FillZero); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 0}, []byte(b)); diff != "" {
		t.Errorf("shrink (-want +got):\n%s", diff)
	}
	if err := Resize(tr, &b, e, 0, 1_000_000, FillCloneLast); err != nil {
		t.Fatal(err)
	}
	want := (&writer{}).u32(1_000_000).b
	if diff := cmp.Diff(want, []byte(b)); diff != "" {
		t.Errorf("grow (-want +got):\n%s", diff)
	}
	if err := Delete(tr, &b, e, 0, 999_999); err != nil {
		t.Fatal(err)
	}
	if err := Duplicate(tr, &b, e, 0, 5, 3); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, []byte(b)); diff != "" {
		t.Errorf("delete and duplicate (-want +got):\n%s", diff)
	}
}

func TestResizeZeroWidthAligned(t *testing.T) {
	tr := schema.MustBuild(schema.Struct("root",
		schema.Field("pre", "uint8"),
		schema.List("e", schema.Struct("x").Aligned()),
	))
	e := child(t, tr, "e")
	// the first element pads 5 to 8, the rest are empty
	b := Buffer((&writer{}).u8(7).u32(1000).pad().b)
	if err := Delete(tr, &b, e, 1, 0); err != nil {
		t.Fatal(err)
	}
	want := (&writer{}).u8(7).u32(999).pad().b
	if diff := cmp.Diff(want, []byte(b)); diff != "" {
		t.Errorf("delete (-want +got):\n%s", diff)
	}
	if err := Resize(tr, &b, e, 1, 0, FillZero); err != nil {
		t.Fatal(err)
	}
	want = (&writer{}).u8(7).u32(0).b
	if diff := cmp.Diff(want, []byte(b)); diff != "" {
		t.Errorf("shrink (-want +got):\n%s", diff)
	}
	if err := Resize(tr, &b, e, 1, 1<<20, FillZero); err != nil {
		t.Fatal(err)
	}
	want = (&writer{}).u8(7).u32(1 << 20).pad().b
	if diff := cmp.Diff(want, []byte(b)); diff != "" {
		t.Errorf("grow (-want +got):\n%s", diff)
	}
}

// rawTree has an unaligned byte array followed by an aligned field, so
// resizing the array moves the field's padding.
func rawTree() *schema.Tree {
	return schema.MustBuild(schema.Struct("root",
		schema.List("raw", schema.Field("b", "uint8")),
		schema.Field("tail", "uint16").Aligned(),
	))
}

func TestResizeRelayout(t *testing.T) {
	tr := rawTree()
	raw := child(t, tr, "raw")
	orig := (&writer{}).u32(1).u8(0xaa).u16(0xbeef).pad().b
	if len(orig) != 8 {
		t.Fatalf("setup: %d bytes", len(orig))
	}
	tests := []struct {
		n    int
		want []byte
	}{
		{2, (&writer{}).u32(2).u8(0xaa).u8(0).u16(0xbeef).b},
		{4, (&writer{}).u32(4).u8(0xaa).u8(0).u8(0).u8(0).u16(0xbeef).pad().b},
		{0, (&writer{}).u32(0).u16(0xbeef).pad().b},
	}
	for _, test := range tests {
		b := Buffer(bytes.Clone(orig))
		if err := Resize(tr, &b, raw, 0, test.n, FillZero); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.want, []byte(b)); diff != "" {
			t.Errorf("resize to %d (-want +got):\n%s", test.n, diff)
		}
		if end, err := Walk(tr, tr.Root(), b, 0); err != nil || end != len(b) {
			t.Errorf("resize to %d: walk %d of %d: %v", test.n, end, len(b), err)
		}
	}
}

func TestDuplicateDelete(t *testing.T) {
	tr := unitTree()
	items := child(t, tr, "items")
	orig := unitBuf()

	b := orig.Clone()
	if err := Duplicate(tr, &b, items, 12, 0, 0); err != nil {
		t.Fatal(err)
	}
	want := &writer{b: bytes.Clone(orig[:12])}
	want.u32(3)
	want.b = append(want.b, orig[16:23]...)
	want.b = append(want.b, orig[16:31]...)
	want.pad().u8(9)
	if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
		t.Errorf("duplicate (-want +got):\n%s", diff)
	}

	b = orig.Clone()
	if err := Delete(tr, &b, items, 12, 0); err != nil {
		t.Fatal(err)
	}
	want = &writer{b: bytes.Clone(orig[:12])}
	want.u32(1)
	want.b = append(want.b, orig[23:31]...)
	want.pad().u8(9)
	if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
		t.Errorf("delete (-want +got):\n%s", diff)
	}

	// item1 is 8 bytes, so deleting it splices in place
	b = orig.Clone()
	if err := Delete(tr, &b, items, 12, 1); err != nil {
		t.Fatal(err)
	}
	want = &writer{b: bytes.Clone(orig[:12])}
	want.u32(1)
	want.b = append(want.b, orig[16:23]...)
	want.pad().u8(9)
	if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
		t.Errorf("delete last (-want +got):\n%s", diff)
	}
}

func TestDuplicateDeleteBounds(t *testing.T) {
	tr := unitTree()
	items := child(t, tr, "items")
	orig := unitBuf()
	b := orig.Clone()
	if err := Duplicate(tr, &b, items, 12, 2, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("duplicate src 2: %v", err)
	}
	if err := Duplicate(tr, &b, items, 12, 0, 3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("duplicate dst 3: %v", err)
	}
	if err := Delete(tr, &b, items, 12, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("delete 2: %v", err)
	}
	if err := Delete(tr, &b, items, 12, -1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("delete -1: %v", err)
	}
	if !bytes.Equal(b, orig) {
		t.Errorf("failed edits changed the buffer")
	}
}

func TestReplaceString(t *testing.T) {
	tr := unitTree()
	name := child(t, tr, "name")
	orig := unitBuf()

	b := orig.Clone()
	if err := ReplaceString(tr, &b, name, 4, []byte("abcdef")); err != nil {
		t.Fatal(err)
	}
	want := (&writer{b: bytes.Clone(orig[:4])}).str("abcdef").pad()
	want.b = append(want.b, orig[12:]...)
	if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	// an unaligned string inside an element moves the rest of the buffer
	items := child(t, tr, "items")
	b = orig.Clone()
	tag := tr.Node(tr.ElemOf(items)).Children[1]
	if err := ReplaceString(tr, &b, tag, 18, []byte("xyz")); err != nil {
		t.Fatal(err)
	}
	want = &writer{b: bytes.Clone(orig[:18])}
	want.str("xyz")
	want.b = append(want.b, orig[23:31]...)
	want.pad().u8(9)
	if diff := cmp.Diff(want.b, []byte(b)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if end, err := Walk(tr, tr.Root(), b, 0); err != nil || end != len(b) {
		t.Errorf("walk %d of %d: %v", end, len(b), err)
	}
}

func TestSplice(t *testing.T) {
	b := Buffer("abcdef")
	if err := b.Splice(2, 2, []byte("XYZ")); err != nil {
		t.Fatal(err)
	}
	if string(b) != "abXYZef" {
		t.Errorf("got %q", b)
	}
	if err := b.Splice(5, 3, nil); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("got %v", err)
	}
	if string(b) != "abXYZef" {
		t.Errorf("failed splice changed buffer: %q", b)
	}
}
