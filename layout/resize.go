package layout

import (
	"fmt"
	"math"
	"slices"

	"github.com/signadot/instdiff/schema"
)

// Fill chooses how Resize initializes elements it appends.
type Fill int

const (
	FillZero Fill = iota
	// FillCloneLast copies the current last element, or zero fills when
	// the array is empty.
	FillCloneLast
)

func (f Fill) String() string {
	switch f {
	case FillZero:
		return "zero"
	case FillCloneLast:
		return "clone-last"
	default:
		return fmt.Sprintf("fill(%d)", int(f))
	}
}

// arrayExtent is a measured array instance. Elements of zero minimum
// width are only walked up to the first one: every later element starts
// where it ends and is empty.
type arrayExtent struct {
	off    int   // size prefix
	n      int   // size
	starts []int // walked element starts, plus one entry for the end of the last one
	end    int   // end including the array's own padding
}

func measure(t *schema.Tree, arr schema.NodeID, buf []byte, off int) (*arrayExtent, error) {
	n := t.Node(arr)
	if n.Kind != schema.Array {
		return nil, fmt.Errorf("%w: %s is a %s, not an array", ErrKind, t.Path(arr), n.Kind)
	}
	cnt, err := ReadCount(buf, off)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path(arr), err)
	}
	cur := off + schema.CountWidth
	walked, err := CheckCount(t, arr, buf, cur, cnt)
	if err != nil {
		return nil, err
	}
	x := &arrayExtent{off: off, n: cnt, starts: make([]int, 0, walked+1)}
	elem := t.ElemOf(arr)
	for range walked {
		x.starts = append(x.starts, cur)
		if cur, err = Walk(t, elem, buf, cur); err != nil {
			return nil, err
		}
	}
	x.starts = append(x.starts, cur)
	x.end = cur
	if n.Align {
		x.end = Align(cur)
		if x.end > len(buf) {
			return nil, fmt.Errorf("%s: %w: padding ends at %d in a buffer of %d", t.Path(arr), ErrOutOfBounds, x.end, len(buf))
		}
	}
	return x, nil
}

func (x *arrayExtent) count() int { return x.n }

// start returns the offset of element i, or the end of the elements when
// i is the size.
func (x *arrayExtent) start(i int) int {
	return x.starts[min(i, len(x.starts)-1)]
}

// tail returns the starts of the elements from i on that need re-encoding
// when they move.
func (x *arrayExtent) tail(i int) []int {
	if len(x.starts)-1 < x.n {
		if i >= x.n {
			return nil
		}
		return []int{x.start(i)}
	}
	return x.starts[i:x.n]
}

// Resize sets the size of the array instance arr at off to n. Surviving
// elements keep their bytes; new elements are filled according to fill.
func Resize(t *schema.Tree, b *Buffer, arr schema.NodeID, off, n int, fill Fill) error {
	if n < 0 || n > math.MaxUint32 {
		return fmt.Errorf("%s: %w: size %d", t.Path(arr), ErrOutOfBounds, n)
	}
	s := *b
	x, err := measure(t, arr, s, off)
	if err != nil {
		return err
	}
	cnt := x.count()
	if n == cnt {
		return nil
	}
	elem := t.ElemOf(arr)
	from := x.start(min(n, cnt))
	last := n
	if t.MinWidth(elem) == 0 {
		// past the first new element, the rest are empty
		last = min(n, cnt+1)
	}
	var ins []byte
	for i := cnt; i < last; i++ {
		at := from + len(ins)
		if fill == FillCloneLast && cnt > 0 {
			el, _, err := Copy(t, elem, s, x.start(cnt-1), at)
			if err != nil {
				return err
			}
			ins = append(ins, el...)
			continue
		}
		ins = append(ins, Zero(t, elem, at)...)
	}
	ins = padFor(t, arr, from+len(ins), ins)
	return replace(t, b, arr, x.off, from, x.end, ins, n)
}

// Duplicate inserts a copy of element src at index dst, shifting the
// elements at dst and after it up by one. dst may equal the current size.
func Duplicate(t *schema.Tree, b *Buffer, arr schema.NodeID, off, src, dst int) error {
	s := *b
	x, err := measure(t, arr, s, off)
	if err != nil {
		return err
	}
	cnt := x.count()
	if src < 0 || src >= cnt || dst < 0 || dst > cnt {
		return fmt.Errorf("%s: %w: duplicate %d to %d with %d elements", t.Path(arr), ErrOutOfBounds, src, dst, cnt)
	}
	from := x.start(dst)
	el, _, err := Copy(t, t.ElemOf(arr), s, x.start(src), from)
	if err != nil {
		return err
	}
	if len(el)%4 == 0 {
		// everything after keeps its alignment phase
		if err := b.Splice(from, 0, el); err != nil {
			return err
		}
		return WriteCount(*b, x.off, cnt+1)
	}
	ins, err := relocate(t, arr, s, x.tail(dst), from, el)
	if err != nil {
		return err
	}
	return replace(t, b, arr, x.off, from, x.end, ins, cnt+1)
}

// Delete removes element i.
func Delete(t *schema.Tree, b *Buffer, arr schema.NodeID, off, i int) error {
	s := *b
	x, err := measure(t, arr, s, off)
	if err != nil {
		return err
	}
	cnt := x.count()
	if i < 0 || i >= cnt {
		return fmt.Errorf("%s: %w: delete %d of %d elements", t.Path(arr), ErrOutOfBounds, i, cnt)
	}
	from, next := x.start(i), x.start(i+1)
	if (next-from)%4 == 0 {
		if err := b.Splice(from, next-from, nil); err != nil {
			return err
		}
		return WriteCount(*b, x.off, cnt-1)
	}
	ins, err := relocate(t, arr, s, x.tail(i+1), from, nil)
	if err != nil {
		return err
	}
	return replace(t, b, arr, x.off, from, x.end, ins, cnt-1)
}

// ReplaceString overwrites the string instance id at off with v.
func ReplaceString(t *schema.Tree, b *Buffer, id schema.NodeID, off int, v []byte) error {
	n := t.Node(id)
	if n.Kind != schema.String {
		return fmt.Errorf("%w: %s is a %s, not a string", ErrKind, t.Path(id), n.Kind)
	}
	if len(v) > math.MaxUint32 {
		return fmt.Errorf("%s: %w: string of %d bytes", t.Path(id), ErrOutOfBounds, len(v))
	}
	end, err := Walk(t, id, *b, off)
	if err != nil {
		return err
	}
	ins := appendCount(make([]byte, 0, schema.CountWidth+len(v)+3), len(v))
	ins = append(ins, v...)
	ins = padFor(t, id, off+len(ins), ins)
	return replace(t, b, id, off, off, end, ins, -1)
}

// relocate re-encodes head followed by the elements of arr starting at
// srcs for placement at absolute offset at, and closes with the array's
// padding.
func relocate(t *schema.Tree, arr schema.NodeID, s []byte, srcs []int, at int, head []byte) ([]byte, error) {
	ins := slices.Clone(head)
	elem := t.ElemOf(arr)
	for _, src := range srcs {
		el, _, err := Copy(t, elem, s, src, at+len(ins))
		if err != nil {
			return nil, err
		}
		ins = append(ins, el...)
	}
	return padFor(t, arr, at+len(ins), ins), nil
}

// padFor appends id's trailing padding to ins, which ends at absolute
// offset end.
func padFor(t *schema.Tree, id schema.NodeID, end int, ins []byte) []byte {
	if !t.Node(id).Align {
		return ins
	}
	return append(ins, make([]byte, Align(end)-end)...)
}

// replace swaps the bytes [from, to) of the instance of id at off for ins.
// to must be the end of the instance including its padding. If count is
// not negative it is written as the instance's size prefix.
//
// When the change in length is a multiple of 4 the bytes are spliced in
// place. Otherwise the buffer is rebuilt so that all following padding
// matches its new position.
func replace(t *schema.Tree, b *Buffer, id schema.NodeID, off, from, to int, ins []byte, count int) error {
	s := *b
	if (len(ins)-(to-from))%4 == 0 {
		if err := b.Splice(from, to-from, ins); err != nil {
			return err
		}
		if count >= 0 {
			return WriteCount(*b, off, count)
		}
		return nil
	}
	repl := make([]byte, 0, from-off+len(ins))
	repl = append(repl, s[off:from]...)
	repl = append(repl, ins...)
	if count >= 0 {
		if err := WriteCount(repl, 0, count); err != nil {
			return err
		}
	}
	res, err := Relayout(t, s, id, off, to-off, repl)
	if err != nil {
		return err
	}
	*b = res
	return nil
}
