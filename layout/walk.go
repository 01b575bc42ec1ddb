package layout

import (
	"fmt"

	"github.com/signadot/instdiff/schema"
)

// Walk returns the cursor just past the instance of id that starts at cur,
// including its alignment padding.
func Walk(t *schema.Tree, id schema.NodeID, buf []byte, cur int) (int, error) {
	n := t.Node(id)
	switch n.Kind {
	case schema.Scalar, schema.Ref:
		if err := need(buf, cur, n.Width); err != nil {
			return 0, fmt.Errorf("%s: %w", t.Path(id), err)
		}
		cur += n.Width
	case schema.String:
		l, err := ReadCount(buf, cur)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", t.Path(id), err)
		}
		cur += schema.CountWidth
		if err := need(buf, cur, l); err != nil {
			return 0, fmt.Errorf("%s: %w", t.Path(id), err)
		}
		cur += l
	case schema.Array:
		cnt, err := ReadCount(buf, cur)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", t.Path(id), err)
		}
		cur += schema.CountWidth
		if cur, err = walkElems(t, id, buf, cur, cnt); err != nil {
			return 0, err
		}
	case schema.Composite:
		var err error
		for _, c := range n.Children {
			if cur, err = Walk(t, c, buf, cur); err != nil {
				return 0, err
			}
		}
	default:
		return 0, fmt.Errorf("%w: %s has kind %s", ErrKind, t.Path(id), n.Kind)
	}
	if n.Align {
		cur = Align(cur)
		if cur > len(buf) {
			return 0, fmt.Errorf("%s: %w: padding ends at %d in a buffer of %d", t.Path(id), ErrOutOfBounds, cur, len(buf))
		}
	}
	return cur, nil
}

// CheckCount rejects element counts that cannot fit in the rest of buf and
// limits zero width elements to the one that may contribute a pad.
func CheckCount(t *schema.Tree, arr schema.NodeID, buf []byte, cur, cnt int) (int, error) {
	minW := t.MinWidth(t.ElemOf(arr))
	if minW > 0 && cnt > (len(buf)-cur)/minW {
		return 0, fmt.Errorf("%s: %w: %d elements of at least %d bytes at offset %d in a buffer of %d",
			t.Path(arr), ErrOutOfBounds, cnt, minW, cur, len(buf))
	}
	if minW == 0 && cnt > 1 {
		return 1, nil
	}
	return cnt, nil
}

// walkElems walks cnt elements of arr starting at cur.
func walkElems(t *schema.Tree, arr schema.NodeID, buf []byte, cur, cnt int) (int, error) {
	elem := t.ElemOf(arr)
	cnt, err := CheckCount(t, arr, buf, cur, cnt)
	if err != nil {
		return 0, err
	}
	for range cnt {
		if cur, err = Walk(t, elem, buf, cur); err != nil {
			return 0, err
		}
	}
	return cur, nil
}

// Elem returns the offset of element i of the array at off, along with the
// array's current size. It fails if i is not below the size.
func Elem(t *schema.Tree, arr schema.NodeID, buf []byte, off, i int) (elemOff, size int, err error) {
	size, err = ReadCount(buf, off)
	if err != nil {
		return 0, 0, err
	}
	if i < 0 || i >= size {
		return 0, size, fmt.Errorf("%s: %w: index %d of %d", t.Path(arr), ErrOutOfBounds, i, size)
	}
	elemOff, err = walkElems(t, arr, buf, off+schema.CountWidth, i)
	if err != nil {
		return 0, size, err
	}
	return elemOff, size, nil
}
