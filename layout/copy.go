package layout

import (
	"fmt"

	"github.com/signadot/instdiff/schema"
)

// encoder appends node encodings destined for absolute offset base.
type encoder struct {
	t    *schema.Tree
	base int
	out  []byte

	// a single node instance to substitute while copying
	subID  schema.NodeID
	subOff int
	subLen int
	sub    []byte
	subbed bool
}

func (e *encoder) pos() int { return e.base + len(e.out) }

func (e *encoder) pad() {
	for e.pos()%4 != 0 {
		e.out = append(e.out, 0)
	}
}

func (e *encoder) zero(id schema.NodeID) {
	n := e.t.Node(id)
	switch n.Kind {
	case schema.Scalar, schema.Ref:
		e.out = append(e.out, make([]byte, n.Width)...)
	case schema.String, schema.Array:
		e.out = appendCount(e.out, 0)
	case schema.Composite:
		for _, c := range n.Children {
			e.zero(c)
		}
	}
	if n.Align {
		e.pad()
	}
}

// copy re-encodes the instance of id found at src[off:], returning the
// offset in src just past it.
func (e *encoder) copy(id schema.NodeID, src []byte, off int) (int, error) {
	if e.sub != nil && id == e.subID && off == e.subOff {
		if e.pos() != off {
			return 0, fmt.Errorf("%w: %s moved from %d to %d before substitution", ErrOutOfBounds, e.t.Path(id), off, e.pos())
		}
		e.out = append(e.out, e.sub...)
		e.subbed = true
		return off + e.subLen, nil
	}
	n := e.t.Node(id)
	switch n.Kind {
	case schema.Scalar, schema.Ref:
		if err := need(src, off, n.Width); err != nil {
			return 0, fmt.Errorf("%s: %w", e.t.Path(id), err)
		}
		e.out = append(e.out, src[off:off+n.Width]...)
		off += n.Width
	case schema.String:
		l, err := ReadCount(src, off)
		if err == nil {
			err = need(src, off, schema.CountWidth+l)
		}
		if err != nil {
			return 0, fmt.Errorf("%s: %w", e.t.Path(id), err)
		}
		e.out = append(e.out, src[off:off+schema.CountWidth+l]...)
		off += schema.CountWidth + l
	case schema.Array:
		cnt, err := ReadCount(src, off)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", e.t.Path(id), err)
		}
		e.out = append(e.out, src[off:off+schema.CountWidth]...)
		off += schema.CountWidth
		if cnt, err = CheckCount(e.t, id, src, off, cnt); err != nil {
			return 0, err
		}
		elem := e.t.ElemOf(id)
		for range cnt {
			if off, err = e.copy(elem, src, off); err != nil {
				return 0, err
			}
		}
	case schema.Composite:
		var err error
		for _, c := range n.Children {
			if off, err = e.copy(c, src, off); err != nil {
				return 0, err
			}
		}
	default:
		return 0, fmt.Errorf("%w: %s has kind %s", ErrKind, e.t.Path(id), n.Kind)
	}
	if n.Align {
		off = Align(off)
		if off > len(src) {
			return 0, fmt.Errorf("%s: %w: padding ends at %d in a buffer of %d", e.t.Path(id), ErrOutOfBounds, off, len(src))
		}
		e.pad()
	}
	return off, nil
}

// Zero returns the encoding of a zero valued instance of id placed at
// absolute offset base: zero scalars and references, empty strings and
// arrays.
func Zero(t *schema.Tree, id schema.NodeID, base int) []byte {
	e := &encoder{t: t, base: base}
	e.zero(id)
	return e.out
}

// Copy re-encodes the instance of id at src[off:] for placement at
// absolute offset base. Values are copied verbatim; alignment padding is
// recomputed for the new position. It also returns the offset in src just
// past the instance.
func Copy(t *schema.Tree, id schema.NodeID, src []byte, off, base int) ([]byte, int, error) {
	e := &encoder{t: t, base: base}
	next, err := e.copy(id, src, off)
	if err != nil {
		return nil, 0, err
	}
	return e.out, next, nil
}

// Relayout rebuilds buf from the root with the oldLen bytes of the instance
// of target at off replaced by repl. repl must already be encoded for
// offset off, including its own trailing padding. Everything after it is
// copied with freshly computed padding. Bytes past the root's span are kept.
func Relayout(t *schema.Tree, buf []byte, target schema.NodeID, off, oldLen int, repl []byte) ([]byte, error) {
	if repl == nil {
		repl = []byte{}
	}
	e := &encoder{
		t:      t,
		out:    make([]byte, 0, len(buf)+len(repl)-oldLen+4),
		subID:  target,
		subOff: off,
		subLen: oldLen,
		sub:    repl,
	}
	end, err := e.copy(t.Root(), buf, 0)
	if err != nil {
		return nil, err
	}
	if !e.subbed {
		return nil, fmt.Errorf("%w: no instance of %s at %d", ErrOutOfBounds, t.Path(target), off)
	}
	return append(e.out, buf[end:]...), nil
}
