package instdiff

import (
	"fmt"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/debug"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/override"
	"github.com/signadot/instdiff/schema"
)

// DiffMask records the leaves of buf whose schema index is set in
// changed, without comparing values. An array size produces a record when
// the index of the array's size node is set. A set bit under an array
// applies to every element of it.
//
// The result is not minimal and carries no information about array
// lengths beyond the size bits that are set.
func DiffMask(t *schema.Tree, buf []byte, changed *bitset.BitSet, opts ...DiffOpt) ([]override.Record, error) {
	cfg := &DiffConfig{}
	for _, o := range opts {
		o(cfg)
	}
	d := &differ{t: t, cfg: cfg}
	if _, err := d.mask(t.Root(), buf, 0, changed); err != nil {
		return nil, err
	}
	if debug.Diff() {
		debug.LogAny(d.recs)
	}
	return d.recs, nil
}

func (d *differ) mask(id schema.NodeID, buf []byte, off int, changed *bitset.BitSet) (int, error) {
	t := d.t
	n := t.Node(id)
	set := changed.Test(uint(n.Index))
	var err error
	switch n.Kind {
	case schema.Scalar, schema.String, schema.Ref:
		next, err := layout.Walk(t, id, buf, off)
		if err != nil {
			return 0, err
		}
		if set {
			if err := d.emitDecoded(id, buf, off); err != nil {
				return 0, err
			}
		}
		return next, nil
	case schema.Array:
		cnt, err := layout.ReadCount(buf, off)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", t.Path(id), err)
		}
		if changed.Test(uint(t.Node(t.SizeOf(id)).Index)) {
			d.path.PushSize()
			d.emit(codec.Value{Text: strconv.Itoa(cnt)})
			d.path.Pop()
		}
		off += schema.CountWidth
		if cnt, err = layout.CheckCount(t, id, buf, off, cnt); err != nil {
			return 0, err
		}
		elem := t.ElemOf(id)
		for i := range cnt {
			d.path.PushIndex(i)
			off, err = d.mask(elem, buf, off, changed)
			d.path.Pop()
			if err != nil {
				return 0, err
			}
		}
	case schema.Composite:
		for _, c := range n.Children {
			d.path.PushField(t.Node(c).Name)
			off, err = d.mask(c, buf, off, changed)
			d.path.Pop()
			if err != nil {
				return 0, err
			}
		}
	default:
		return 0, fmt.Errorf("%w: %s has kind %s", layout.ErrKind, t.Path(id), n.Kind)
	}
	if n.Align {
		return align(t, id, buf, off)
	}
	return off, nil
}
