package instdiff

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/debug"
	"github.com/signadot/instdiff/fieldpath"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/override"
	"github.com/signadot/instdiff/schema"
)

// RemapFunc maps a baseline object id to the id it corresponds to in the
// target, for buffers cloned from one another.
type RemapFunc func(codec.ObjectID) codec.ObjectID

type DiffConfig struct {
	Remap RemapFunc
	Owner *codec.ObjectID
}

type DiffOpt func(*DiffConfig)

// DiffRemap compares references after mapping baseline ids with f. The
// null id 0 is never passed to f: a null baseline reference compares as
// null, so it matches a null target and differs from any other.
func DiffRemap(f RemapFunc) DiffOpt {
	return func(c *DiffConfig) { c.Remap = f }
}

// DiffOwner sets the owner of every produced record.
func DiffOwner(id codec.ObjectID) DiffOpt {
	return func(c *DiffConfig) { c.Owner = &id }
}

type differ struct {
	t    *schema.Tree
	cfg  *DiffConfig
	path fieldpath.Builder
	recs []override.Record
}

// Diff returns a record for every leaf of target that differs from
// baseline. Array sizes come before the elements they govern, and
// elements only present in target are compared against zero values, so
// applying the records to baseline reproduces target.
//
// Any bounds violation in either buffer fails the whole diff.
func Diff(t *schema.Tree, baseline, target []byte, opts ...DiffOpt) ([]override.Record, error) {
	cfg := &DiffConfig{}
	for _, o := range opts {
		o(cfg)
	}
	d := &differ{t: t, cfg: cfg}
	if _, _, err := d.diff(t.Root(), baseline, 0, target, 0); err != nil {
		return nil, err
	}
	if debug.Diff() {
		debug.LogAny(d.recs)
	}
	return d.recs, nil
}

func (d *differ) emit(v codec.Value) {
	r := override.New(d.path.String(), v)
	if d.cfg.Owner != nil {
		id := *d.cfg.Owner
		r.Owner = &id
	}
	if debug.Diff() {
		debug.Logf("diff %s\n", r)
	}
	d.recs = append(d.recs, r)
}

// diff compares the instances of id at a[ao:] and b[bo:] and returns the
// cursors past both.
func (d *differ) diff(id schema.NodeID, a []byte, ao int, b []byte, bo int) (int, int, error) {
	t := d.t
	n := t.Node(id)
	switch n.Kind {
	case schema.Scalar, schema.String:
		sa, err := codec.Span(t, id, a, ao)
		if err != nil {
			return 0, 0, err
		}
		sb, err := codec.Span(t, id, b, bo)
		if err != nil {
			return 0, 0, err
		}
		if !bytes.Equal(sa, sb) {
			if err := d.emitDecoded(id, b, bo); err != nil {
				return 0, 0, err
			}
		}
		ao, bo = ao+len(sa), bo+len(sb)
	case schema.Ref:
		va, err := codec.Decode(t, id, a, ao)
		if err != nil {
			return 0, 0, err
		}
		vb, err := codec.Decode(t, id, b, bo)
		if err != nil {
			return 0, 0, err
		}
		base := *va.Ref
		if d.cfg.Remap != nil && base != 0 {
			base = d.cfg.Remap(base)
		}
		if base != *vb.Ref {
			d.emit(vb)
		}
		ao, bo = ao+n.Width, bo+n.Width
	case schema.Array:
		var err error
		if ao, bo, err = d.diffArray(id, a, ao, b, bo); err != nil {
			return 0, 0, err
		}
	case schema.Composite:
		var err error
		for _, c := range n.Children {
			d.path.PushField(t.Node(c).Name)
			ao, bo, err = d.diff(c, a, ao, b, bo)
			d.path.Pop()
			if err != nil {
				return 0, 0, err
			}
		}
	default:
		return 0, 0, fmt.Errorf("%w: %s has kind %s", layout.ErrKind, t.Path(id), n.Kind)
	}
	if n.Align {
		var err error
		if ao, err = align(t, id, a, ao); err != nil {
			return 0, 0, err
		}
		if bo, err = align(t, id, b, bo); err != nil {
			return 0, 0, err
		}
	}
	return ao, bo, nil
}

func (d *differ) diffArray(id schema.NodeID, a []byte, ao int, b []byte, bo int) (int, int, error) {
	t := d.t
	ca, err := layout.ReadCount(a, ao)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", t.Path(id), err)
	}
	cb, err := layout.ReadCount(b, bo)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", t.Path(id), err)
	}
	ao += schema.CountWidth
	bo += schema.CountWidth
	if ca != cb {
		d.path.PushSize()
		d.emit(codec.Value{Text: strconv.Itoa(cb)})
		d.path.Pop()
	}
	if ca, err = layout.CheckCount(t, id, a, ao, ca); err != nil {
		return 0, 0, err
	}
	if cb, err = layout.CheckCount(t, id, b, bo, cb); err != nil {
		return 0, 0, err
	}
	elem := t.ElemOf(id)
	var zero []byte
	for i := range max(ca, cb) {
		switch {
		case i < ca && i < cb:
			d.path.PushIndex(i)
			ao, bo, err = d.diff(elem, a, ao, b, bo)
			d.path.Pop()
		case i < ca:
			ao, err = layout.Walk(t, elem, a, ao)
		default:
			if zero == nil {
				zero = layout.Zero(t, elem, 0)
			}
			d.path.PushIndex(i)
			_, bo, err = d.diff(elem, zero, 0, b, bo)
			d.path.Pop()
		}
		if err != nil {
			return 0, 0, err
		}
	}
	return ao, bo, nil
}

// emitDecoded records the leaf id of b at off. Leaves the codec cannot
// represent produce no record.
func (d *differ) emitDecoded(id schema.NodeID, b []byte, off int) error {
	v, err := codec.Decode(d.t, id, b, off)
	if errors.Is(err, codec.ErrUnsupportedType) {
		if debug.Diff() {
			debug.Logf("diff %s: skipping: %v\n", d.path.String(), err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	d.emit(v)
	return nil
}

func align(t *schema.Tree, id schema.NodeID, buf []byte, cur int) (int, error) {
	cur = layout.Align(cur)
	if cur > len(buf) {
		return 0, fmt.Errorf("%s: %w: padding ends at %d in a buffer of %d", t.Path(id), layout.ErrOutOfBounds, cur, len(buf))
	}
	return cur, nil
}
