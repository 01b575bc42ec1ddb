package fieldpath

import (
	"fmt"

	"github.com/signadot/instdiff/debug"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

// Location is a resolved path.
type Location struct {
	Node   schema.NodeID
	Offset int
	// Array is the array owning Node when Node is a size scalar, and
	// schema.None otherwise. ArrayOffset is then equal to Offset.
	Array       schema.NodeID
	ArrayOffset int
}

// IsSize reports whether l addresses an array's size.
func (l Location) IsSize() bool { return l.Array != schema.None }

// Resolve finds the node instance addressed by path in buf.
func Resolve(t *schema.Tree, buf []byte, path string) (Location, error) {
	segs, err := Parse(path)
	if err != nil {
		return Location{}, err
	}
	loc, err := ResolveSegments(t, buf, segs)
	if err != nil {
		return Location{}, fmt.Errorf("%q: %w", path, err)
	}
	if debug.Resolve() {
		debug.Logf("resolve %s -> %s at %d\n", path, t.Path(loc.Node), loc.Offset)
	}
	return loc, nil
}

// ResolveSegments is Resolve for an already parsed path.
//
// Element indices are checked against the live size read from buf. A
// trailing size segment resolves without reading the current size, so it
// can always serve as a resize target.
func ResolveSegments(t *schema.Tree, buf []byte, segs []Segment) (Location, error) {
	cur, off := t.Root(), 0
	for i, seg := range segs {
		n := t.Node(cur)
		switch n.Kind {
		case schema.Composite:
			if seg.Kind == Element {
				return Location{}, fmt.Errorf("%w: %s is not an array", ErrUnresolved, pathOf(t, cur))
			}
			next, err := descend(t, cur, buf, off, seg.Name)
			if err != nil {
				return Location{}, err
			}
			cur, off = next.id, next.off
		case schema.Array:
			switch seg.Kind {
			case Size:
				if i != len(segs)-1 {
					return Location{}, fmt.Errorf("%w: segments after %s.size", ErrUnresolved, pathOf(t, cur))
				}
				return Location{Node: t.SizeOf(cur), Offset: off, Array: cur, ArrayOffset: off}, nil
			case Element:
				cnt, err := layout.ReadCount(buf, off)
				if err != nil {
					return Location{}, fmt.Errorf("%s: %w", pathOf(t, cur), err)
				}
				if seg.Index >= cnt {
					return Location{}, fmt.Errorf("%w: %s has %d elements, no index %d", ErrUnresolved, pathOf(t, cur), cnt, seg.Index)
				}
				eoff, _, err := layout.Elem(t, cur, buf, off, seg.Index)
				if err != nil {
					return Location{}, err
				}
				cur, off = t.ElemOf(cur), eoff
			default:
				return Location{}, fmt.Errorf("%w: array %s has no field %q", ErrUnresolved, pathOf(t, cur), seg.Name)
			}
		default:
			return Location{}, fmt.Errorf("%w: %s is a %s leaf", ErrUnresolved, pathOf(t, cur), n.Kind)
		}
	}
	return Location{Node: cur, Offset: off, Array: schema.None}, nil
}

type step struct {
	id  schema.NodeID
	off int
}

// descend finds the child name of the composite id at off, walking the
// siblings before it.
func descend(t *schema.Tree, id schema.NodeID, buf []byte, off int, name string) (step, error) {
	var err error
	for _, c := range t.Node(id).Children {
		if t.Node(c).Name == name {
			return step{c, off}, nil
		}
		if off, err = layout.Walk(t, c, buf, off); err != nil {
			return step{}, err
		}
	}
	return step{}, fmt.Errorf("%w: %s has no field %q", ErrUnresolved, pathOf(t, id), name)
}

func pathOf(t *schema.Tree, id schema.NodeID) string {
	if id == t.Root() {
		return "<root>"
	}
	return t.Path(id)
}

// Lookup finds the schema node a path addresses without consulting a
// buffer, so element indices are not bounds checked.
func Lookup(t *schema.Tree, path string) (schema.NodeID, error) {
	segs, err := Parse(path)
	if err != nil {
		return schema.None, err
	}
	cur := t.Root()
	for i, seg := range segs {
		n := t.Node(cur)
		switch {
		case n.Kind == schema.Composite && seg.Kind != Element:
			c, ok := t.Child(cur, seg.Name)
			if !ok {
				return schema.None, fmt.Errorf("%w: %q: %s has no field %q", ErrUnresolved, path, pathOf(t, cur), seg.Name)
			}
			cur = c
		case n.Kind == schema.Array && seg.Kind == Size && i == len(segs)-1:
			cur = t.SizeOf(cur)
		case n.Kind == schema.Array && seg.Kind == Element:
			cur = t.ElemOf(cur)
		default:
			return schema.None, fmt.Errorf("%w: %q: cannot apply %s segment %q to %s", ErrUnresolved, path, seg.Kind, seg, pathOf(t, cur))
		}
	}
	return cur, nil
}
