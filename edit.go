package instdiff

import (
	"fmt"

	"github.com/signadot/instdiff/fieldpath"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

// array resolves path to an array instance. path may name the array or
// its size.
func array(t *schema.Tree, buf []byte, path string) (schema.NodeID, int, error) {
	loc, err := fieldpath.Resolve(t, buf, path)
	if err != nil {
		return schema.None, 0, err
	}
	if loc.IsSize() {
		return loc.Array, loc.ArrayOffset, nil
	}
	if t.Node(loc.Node).Kind != schema.Array {
		return schema.None, 0, fmt.Errorf("%w: %q is a %s, not an array", layout.ErrKind, path, t.Node(loc.Node).Kind)
	}
	return loc.Node, loc.Offset, nil
}

// ResizeArray sets the size of the array at path to n.
func ResizeArray(t *schema.Tree, buf *layout.Buffer, path string, n int, fill layout.Fill) error {
	arr, off, err := array(t, *buf, path)
	if err != nil {
		return err
	}
	return layout.Resize(t, buf, arr, off, n, fill)
}

// InsertElement inserts a copy of element src of the array at path so
// that it becomes element dst.
func InsertElement(t *schema.Tree, buf *layout.Buffer, path string, src, dst int) error {
	arr, off, err := array(t, *buf, path)
	if err != nil {
		return err
	}
	return layout.Duplicate(t, buf, arr, off, src, dst)
}

// RemoveElement removes element i of the array at path.
func RemoveElement(t *schema.Tree, buf *layout.Buffer, path string, i int) error {
	arr, off, err := array(t, *buf, path)
	if err != nil {
		return err
	}
	return layout.Delete(t, buf, arr, off, i)
}
