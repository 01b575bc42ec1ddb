// Package jsonview renders buffers as JSON documents and packs JSON
// documents back into buffers.
//
// Composites become objects with fields in schema order, arrays and
// strings map to their JSON counterparts, integers and finite floats are
// numbers, and references are their numeric ids. Floats without a JSON
// number form, such as NaN, are written as strings in codec text, and
// scalars without a text form as hex strings of their bytes.
package jsonview

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

// Field is a member of an Object.
type Field struct {
	Name  string
	Value any
}

// Object is a rendered composite. It marshals with its fields in order.
type Object []Field

func (o Object) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer([]byte{'{'})
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value of the field name.
func (o Object) Get(name string) (any, bool) {
	for _, f := range o {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Render returns buf as a tree of Object, []any, string, bool,
// json.Number and uint64 values.
func Render(t *schema.Tree, buf []byte) (any, error) {
	v, _, err := render(t, t.Root(), buf, 0)
	return v, err
}

func render(t *schema.Tree, id schema.NodeID, buf []byte, off int) (any, int, error) {
	n := t.Node(id)
	next, err := layout.Walk(t, id, buf, off)
	if err != nil {
		return nil, 0, err
	}
	switch n.Kind {
	case schema.Scalar, schema.String, schema.Ref:
		v, err := codec.Decode(t, id, buf, off)
		if errors.Is(err, codec.ErrUnsupportedType) && n.Kind == schema.Scalar {
			// no text form; show the raw bytes
			return hex.EncodeToString(buf[off : off+n.Width]), next, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return leafJSON(n, v), next, nil
	case schema.Array:
		cnt, _ := layout.ReadCount(buf, off)
		off += schema.CountWidth
		elem := t.ElemOf(id)
		if t.MinWidth(elem) == 0 && cnt > len(buf) {
			return nil, 0, fmt.Errorf("%s: %w: %d empty elements", t.Path(id), layout.ErrOutOfBounds, cnt)
		}
		res := make([]any, 0, min(cnt, len(buf)))
		for range cnt {
			var v any
			if v, off, err = render(t, elem, buf, off); err != nil {
				return nil, 0, err
			}
			res = append(res, v)
		}
		return res, next, nil
	case schema.Composite:
		res := make(Object, 0, len(n.Children))
		for _, c := range n.Children {
			var v any
			if v, off, err = render(t, c, buf, off); err != nil {
				return nil, 0, err
			}
			res = append(res, Field{Name: t.Node(c).Name, Value: v})
		}
		return res, next, nil
	}
	return nil, 0, fmt.Errorf("%w: %s", codec.ErrUnsupportedType, t.Path(id))
}

func leafJSON(n *schema.Node, v codec.Value) any {
	if v.Ref != nil {
		return uint64(*v.Ref)
	}
	switch n.Kind {
	case schema.String:
		return v.Text
	}
	switch n.Scalar {
	case schema.Int, schema.Uint:
		return json.Number(v.Text)
	case schema.Float:
		if f, err := strconv.ParseFloat(v.Text, 64); err == nil && !math.IsInf(f, 0) {
			return json.Number(v.Text)
		}
		return v.Text
	case schema.Bool:
		switch v.Text {
		case "true":
			return true
		case "false":
			return false
		}
		return json.Number(v.Text)
	}
	return v.Text
}

// Marshal renders buf as indented JSON.
func Marshal(t *schema.Tree, buf []byte) ([]byte, error) {
	v, err := Render(t, buf)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
