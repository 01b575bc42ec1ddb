package jsonview

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

// Pack encodes a JSON document as a buffer. Missing fields are zero and
// unknown fields are an error.
func Pack(t *schema.Tree, doc []byte) (layout.Buffer, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("could not decode document: %w", err)
	}
	p := &packer{t: t}
	if err := p.pack(t.Root(), v); err != nil {
		return nil, err
	}
	return p.out, nil
}

type packer struct {
	t   *schema.Tree
	out []byte
}

func (p *packer) pack(id schema.NodeID, v any) error {
	t := p.t
	n := t.Node(id)
	if v == nil && n.Kind != schema.Ref {
		p.out = append(p.out, layout.Zero(t, id, len(p.out))...)
		return nil
	}
	switch n.Kind {
	case schema.Scalar, schema.String, schema.Ref:
		enc, err := p.leaf(id, v)
		if err != nil {
			return err
		}
		p.out = append(p.out, enc...)
	case schema.Array:
		vs, ok := v.([]any)
		if !ok {
			return mismatch(t, id, "an array", v)
		}
		p.out = append(p.out, make([]byte, schema.CountWidth)...)
		if err := layout.WriteCount(p.out, len(p.out)-schema.CountWidth, len(vs)); err != nil {
			return err
		}
		elem := t.ElemOf(id)
		for _, ev := range vs {
			if err := p.pack(elem, ev); err != nil {
				return err
			}
		}
	case schema.Composite:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(t, id, "an object", v)
		}
		for k := range obj {
			if _, ok := t.Child(id, k); !ok {
				return fmt.Errorf("%w: %s has no field %q", codec.ErrBadValue, pathOf(t, id), k)
			}
		}
		for _, c := range n.Children {
			if err := p.pack(c, obj[t.Node(c).Name]); err != nil {
				return err
			}
		}
	}
	if n.Align {
		p.out = append(p.out, make([]byte, layout.Align(len(p.out))-len(p.out))...)
	}
	return nil
}

func (p *packer) leaf(id schema.NodeID, v any) ([]byte, error) {
	t := p.t
	n := t.Node(id)
	var cv codec.Value
	switch x := v.(type) {
	case nil:
	case string:
		cv.Text = x
	case json.Number:
		cv.Text = x.String()
	case bool:
		cv.Text = "false"
		if x {
			cv.Text = "true"
		}
	default:
		return nil, mismatch(t, id, "a leaf value", v)
	}
	if n.Kind == schema.String {
		if _, ok := v.(string); !ok {
			return nil, mismatch(t, id, "a string", v)
		}
	}
	enc, err := codec.Encode(t, id, cv)
	if errors.Is(err, codec.ErrUnsupportedType) && n.Kind == schema.Scalar {
		raw, herr := hex.DecodeString(cv.Text)
		if herr != nil || len(raw) != n.Width {
			return nil, fmt.Errorf("%w: %s wants %d hex encoded bytes, got %q", codec.ErrBadValue, t.Path(id), n.Width, cv.Text)
		}
		return raw, nil
	}
	return enc, err
}

func mismatch(t *schema.Tree, id schema.NodeID, want string, got any) error {
	return fmt.Errorf("%w: %s wants %s, got %T", codec.ErrBadValue, pathOf(t, id), want, got)
}

func pathOf(t *schema.Tree, id schema.NodeID) string {
	if id == t.Root() {
		return "<root>"
	}
	return t.Path(id)
}
