package schema

import (
	"fmt"
	"strings"
)

// Def is the uncompiled description of a node. It is what schema files
// decode into.
type Def struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Width  int    `json:"width,omitempty"`
	Align  bool   `json:"align,omitempty"`
	Fields []Def  `json:"fields,omitempty"`
	Elem   *Def   `json:"elem,omitempty"`
}

// Field returns a Def of the named kind, such as "int32" or "float64".
func Field(name, kind string) Def {
	return Def{Name: name, Kind: kind}
}

func Str(name string) Def {
	return Def{Name: name, Kind: "string"}
}

func Reference(name string) Def {
	return Def{Name: name, Kind: "ref"}
}

func List(name string, elem Def) Def {
	return Def{Name: name, Kind: "array", Elem: &elem}
}

func Struct(name string, fields ...Def) Def {
	return Def{Name: name, Kind: "composite", Fields: fields}
}

// Aligned returns d with its 4 byte alignment flag set.
func (d Def) Aligned() Def {
	d.Align = true
	return d
}

// Sized returns d with an explicit byte width.
func (d Def) Sized(width int) Def {
	d.Width = width
	return d
}

// Build compiles d into a Tree. Nodes are numbered in pre-order and that
// number doubles as each node's schema index.
func Build(d Def) (*Tree, error) {
	t := &Tree{}
	if _, err := t.add(&d, None, d.Name); err != nil {
		return nil, err
	}
	t.minWidth = make([]int, len(t.nodes))
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		switch n.Kind {
		case Scalar, Ref:
			t.minWidth[i] = n.Width
		case String, Array:
			t.minWidth[i] = CountWidth
		case Composite:
			for _, c := range n.Children {
				t.minWidth[i] += t.minWidth[c]
			}
		}
	}
	return t, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(d Def) *Tree {
	t, err := Build(d)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree) add(d *Def, parent NodeID, name string) (NodeID, error) {
	ks, ok := kindNames[strings.ToLower(d.Kind)]
	if !ok {
		return None, fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidSchema, name, d.Kind)
	}
	id := NodeID(len(t.nodes))
	n := Node{
		Name:   name,
		Kind:   ks.kind,
		Scalar: ks.scalar,
		Width:  ks.width,
		Align:  d.Align,
		Index:  int(id),
		Parent: parent,
	}
	if d.Width != 0 {
		if ks.width != 0 && ks.kind == Scalar && d.Width != ks.width {
			return None, fmt.Errorf("%w: %q: kind %s has width %d, not %d", ErrInvalidSchema, name, d.Kind, ks.width, d.Width)
		}
		n.Width = d.Width
	}
	t.nodes = append(t.nodes, n)

	switch n.Kind {
	case Scalar:
		if n.Width <= 0 {
			return None, fmt.Errorf("%w: scalar %q needs a positive width", ErrInvalidSchema, name)
		}
		if len(d.Fields) != 0 || d.Elem != nil {
			return None, fmt.Errorf("%w: scalar %q has children", ErrInvalidSchema, name)
		}
	case Ref:
		if n.Width != 4 && n.Width != 8 {
			return None, fmt.Errorf("%w: ref %q must be 4 or 8 bytes wide", ErrInvalidSchema, name)
		}
		if len(d.Fields) != 0 || d.Elem != nil {
			return None, fmt.Errorf("%w: ref %q has children", ErrInvalidSchema, name)
		}
	case String:
		if len(d.Fields) != 0 || d.Elem != nil {
			return None, fmt.Errorf("%w: string %q has children", ErrInvalidSchema, name)
		}
	case Array:
		if d.Elem == nil {
			return None, fmt.Errorf("%w: array %q has no element type", ErrInvalidSchema, name)
		}
		if len(d.Fields) != 0 {
			return None, fmt.Errorf("%w: array %q has fields", ErrInvalidSchema, name)
		}
		size := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{
			Name:   SizeName,
			Kind:   Scalar,
			Scalar: Uint,
			Width:  CountWidth,
			Index:  int(size),
			Parent: id,
		})
		elemName := d.Elem.Name
		if elemName == "" {
			elemName = DataName
		}
		elem, err := t.add(d.Elem, id, elemName)
		if err != nil {
			return None, err
		}
		t.nodes[id].Children = []NodeID{size, elem}
	case Composite:
		if d.Elem != nil {
			return None, fmt.Errorf("%w: composite %q has an element type", ErrInvalidSchema, name)
		}
		seen := make(map[string]bool, len(d.Fields))
		children := make([]NodeID, 0, len(d.Fields))
		for i := range d.Fields {
			f := &d.Fields[i]
			if err := checkName(f.Name); err != nil {
				return None, fmt.Errorf("%w: field %d of %q: %w", ErrInvalidSchema, i, name, err)
			}
			if seen[f.Name] {
				return None, fmt.Errorf("%w: %q has duplicate field %q", ErrInvalidSchema, name, f.Name)
			}
			seen[f.Name] = true
			c, err := t.add(f, id, f.Name)
			if err != nil {
				return None, err
			}
			children = append(children, c)
		}
		t.nodes[id].Children = children
	}
	return id, nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if strings.ContainsAny(name, ".[]") {
		return fmt.Errorf("name %q contains one of '.', '[', ']'", name)
	}
	return nil
}
