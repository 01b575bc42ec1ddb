// Package fieldpath builds, parses and resolves field paths.
//
// A field path names one node instance within a buffer by field names and
// array indices only:
//
//	hp
//	items.size
//	items.data[2].tags.data[0]
//
// Paths carry no byte offsets, so a path stays valid when variable length
// data elsewhere in the buffer changes size.
package fieldpath

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/signadot/instdiff/schema"
)

var ErrUnresolved = errors.New("unresolved path")

type SegmentKind int

const (
	Field SegmentKind = iota
	Size
	Element
)

func (k SegmentKind) String() string {
	switch k {
	case Field:
		return "field"
	case Size:
		return "size"
	case Element:
		return "element"
	default:
		return fmt.Sprintf("segment(%d)", int(k))
	}
}

// Segment is one dot separated component of a path.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

func (s Segment) String() string {
	switch s.Kind {
	case Size:
		return schema.SizeName
	case Element:
		return schema.DataName + "[" + strconv.Itoa(s.Index) + "]"
	default:
		return s.Name
	}
}

// Parse splits a path into segments. The empty path has no segments and
// addresses the root.
func Parse(p string) ([]Segment, error) {
	if p == "" {
		return nil, nil
	}
	parts := strings.Split(p, ".")
	res := make([]Segment, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnresolved, p, err)
		}
		res = append(res, seg)
	}
	return res, nil
}

func parseSegment(s string) (Segment, error) {
	switch {
	case s == "":
		return Segment{}, errors.New("empty segment")
	case s == schema.SizeName:
		return Segment{Kind: Size, Name: s}, nil
	case strings.HasPrefix(s, schema.DataName+"["):
		is, ok := strings.CutSuffix(s[len(schema.DataName)+1:], "]")
		if !ok {
			return Segment{}, fmt.Errorf("expected %s[<index>], got %q", schema.DataName, s)
		}
		u, err := strconv.ParseUint(is, 10, 31)
		if err != nil {
			return Segment{}, fmt.Errorf("bad index in %q: %w", s, err)
		}
		return Segment{Kind: Element, Name: schema.DataName, Index: int(u)}, nil
	case strings.ContainsAny(s, "[]"):
		return Segment{}, fmt.Errorf("unexpected bracket in %q", s)
	}
	return Segment{Kind: Field, Name: s}, nil
}

// Join is the inverse of Parse.
func Join(segs []Segment) string {
	buf := bytes.NewBuffer(nil)
	for i, s := range segs {
		if i > 0 {
			buf.WriteByte('.')
		}
		buf.WriteString(s.String())
	}
	return buf.String()
}

// IsSize reports whether p addresses an array's size.
func IsSize(p string) bool {
	return p == schema.SizeName || strings.HasSuffix(p, "."+schema.SizeName)
}
