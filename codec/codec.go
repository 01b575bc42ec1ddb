// Package codec converts leaf values between their buffer encoding and
// canonical text.
//
// Integers are written in decimal, floats in the shortest form that parses
// back to the same bits, strings verbatim and references as an [ObjectID]
// rather than text.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrBadValue        = errors.New("bad value")
)

// ObjectID identifies a referenced object. Zero is the null reference.
type ObjectID uint64

func (id ObjectID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Value is a decoded leaf. Reference leaves set Ref and leave Text empty.
type Value struct {
	Text string
	Ref  *ObjectID
}

func RefValue(id ObjectID) Value { return Value{Ref: &id} }

func (v Value) Equal(o Value) bool {
	if v.Text != o.Text || (v.Ref == nil) != (o.Ref == nil) {
		return false
	}
	return v.Ref == nil || *v.Ref == *o.Ref
}

func (v Value) String() string {
	if v.Ref != nil {
		return "&" + v.Ref.String()
	}
	return v.Text
}

// Span returns the encoded bytes of the leaf id at off: the full width of
// a scalar or reference, or a string's length prefix and contents.
func Span(t *schema.Tree, id schema.NodeID, buf []byte, off int) ([]byte, error) {
	n := t.Node(id)
	switch n.Kind {
	case schema.Scalar, schema.Ref:
		if off < 0 || off+n.Width > len(buf) {
			return nil, fmt.Errorf("%s: %w: %d bytes at %d in a buffer of %d", t.Path(id), layout.ErrOutOfBounds, n.Width, off, len(buf))
		}
		return buf[off : off+n.Width], nil
	case schema.String:
		l, err := layout.ReadCount(buf, off)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Path(id), err)
		}
		end := off + schema.CountWidth + l
		if end > len(buf) {
			return nil, fmt.Errorf("%s: %w: string of %d bytes at %d in a buffer of %d", t.Path(id), layout.ErrOutOfBounds, l, off, len(buf))
		}
		return buf[off:end], nil
	default:
		return nil, fmt.Errorf("%w: %s is a %s", ErrUnsupportedType, t.Path(id), n.Kind)
	}
}

// Decode reads the leaf id at off.
func Decode(t *schema.Tree, id schema.NodeID, buf []byte, off int) (Value, error) {
	n := t.Node(id)
	if err := supported(t, id); err != nil {
		return Value{}, err
	}
	span, err := Span(t, id, buf, off)
	if err != nil {
		return Value{}, err
	}
	switch n.Kind {
	case schema.String:
		return Value{Text: string(span[schema.CountWidth:])}, nil
	case schema.Ref:
		return RefValue(ObjectID(readUint(span))), nil
	}
	switch n.Scalar {
	case schema.Int:
		return Value{Text: strconv.FormatInt(readInt(span), 10)}, nil
	case schema.Uint:
		return Value{Text: strconv.FormatUint(readUint(span), 10)}, nil
	case schema.Float:
		return Value{Text: FormatFloat(readUint(span), n.Width)}, nil
	case schema.Bool:
		switch span[0] {
		case 0:
			return Value{Text: "false"}, nil
		case 1:
			return Value{Text: "true"}, nil
		default:
			return Value{Text: strconv.Itoa(int(span[0]))}, nil
		}
	case schema.Char:
		return Value{Text: formatChar(span[0])}, nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t.Path(id))
}

// Encode returns the encoding of v for the leaf id. Strings are returned
// with their length prefix and without padding.
func Encode(t *schema.Tree, id schema.NodeID, v Value) ([]byte, error) {
	n := t.Node(id)
	if err := supported(t, id); err != nil {
		return nil, err
	}
	switch n.Kind {
	case schema.String:
		out := binary.LittleEndian.AppendUint32(make([]byte, 0, schema.CountWidth+len(v.Text)), uint32(len(v.Text)))
		return append(out, v.Text...), nil
	case schema.Ref:
		ref, err := refOf(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Path(id), err)
		}
		if n.Width == 4 && ref > 0xffffffff {
			return nil, fmt.Errorf("%w: %s: reference %d does not fit in 4 bytes", ErrBadValue, t.Path(id), ref)
		}
		return putUint(uint64(ref), n.Width), nil
	}
	var (
		bits uint64
		err  error
	)
	switch n.Scalar {
	case schema.Int:
		var i int64
		i, err = strconv.ParseInt(v.Text, 10, n.Width*8)
		bits = uint64(i)
	case schema.Uint:
		bits, err = strconv.ParseUint(v.Text, 10, n.Width*8)
	case schema.Float:
		bits, err = ParseFloat(v.Text, n.Width)
	case schema.Bool:
		switch v.Text {
		case "true":
			bits = 1
		case "false":
			bits = 0
		default:
			bits, err = strconv.ParseUint(v.Text, 10, 8)
		}
	case schema.Char:
		var c byte
		c, err = parseChar(v.Text)
		bits = uint64(c)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t.Path(id))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %q: %w", ErrBadValue, t.Path(id), v.Text, err)
	}
	return putUint(bits, n.Width), nil
}

// supported reports ErrUnsupportedType for leaves without a text form.
func supported(t *schema.Tree, id schema.NodeID) error {
	n := t.Node(id)
	ok := false
	switch n.Kind {
	case schema.String:
		ok = true
	case schema.Ref:
		ok = n.Width == 4 || n.Width == 8
	case schema.Scalar:
		switch n.Scalar {
		case schema.Int, schema.Uint:
			ok = n.Width == 1 || n.Width == 2 || n.Width == 4 || n.Width == 8
		case schema.Float:
			ok = n.Width == 4 || n.Width == 8
		case schema.Bool, schema.Char:
			ok = n.Width == 1
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s is %s", ErrUnsupportedType, t.Path(id), n.TypeString())
	}
	return nil
}

func refOf(v Value) (ObjectID, error) {
	if v.Ref != nil {
		return *v.Ref, nil
	}
	if v.Text == "" {
		return 0, nil
	}
	u, err := strconv.ParseUint(v.Text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: reference %q: %w", ErrBadValue, v.Text, err)
	}
	return ObjectID(u), nil
}

func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func readInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}

func putUint(v uint64, width int) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out[:width]
}

func formatChar(c byte) string {
	switch {
	case c == '\\':
		return `\\`
	case c >= 0x20 && c < 0x7f:
		return string(rune(c))
	default:
		return fmt.Sprintf(`\x%02x`, c)
	}
}

func parseChar(s string) (byte, error) {
	switch {
	case len(s) == 1 && s[0] != '\\':
		return s[0], nil
	case s == `\\`:
		return '\\', nil
	case len(s) == 4 && s[:2] == `\x`:
		u, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, err
		}
		return byte(u), nil
	}
	return 0, fmt.Errorf("not a single character")
}
