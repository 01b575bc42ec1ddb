package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/signadot/instdiff/schema"
)

// Buffer is a caller owned serialized object.
type Buffer []byte

func (b Buffer) Bytes() []byte { return []byte(b) }

func (b Buffer) Clone() Buffer { return slices.Clone(b) }

// Splice replaces the del bytes at offset at with ins. Nothing is changed
// if the range is not inside the buffer.
func (b *Buffer) Splice(at, del int, ins []byte) error {
	s := *b
	if at < 0 || del < 0 || at+del > len(s) {
		return fmt.Errorf("%w: splice of [%d, %d) in a buffer of %d", ErrOutOfBounds, at, at+del, len(s))
	}
	*b = slices.Replace(s, at, at+del, ins...)
	return nil
}

// Align rounds cur up to the next multiple of 4.
func Align(cur int) int {
	return (cur + 3) &^ 3
}

// ReadCount reads a string length or array size prefix.
func ReadCount(buf []byte, off int) (int, error) {
	if err := need(buf, off, schema.CountWidth); err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(buf[off:])), nil
}

func WriteCount(buf []byte, off, n int) error {
	if err := need(buf, off, schema.CountWidth); err != nil {
		return err
	}
	if n < 0 || n > math.MaxUint32 {
		return fmt.Errorf("%w: count %d", ErrOutOfBounds, n)
	}
	binary.LittleEndian.PutUint32(buf[off:], uint32(n))
	return nil
}

func appendCount(b []byte, n int) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(n))
}
