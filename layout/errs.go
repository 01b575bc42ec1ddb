package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds reports a cursor, splice or array index past the end of
	// a buffer or array. It is also how incompatible schemas show up.
	ErrOutOfBounds = errors.New("out of bounds")
	ErrKind        = errors.New("wrong node kind")
)

func need(buf []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(buf) {
		return fmt.Errorf("%w: %d bytes at offset %d in a buffer of %d", ErrOutOfBounds, n, off, len(buf))
	}
	return nil
}
