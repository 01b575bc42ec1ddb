package fieldpath

import (
	"strconv"

	"github.com/signadot/instdiff/schema"
)

// Builder assembles a path with stack discipline while a schema is being
// walked. The zero value is an empty path.
type Builder struct {
	buf   []byte
	marks []int
}

func (b *Builder) mark() {
	b.marks = append(b.marks, len(b.buf))
	if len(b.buf) != 0 {
		b.buf = append(b.buf, '.')
	}
}

func (b *Builder) PushField(name string) {
	b.mark()
	b.buf = append(b.buf, name...)
}

func (b *Builder) PushSize() {
	b.PushField(schema.SizeName)
}

// PushIndex pushes the element segment data[i]. The preceding segment
// should name an array.
func (b *Builder) PushIndex(i int) {
	b.mark()
	b.buf = append(b.buf, schema.DataName...)
	b.buf = append(b.buf, '[')
	b.buf = strconv.AppendInt(b.buf, int64(i), 10)
	b.buf = append(b.buf, ']')
}

// Pop removes the last pushed segment. It is a no-op on an empty path.
func (b *Builder) Pop() {
	n := len(b.marks) - 1
	if n < 0 {
		return
	}
	b.buf = b.buf[:b.marks[n]]
	b.marks = b.marks[:n]
}

// Depth is the number of segments.
func (b *Builder) Depth() int { return len(b.marks) }

func (b *Builder) String() string { return string(b.buf) }
