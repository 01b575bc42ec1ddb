// Package layout walks and edits serialized buffers described by a
// [schema.Tree].
//
// A buffer holds one object's state starting at offset 0. Integers and
// floats are little endian. Strings and arrays carry a 4 byte count prefix.
// After a node whose schema Align flag is set, the cursor is rounded up to a
// multiple of 4 measured from the start of the buffer; padding bytes are
// written as zero.
//
// [Walk] measures nodes without touching the buffer. [Resize], [Duplicate],
// [Delete] and [ReplaceString] change the length of variable length regions
// in place, splicing only the bytes that change. When a splice would shift
// the rest of the buffer by an amount that is not a multiple of 4, the
// buffer is re-laid out with [Relayout] so that every following pad stays
// correct.
package layout
