// Package instdiff computes and applies per-instance overrides of
// serialized objects.
//
// Two buffers laid out by the same [schema.Tree] are compared leaf by leaf
// with [Diff], giving a list of [override.Record] values, each a field path
// and the target's value there. [Apply] replays such a list against any
// buffer with the same layout, resizing arrays and strings in place.
//
//	recs, err := instdiff.Diff(tree, template, instance)
//	...
//	buf := layout.Buffer(slices.Clone(template))
//	ok, err := instdiff.Apply(tree, &buf, recs)
//
// Records address data by path, never by byte offset, so they stay valid
// when unrelated variable length data changes size.
package instdiff
