// Package schema describes the byte layout of serialized objects.
//
// A [Tree] is an immutable arena of [Node]s. Each node is a fixed-width
// scalar, a length-prefixed string, an array, an object reference or a
// composite of named children. Nodes refer to their parent and children by
// [NodeID], so upward navigation is O(1) without a pointer cycle.
//
// Trees are compiled from a [Def], which is either written in Go
//
//	t, err := schema.Build(schema.Struct("unit",
//		schema.Field("hp", "int32"),
//		schema.Str("name").Aligned(),
//		schema.List("targets", schema.Reference("target")).Aligned(),
//	))
//
// or loaded from YAML with [Load]:
//
//	name: unit
//	kind: composite
//	fields:
//	- {name: hp, kind: int32}
//	- {name: name, kind: string, align: true}
//	- name: targets
//	  kind: array
//	  align: true
//	  elem: {name: target, kind: ref}
//
// An array node always has exactly two children: the 4 byte "size" scalar
// and the "data" element type.
package schema
