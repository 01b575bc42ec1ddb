package schema

import "fmt"

type Kind uint8

const (
	InvalidKind Kind = iota
	Scalar
	String
	Array
	Ref
	Composite
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case String:
		return "string"
	case Array:
		return "array"
	case Ref:
		return "ref"
	case Composite:
		return "composite"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ScalarType refines a Scalar node.
type ScalarType uint8

const (
	NoScalar ScalarType = iota
	Int
	Uint
	Float
	Bool
	Char
	// Opaque scalars are walked by width but have no text form.
	Opaque
)

func (s ScalarType) String() string {
	switch s {
	case NoScalar:
		return ""
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Opaque:
		return "opaque"
	default:
		return fmt.Sprintf("scalar(%d)", uint8(s))
	}
}

type kindSpec struct {
	kind   Kind
	scalar ScalarType
	width  int
}

var kindNames = map[string]kindSpec{
	"int8":      {Scalar, Int, 1},
	"int16":     {Scalar, Int, 2},
	"int32":     {Scalar, Int, 4},
	"int64":     {Scalar, Int, 8},
	"uint8":     {Scalar, Uint, 1},
	"uint16":    {Scalar, Uint, 2},
	"uint32":    {Scalar, Uint, 4},
	"uint64":    {Scalar, Uint, 8},
	"float32":   {Scalar, Float, 4},
	"float64":   {Scalar, Float, 8},
	"bool":      {Scalar, Bool, 1},
	"char":      {Scalar, Char, 1},
	"int":       {Scalar, Int, 0},
	"uint":      {Scalar, Uint, 0},
	"float":     {Scalar, Float, 0},
	"opaque":    {Scalar, Opaque, 0},
	"string":    {String, NoScalar, 0},
	"array":     {Array, NoScalar, 0},
	"ref":       {Ref, NoScalar, 8},
	"composite": {Composite, NoScalar, 0},
	"struct":    {Composite, NoScalar, 0},
}
