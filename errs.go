package instdiff

import (
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/fieldpath"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

var (
	ErrOutOfBounds     = layout.ErrOutOfBounds
	ErrUnresolvedPath  = fieldpath.ErrUnresolved
	ErrUnsupportedType = codec.ErrUnsupportedType
	ErrInvalidSchema   = schema.ErrInvalidSchema
	ErrBadValue        = codec.ErrBadValue
	ErrKind            = layout.ErrKind
)
