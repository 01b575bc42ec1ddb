package schema

import "errors"

var ErrInvalidSchema = errors.New("invalid schema")
