package jsonview

import (
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/schema"
)

// MergePatch returns the RFC 7386 merge patch taking the JSON view of
// baseline to that of target.
func MergePatch(t *schema.Tree, baseline, target []byte) ([]byte, error) {
	a, err := Marshal(t, baseline)
	if err != nil {
		return nil, err
	}
	b, err := Marshal(t, target)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(a, b)
}

// ApplyMergePatch applies an RFC 7386 merge patch to the JSON view of buf
// and packs the result.
func ApplyMergePatch(t *schema.Tree, buf []byte, patch []byte) (layout.Buffer, error) {
	doc, err := Marshal(t, buf)
	if err != nil {
		return nil, err
	}
	out, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, err
	}
	return Pack(t, out)
}

// Equal reports whether two buffers have equal JSON views.
func Equal(t *schema.Tree, a, b []byte) (bool, error) {
	ja, err := Marshal(t, a)
	if err != nil {
		return false, err
	}
	jb, err := Marshal(t, b)
	if err != nil {
		return false, err
	}
	return jsonpatch.Equal(ja, jb), nil
}
