package instdiff

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/debug"
	"github.com/signadot/instdiff/fieldpath"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/override"
	"github.com/signadot/instdiff/schema"
)

type ApplyConfig struct {
	Fill layout.Fill
}

type ApplyOpt func(*ApplyConfig)

// ApplyFill sets how arrays that grow are filled. The default is
// layout.FillZero, which is what Diff assumes.
func ApplyFill(f layout.Fill) ApplyOpt {
	return func(c *ApplyConfig) { c.Fill = f }
}

// Apply applies recs to buf. The records are applied in override.Sort
// order, so sizes are set before the elements they govern, but recs itself
// is left as is.
//
// Each record is applied independently and a record that fails leaves buf
// untouched. The returned flags report success in the order of recs, and
// the error joins the failures, each prefixed with its record's path.
func Apply(t *schema.Tree, buf *layout.Buffer, recs []override.Record, opts ...ApplyOpt) ([]bool, error) {
	cfg := &ApplyConfig{}
	for _, o := range opts {
		o(cfg)
	}
	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return override.Compare(recs[i], recs[j])
	})
	ok := make([]bool, len(recs))
	var errs []error
	for _, i := range order {
		r := &recs[i]
		if err := applyRecord(t, buf, r, cfg); err != nil {
			if debug.Patch() {
				debug.Logf("patch %s: %v\n", r, err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, err))
			continue
		}
		if debug.Patch() {
			debug.Logf("patch %s\n", r)
		}
		ok[i] = true
	}
	return ok, errors.Join(errs...)
}

func applyRecord(t *schema.Tree, buf *layout.Buffer, r *override.Record, cfg *ApplyConfig) error {
	loc, err := fieldpath.Resolve(t, *buf, r.Path)
	if err != nil {
		return err
	}
	if loc.IsSize() {
		n, err := strconv.ParseUint(r.Value, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: size %q: %w", codec.ErrBadValue, r.Value, err)
		}
		return layout.Resize(t, buf, loc.Array, loc.ArrayOffset, int(n), cfg.Fill)
	}
	n := t.Node(loc.Node)
	switch n.Kind {
	case schema.String:
		return layout.ReplaceString(t, buf, loc.Node, loc.Offset, []byte(r.Value))
	case schema.Scalar, schema.Ref:
		enc, err := codec.Encode(t, loc.Node, r.CodecValue())
		if err != nil {
			return err
		}
		return overwrite(*buf, loc.Offset, enc)
	default:
		return fmt.Errorf("%w: %s is a %s, not a leaf", codec.ErrUnsupportedType, t.Path(loc.Node), n.Kind)
	}
}

func overwrite(buf []byte, off int, enc []byte) error {
	if off < 0 || off+len(enc) > len(buf) {
		return fmt.Errorf("%w: write of %d bytes at %d in a buffer of %d", layout.ErrOutOfBounds, len(enc), off, len(buf))
	}
	copy(buf[off:], enc)
	return nil
}

// Refresh re-reads the value at rec's path in buf and stores it in rec if
// it differs, reporting whether rec changed.
func Refresh(t *schema.Tree, buf []byte, rec *override.Record) (bool, error) {
	v, err := Get(t, buf, rec.Path)
	if err != nil {
		return false, err
	}
	if v.Equal(rec.CodecValue()) {
		return false, nil
	}
	rec.Set(v)
	return true, nil
}

// Get decodes the leaf or array size at path.
func Get(t *schema.Tree, buf []byte, path string) (codec.Value, error) {
	loc, err := fieldpath.Resolve(t, buf, path)
	if err != nil {
		return codec.Value{}, err
	}
	if loc.IsSize() {
		n, err := layout.ReadCount(buf, loc.ArrayOffset)
		if err != nil {
			return codec.Value{}, fmt.Errorf("%q: %w", path, err)
		}
		return codec.Value{Text: strconv.Itoa(n)}, nil
	}
	return codec.Decode(t, loc.Node, buf, loc.Offset)
}
