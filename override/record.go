// Package override holds override records: the sparse (path, value) form
// of the differences between two buffers.
package override

import (
	"fmt"
	"slices"

	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/fieldpath"
)

// Record says that the leaf at Path has Value, or refers to Ref when the
// leaf is a reference. Owner optionally names the object the record
// belongs to.
type Record struct {
	Path  string          `json:"path"`
	Value string          `json:"value,omitempty"`
	Ref   *codec.ObjectID `json:"ref,omitempty"`
	Owner *codec.ObjectID `json:"owner,omitempty"`
}

// New returns a record for path carrying v.
func New(path string, v codec.Value) Record {
	r := Record{Path: path}
	r.Set(v)
	return r
}

func (r Record) CodecValue() codec.Value {
	return codec.Value{Text: r.Value, Ref: r.Ref}
}

// Set replaces the record's value and reference with v.
func (r *Record) Set(v codec.Value) {
	r.Value = v.Text
	r.Ref = nil
	if v.Ref != nil {
		id := *v.Ref
		r.Ref = &id
	}
}

// IsSize reports whether the record resizes an array.
func (r Record) IsSize() bool { return fieldpath.IsSize(r.Path) }

// Duplicates reports whether r and o have the same path, value and
// reference. Owners are not compared.
func (r Record) Duplicates(o Record) bool {
	return r.Path == o.Path && r.CodecValue().Equal(o.CodecValue())
}

func (r Record) String() string {
	return fmt.Sprintf("%s=%s", r.Path, r.CodecValue())
}

// Sort orders records so that array sizes are set before their elements
// are addressed: size records first, then shorter paths first. The sort is
// stable.
func Sort(recs []Record) {
	slices.SortStableFunc(recs, Compare)
}

// Compare is the ordering used by Sort.
func Compare(a, b Record) int {
	as, bs := a.IsSize(), b.IsSize()
	switch {
	case as && !bs:
		return -1
	case !as && bs:
		return 1
	}
	return len(a.Path) - len(b.Path)
}

// Dedup returns recs without the records that duplicate an earlier one.
func Dedup(recs []Record) []Record {
	res := make([]Record, 0, len(recs))
	for _, r := range recs {
		if slices.ContainsFunc(res, r.Duplicates) {
			continue
		}
		res = append(res, r)
	}
	return res
}

// Latest keeps only the last record for each path, in the position of
// that last record.
func Latest(recs []Record) []Record {
	last := make(map[string]int, len(recs))
	for i, r := range recs {
		last[r.Path] = i
	}
	res := make([]Record, 0, len(last))
	for i, r := range recs {
		if last[r.Path] == i {
			res = append(res, r)
		}
	}
	return res
}
