package override

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter selects records with a boolean expression. Expressions see the
// variables path, value, ref, owner (0 when unset) and size, and the
// function under(prefix), true when path is prefix or lies beneath it.
//
//	size || under("items.data[0]")
//	ref != 0 && owner == 7
type Filter struct {
	src string
	prg *vm.Program
}

func filterEnv(r Record) map[string]any {
	env := map[string]any{
		"path":  r.Path,
		"value": r.Value,
		"ref":   uint64(0),
		"owner": uint64(0),
		"size":  r.IsSize(),
		"under": func(prefix string) bool {
			return under(r.Path, prefix)
		},
	}
	if r.Ref != nil {
		env["ref"] = uint64(*r.Ref)
	}
	if r.Owner != nil {
		env["owner"] = uint64(*r.Owner)
	}
	return env
}

func filterOpts() []expr.Option {
	return []expr.Option{
		expr.Env(filterEnv(Record{})),
		expr.AsBool(),
	}
}

func under(path, prefix string) bool {
	if prefix == "" || path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix) && path[len(prefix)] == '.'
}

// Compile parses a filter expression.
func Compile(src string) (*Filter, error) {
	f := &Filter{src: src}
	prg, err := expr.Compile(src, filterOpts()...)
	if err != nil {
		return nil, fmt.Errorf("error compiling filter %q: %w", src, err)
	}
	f.prg = prg
	return f, nil
}

func (f *Filter) String() string { return f.src }

// Match evaluates the filter for r.
func (f *Filter) Match(r Record) (bool, error) {
	env := filterEnv(r)
	res, err := expr.Run(f.prg, env)
	if err != nil {
		return false, fmt.Errorf("error evaluating filter %q on %s: %w", f.src, r.Path, err)
	}
	b, _ := res.(bool)
	return b, nil
}

// Select returns the records of recs that match.
func (f *Filter) Select(recs []Record) ([]Record, error) {
	var res []Record
	for _, r := range recs {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, r)
		}
	}
	return res, nil
}
