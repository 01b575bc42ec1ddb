// Package report writes override records for people to read.
package report

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/signadot/instdiff"
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/fieldpath"
	"github.com/signadot/instdiff/override"
	"github.com/signadot/instdiff/schema"
)

type ColorAttr int

const (
	PathColor ColorAttr = iota
	OldColor
	NewColor
	SepColor
	InsertColor
	DeleteColor
	OwnerColor
)

type Colors struct {
	Map map[ColorAttr]func(string, ...any) string
}

func NewColors() *Colors {
	return &Colors{Map: map[ColorAttr]func(string, ...any) string{
		PathColor:   color.RGB(128, 168, 196).SprintfFunc(),
		OldColor:    color.RGB(196, 96, 16).SprintfFunc(),
		NewColor:    color.RGB(8, 196, 16).SprintfFunc(),
		SepColor:    color.RGB(96, 96, 96).SprintfFunc(),
		InsertColor: color.New(color.FgGreen, color.Underline).SprintfFunc(),
		DeleteColor: color.New(color.FgRed, color.CrossedOut).SprintfFunc(),
		OwnerColor:  color.BlueString,
	}}
}

func (c *Colors) paint(a ColorAttr, s string) string {
	if c == nil {
		return s
	}
	f := c.Map[a]
	if f == nil {
		return s
	}
	return f("%s", s)
}

type Config struct {
	Colors *Colors
	Owner  bool
}

type Opt func(*Config)

// WithColors colors the output. Without it, string edits are marked up as
// [-deleted-]{+inserted+}.
func WithColors(c *Colors) Opt {
	return func(cfg *Config) { cfg.Colors = c }
}

// WithOwner shows record owners.
func WithOwner(v bool) Opt {
	return func(cfg *Config) { cfg.Owner = v }
}

// Write prints one line per record, giving the value at the record's path
// in baseline and the record's value:
//
//	hp: 100 -> 7
//	name: "b[-ob-]{+ill+}"
//	items.data[1].target: (none) -> &42
//
// A nil baseline shows only the new values.
func Write(w io.Writer, t *schema.Tree, baseline []byte, recs []override.Record, opts ...Opt) error {
	cfg := &Config{}
	for _, o := range opts {
		o(cfg)
	}
	bw := bufio.NewWriter(w)
	for i := range recs {
		if err := writeRecord(bw, t, baseline, &recs[i], cfg); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, t *schema.Tree, baseline []byte, r *override.Record, cfg *Config) error {
	c := cfg.Colors
	w.WriteString(c.paint(PathColor, r.Path))
	w.WriteString(c.paint(SepColor, ":"))
	w.WriteByte(' ')
	id, err := fieldpath.Lookup(t, r.Path)
	isStr := err == nil && t.Node(id).Kind == schema.String
	format := func(v codec.Value) string {
		switch {
		case v.Ref != nil:
			return v.String()
		case isStr:
			return strconv.Quote(v.Text)
		}
		return v.Text
	}
	nv := r.CodecValue()
	if err != nil {
		w.WriteString(c.paint(OldColor, "(unresolved)"))
	} else if baseline != nil {
		old, err := instdiff.Get(t, baseline, r.Path)
		switch {
		case errors.Is(err, instdiff.ErrUnresolvedPath):
			w.WriteString(c.paint(OldColor, "(none)"))
		case err != nil:
			return err
		case isStr && nv.Ref == nil:
			w.WriteString(`"` + stringDiff(c, old.Text, nv.Text) + `"`)
			return endRecord(w, r, cfg)
		default:
			w.WriteString(c.paint(OldColor, format(old)))
		}
	}
	if err != nil || baseline != nil {
		w.WriteString(c.paint(SepColor, " -> "))
	}
	w.WriteString(c.paint(NewColor, format(nv)))
	return endRecord(w, r, cfg)
}

func endRecord(w *bufio.Writer, r *override.Record, cfg *Config) error {
	if cfg.Owner && r.Owner != nil {
		w.WriteString(cfg.Colors.paint(OwnerColor, " (owner "+r.Owner.String()+")"))
	}
	return w.WriteByte('\n')
}

func quoted(s string) string {
	q := strconv.Quote(s)
	return q[1 : len(q)-1]
}

// stringDiff marks the edits taking from to to.
func stringDiff(c *Colors, from, to string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffEqual:
			sb.WriteString(quoted(d.Text))
		case diffpatch.DiffDelete:
			if c == nil {
				sb.WriteString("[-" + quoted(d.Text) + "-]")
			} else {
				sb.WriteString(c.paint(DeleteColor, quoted(d.Text)))
			}
		case diffpatch.DiffInsert:
			if c == nil {
				sb.WriteString("{+" + quoted(d.Text) + "+}")
			} else {
				sb.WriteString(c.paint(InsertColor, quoted(d.Text)))
			}
		}
	}
	return sb.String()
}
