package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"

	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/report"
)

type MainConfig struct {
	SchemaFile string `cli:"name=s aliases=schema desc='schema file (yaml)'"`
	Color      bool   `cli:"name=color desc='color reports'"`
	Verbose    bool   `cli:"name=v desc='log progress to stderr'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) reportOpts(w io.Writer) []report.Opt {
	if cfg.Color {
		return []report.Opt{report.WithColors(report.NewColors())}
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return []report.Opt{report.WithColors(report.NewColors())}
	}
	return nil
}

type DiffConfig struct {
	*MainConfig
	Report bool   `cli:"name=report desc='print a readable report instead of records'"`
	Merge  bool   `cli:"name=merge desc='print a json merge patch instead of records'"`
	Owner  string `cli:"name=owner desc='object id to record as the owner of each record'"`
	Remap  string `cli:"name=remap desc='yaml file mapping baseline object ids to target ids'"`

	Diff *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Where  string `cli:"name=where desc='expression selecting records to apply'"`
	Fill   string `cli:"name=fill desc='how to fill grown arrays: zero or clone-last'"`
	Latest bool   `cli:"name=latest desc='apply only the last record for each path'"`
	Merge  bool   `cli:"name=merge desc='the patch is a json merge patch of the buffer json view'"`

	Patch *cli.Command
}

func (cfg *PatchConfig) fill() (layout.Fill, error) {
	switch strings.ToLower(cfg.Fill) {
	case "", "zero":
		return layout.FillZero, nil
	case "clone-last", "last":
		return layout.FillCloneLast, nil
	}
	return 0, fmt.Errorf("%w: unknown fill %q", cli.ErrUsage, cfg.Fill)
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type ViewConfig struct {
	*MainConfig
	Compact bool `cli:"name=c desc='print compact json'"`

	View *cli.Command
}

type PackConfig struct {
	*MainConfig

	Pack *cli.Command
}

type MaskConfig struct {
	*MainConfig
	Owner string `cli:"name=owner desc='object id to record as the owner of each record'"`

	Mask *cli.Command
}

type SchemaConfig struct {
	*MainConfig
	Paths bool `cli:"name=paths desc='list leaf field paths instead of the tree'"`

	Cmd *cli.Command
}
