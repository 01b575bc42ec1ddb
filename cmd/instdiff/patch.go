package main

import (
	"bytes"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff"
	"github.com/signadot/instdiff/jsonview"
	"github.com/signadot/instdiff/layout"
	"github.com/signadot/instdiff/override"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires 2 arguments, a record file and a buffer to which to apply it", cli.ErrUsage)
	}
	if cfg.Merge {
		return mergePatch(cfg, cc, args)
	}
	fill, err := cfg.fill()
	if err != nil {
		return err
	}
	t, err := cfg.schema()
	if err != nil {
		return err
	}
	recs, err := readRecords(cc, args[0])
	if err != nil {
		return err
	}
	if cfg.Latest {
		recs = override.Latest(recs)
	}
	if cfg.Where != "" {
		f, err := override.Compile(cfg.Where)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		recs, err = f.Select(recs)
		if err != nil {
			return err
		}
	}
	d, err := readFile(cc, args[1])
	if err != nil {
		return err
	}
	buf := layout.Buffer(d)
	ok, applyErr := instdiff.Apply(t, &buf, recs, instdiff.ApplyFill(fill))
	n := 0
	for i := range ok {
		if ok[i] {
			n++
			continue
		}
		theLog.Warn("record not applied", "record", recs[i].String())
	}
	theLog.Info("patch", "records", len(recs), "applied", n)
	if err := writeBuffer(cc, buf.Bytes()); err != nil {
		return err
	}
	if applyErr != nil {
		return fmt.Errorf("error patching %s: %w", args[1], applyErr)
	}
	return nil
}

func readRecords(cc *cli.Context, path string) ([]override.Record, error) {
	d, err := readFile(cc, path)
	if err != nil {
		return nil, err
	}
	recs, err := override.ReadYAML(bytes.NewReader(d))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return recs, nil
}

func mergePatch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	if cfg.Where != "" || cfg.Latest || cfg.Fill != "" {
		return fmt.Errorf("%w: -merge does not take -where, -latest or -fill", cli.ErrUsage)
	}
	t, err := cfg.schema()
	if err != nil {
		return err
	}
	p, err := readFile(cc, args[0])
	if err != nil {
		return err
	}
	d, err := readFile(cc, args[1])
	if err != nil {
		return err
	}
	buf, err := jsonview.ApplyMergePatch(t, d, p)
	if err != nil {
		return fmt.Errorf("error patching %s: %w", args[1], err)
	}
	return writeBuffer(cc, buf.Bytes())
}
