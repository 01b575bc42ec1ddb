package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff"
	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/jsonview"
	"github.com/signadot/instdiff/override"
	"github.com/signadot/instdiff/report"
	"github.com/signadot/instdiff/schema"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 arguments, a baseline and a target buffer", cli.ErrUsage)
	}
	if cfg.Report && cfg.Merge {
		return fmt.Errorf("%w: -report and -merge are exclusive", cli.ErrUsage)
	}
	t, err := cfg.schema()
	if err != nil {
		return err
	}
	a, err := readFile(cc, args[0])
	if err != nil {
		return err
	}
	b, err := readFile(cc, args[1])
	if err != nil {
		return err
	}
	if cfg.Merge {
		p, err := jsonview.MergePatch(t, a, b)
		if err != nil {
			return fmt.Errorf("error computing merge patch: %w", err)
		}
		_, err = fmt.Fprintf(cc.Out, "%s\n", p)
		return err
	}
	opts, err := cfg.diffOpts()
	if err != nil {
		return err
	}
	recs, err := instdiff.Diff(t, a, b, opts...)
	if err != nil {
		return fmt.Errorf("error diffing %s and %s: %w", args[0], args[1], err)
	}
	theLog.Info("diff", "records", len(recs))
	return writeRecords(cfg.MainConfig, cc, t, a, recs, cfg.Report)
}

func (cfg *DiffConfig) diffOpts() ([]instdiff.DiffOpt, error) {
	var opts []instdiff.DiffOpt
	if cfg.Owner != "" {
		id, err := parseID(cfg.Owner)
		if err != nil {
			return nil, err
		}
		opts = append(opts, instdiff.DiffOwner(id))
	}
	if cfg.Remap != "" {
		m, err := readRemap(cfg.Remap)
		if err != nil {
			return nil, err
		}
		opts = append(opts, instdiff.DiffRemap(func(id codec.ObjectID) codec.ObjectID {
			if to, ok := m[id]; ok {
				return to
			}
			return id
		}))
	}
	return opts, nil
}

// readRemap reads a yaml mapping of baseline ids to target ids.
func readRemap(path string) (map[codec.ObjectID]codec.ObjectID, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := map[codec.ObjectID]codec.ObjectID{}
	if err := yaml.Unmarshal(d, &m); err != nil {
		return nil, fmt.Errorf("could not decode remap %s: %w", path, err)
	}
	return m, nil
}

func writeRecords(cfg *MainConfig, cc *cli.Context, t *schema.Tree, baseline []byte, recs []override.Record, asReport bool) error {
	if asReport {
		opts := append(cfg.reportOpts(cc.Out), report.WithOwner(true))
		return report.Write(cc.Out, t, baseline, recs, opts...)
	}
	return override.WriteYAML(cc.Out, recs)
}
