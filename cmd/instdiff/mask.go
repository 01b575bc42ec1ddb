package main

import (
	"fmt"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff"
	"github.com/signadot/instdiff/schema"
)

func mask(cfg *MaskConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Mask.Parse(cc, args)
	if err != nil {
		cfg.Mask.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: mask requires a buffer and at least one node index", cli.ErrUsage)
	}
	t, err := cfg.schema()
	if err != nil {
		return err
	}
	changed, err := parseMask(t, args[1:])
	if err != nil {
		return err
	}
	d, err := readFile(cc, args[0])
	if err != nil {
		return err
	}
	var opts []instdiff.DiffOpt
	if cfg.Owner != "" {
		id, err := parseID(cfg.Owner)
		if err != nil {
			return err
		}
		opts = append(opts, instdiff.DiffOwner(id))
	}
	recs, err := instdiff.DiffMask(t, d, changed, opts...)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[0], err)
	}
	return writeRecords(cfg.MainConfig, cc, t, nil, recs, false)
}

// parseMask sets the bit of each schema node index in args.
func parseMask(t *schema.Tree, args []string) (*bitset.BitSet, error) {
	changed := bitset.New(uint(t.Len()))
	for _, a := range args {
		i, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid node index %q", cli.ErrUsage, a)
		}
		if _, ok := t.ByIndex(i); !ok {
			return nil, fmt.Errorf("%w: no schema node has index %d", cli.ErrUsage, i)
		}
		changed.Set(uint(i))
	}
	return changed, nil
}
