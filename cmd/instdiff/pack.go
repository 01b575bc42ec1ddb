package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff/jsonview"
)

func pack(cfg *PackConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Pack.Parse(cc, args)
	if err != nil {
		cfg.Pack.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: pack takes at most one json file", cli.ErrUsage)
	}
	src := "-"
	if len(args) == 1 {
		src = args[0]
	}
	t, err := cfg.schema()
	if err != nil {
		return err
	}
	d, err := readFile(cc, src)
	if err != nil {
		return err
	}
	buf, err := jsonview.Pack(t, d)
	if err != nil {
		return fmt.Errorf("error packing %s: %w", src, err)
	}
	return writeBuffer(cc, buf.Bytes())
}
