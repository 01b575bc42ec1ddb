package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a field path", cli.ErrUsage)
	}
	path := args[0]
	args = args[1:]
	if len(args) == 0 {
		args = []string{"-"}
	}
	t, err := cfg.schema()
	if err != nil {
		return err
	}
	for _, arg := range args {
		d, err := readFile(cc, arg)
		if err != nil {
			return err
		}
		v, err := instdiff.Get(t, d, path)
		if err != nil {
			return fmt.Errorf("error getting %s from %s: %w", path, arg, err)
		}
		if len(args) > 1 {
			fmt.Fprintf(cc.Out, "%s: ", arg)
		}
		fmt.Fprintln(cc.Out, v.String())
	}
	return nil
}
