package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff/jsonview"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		cfg.View.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
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
		var out []byte
		if cfg.Compact {
			v, err := jsonview.Render(t, d)
			if err != nil {
				return fmt.Errorf("error rendering %s: %w", arg, err)
			}
			out, err = json.Marshal(v)
			if err != nil {
				return err
			}
		} else {
			out, err = jsonview.Marshal(t, d)
			if err != nil {
				return fmt.Errorf("error rendering %s: %w", arg, err)
			}
		}
		if _, err := fmt.Fprintf(cc.Out, "%s\n", out); err != nil {
			return err
		}
	}
	return nil
}
