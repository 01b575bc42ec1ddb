package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff/schema"
)

func schemaCmd(cfg *SchemaConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Cmd.Parse(cc, args)
	if err != nil {
		cfg.Cmd.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: schema takes no arguments", cli.ErrUsage)
	}
	t, err := cfg.schema()
	if err != nil {
		return err
	}
	if !cfg.Paths {
		_, err := fmt.Fprint(cc.Out, t.String())
		return err
	}
	t.Each(func(id schema.NodeID) bool {
		n := t.Node(id)
		if t.IsLeaf(id) {
			fmt.Fprintf(cc.Out, "%d\t%s\t%s\n", n.Index, t.Path(id), n.TypeString())
		}
		return true
	})
	return nil
}
