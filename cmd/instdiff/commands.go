package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "instdiff").
		WithSynopsis("instdiff -s schema.yaml [opts] command [opts]").
		WithDescription("instdiff diffs and patches schema encoded binary buffers.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return instdiffMain(cfg, cc, args)
		}).
		WithSubs(
			DiffCommand(cfg),
			PatchCommand(cfg),
			GetCommand(cfg),
			ViewCommand(cfg),
			PackCommand(cfg),
			MaskCommand(cfg),
			SchemaCommand(cfg))
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("d", "di").
		WithOpts(opts...).
		WithSynopsis("diff [opts] <baseline> <target>").
		WithDescription("print the override records taking baseline to target").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("patch").
		WithAliases("p", "pa").
		WithSynopsis("patch [opts] <records|merge patch> <buffer>").
		WithDescription(patchDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
	cfg.Patch = cmd
	return cmd
}

const patchDescription = `apply override records to a buffer.

Records are read as a yaml sequence:

  - path: items.size
    value: "2"
  - path: items.data[1].target
    ref: 42

-where selects records with an expression over path, value, ref, owner,
size and under(prefix), for example

  -where 'under("items") && !size'

With -merge the patch file is instead an RFC 7386 json merge patch of
the buffer's json view (see 'view' and 'diff -merge').

The patched buffer is written to the output.  Records which fail are
logged and make the command exit non-zero after the output is written.`

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("get").
		WithAliases("g", "ge").
		WithSynopsis("get <fieldpath> [buffers]").
		WithDescription("print the value at a field path").
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
	cfg.Get = cmd
	return cmd
}

func ViewCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ViewConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("view").
		WithAliases("v").
		WithOpts(opts...).
		WithSynopsis("view [buffers]").
		WithDescription("print buffers as json").
		WithRun(func(cc *cli.Context, args []string) error {
			return view(cfg, cc, args)
		})
	cfg.View = cmd
	return cmd
}

func PackCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PackConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Pack, "pack").
		WithSynopsis("pack <json file>").
		WithDescription("encode a json document as a buffer").
		WithRun(func(cc *cli.Context, args []string) error {
			return pack(cfg, cc, args)
		})
}

func MaskCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MaskConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Mask, "mask").
		WithSynopsis("mask [opts] <buffer> <index>...").
		WithDescription("print records for the schema nodes with the given indices (see 'schema')").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return mask(cfg, cc, args)
		})
}

func SchemaCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SchemaConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Cmd, "schema").
		WithAliases("s").
		WithSynopsis("schema [opts]").
		WithDescription("print the schema tree with node indices").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return schemaCmd(cfg, cc, args)
		})
}
