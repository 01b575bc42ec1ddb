package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/scott-cotton/cli"

	"github.com/signadot/instdiff/codec"
	"github.com/signadot/instdiff/schema"
)

func instdiffMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logLevel.Set(slog.LevelInfo)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

func (cfg *MainConfig) schema() (*schema.Tree, error) {
	if cfg.SchemaFile == "" {
		return nil, fmt.Errorf("%w: a schema file is required (-s)", cli.ErrUsage)
	}
	t, err := schema.LoadFile(cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	theLog.Info("loaded schema", "file", cfg.SchemaFile, "nodes", t.Len())
	return t, nil
}

// readFile reads path, or the command input if path is "-".
func readFile(cc *cli.Context, path string) ([]byte, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	theLog.Info("read", "file", path, "size", humanize.Bytes(uint64(len(d))))
	return d, nil
}

func writeBuffer(cc *cli.Context, d []byte) error {
	if _, err := cc.Out.Write(d); err != nil {
		return fmt.Errorf("error writing buffer: %w", err)
	}
	theLog.Info("wrote", "size", humanize.Bytes(uint64(len(d))))
	return nil
}

func parseID(s string) (codec.ObjectID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid object id %q", cli.ErrUsage, s)
	}
	return codec.ObjectID(v), nil
}
