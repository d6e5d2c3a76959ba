package main

import (
	"fmt"
	"io"

	"github.com/signadot/tagwire/ir"
	"github.com/signadot/tagwire/libdiff"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, err := getObjFile(cc, args[0], cfg.parseOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	b, err := getObjFile(cc, args[1], cfg.parseOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	differs, err := diffInputs(cfg.Reverse, cc.Out, a, b, cfg.useColor(cc.Out))
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func diffInputs(reverse bool, w io.Writer, a, b *ir.Node, colored bool) (bool, error) {
	changes := libdiff.Diff(a, b)
	if len(changes) == 0 {
		return false, nil
	}
	if reverse {
		changes = libdiff.Reverse(changes)
	}
	for _, c := range changes {
		line := c.String()
		if colored {
			line = colorChange(c.Op, line)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return true, err
		}
	}
	return true, nil
}

func colorChange(op libdiff.Op, s string) string {
	switch op {
	case libdiff.Added:
		return color.GreenString("%s", s)
	case libdiff.Removed:
		return color.RedString("%s", s)
	}
	return color.YellowString("%s", s)
}
