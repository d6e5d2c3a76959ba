package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	bad := 0
	for _, file := range args {
		if err := checkFile(cc, cc.Out, file, cfg); err != nil {
			bad++
			theLog.Error("check failed", "file", file, "error", err)
		}
	}
	if bad > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func checkFile(cc *cli.Context, w io.Writer, file string, cfg *CheckConfig) error {
	if _, err := getObjFile(cc, file, cfg.parseOpts()...); err != nil {
		fmt.Fprintf(w, "%s: %v\n", file, err)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: ok\n", file)
	return err
}
