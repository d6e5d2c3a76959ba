package main

import (
	"fmt"
	"io"

	"github.com/signadot/tagwire/ir"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
)

func query(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Expr == "" {
		return fmt.Errorf("%w: query requires -e <expr>", cli.ErrUsage)
	}
	prog, err := compileQuery(cfg.Expr)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return eachFile(cc, args, cfg.parseOpts(), func(name string, doc *ir.Node) error {
		theLog.Debug("query", "file", name, "expr", cfg.Expr)
		return queryDoc(cc.Out, prog, doc, cfg.Tags)
	})
}

func compileQuery(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.AllowUndefinedVariables())
}

// queryDoc prints the result of prog with doc in scope: text results
// as is and anything else as flow yaml.
func queryDoc(w io.Writer, prog *vm.Program, doc *ir.Node, tags bool) error {
	env := map[string]any{"doc": ir.ToAny(doc, tags)}
	out, err := expr.Run(prog, env)
	if err != nil {
		return fmt.Errorf("error evaluating: %w", err)
	}
	var text string
	switch x := out.(type) {
	case string:
		text = x
	case nil:
		text = "null"
	default:
		d, err := yaml.MarshalWithOptions(x, yaml.Flow(true))
		if err != nil {
			return fmt.Errorf("error encoding result: %w", err)
		}
		text = string(d)
	}
	if len(text) == 0 || text[len(text)-1] != '\n' {
		text += "\n"
	}
	_, err = io.WriteString(w, text)
	return err
}
