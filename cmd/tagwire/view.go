package main

import (
	"fmt"
	"io"

	"github.com/signadot/tagwire/encode"
	"github.com/signadot/tagwire/ir"

	"github.com/scott-cotton/cli"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	opts := cfg.viewOpts(cc.Out)
	return eachFile(cc, args, cfg.parseOpts(), func(_ string, doc *ir.Node) error {
		return viewDoc(cc.Out, doc, cfg.Wire, opts...)
	})
}

func (cfg *ViewConfig) viewOpts(w io.Writer) []encode.EncodeOption {
	opts := cfg.encOpts(w)
	if !cfg.Wire {
		opts = append(opts, encode.Indent(2))
	}
	return append(opts, encode.HideExtra(cfg.HideExtra))
}

// viewDoc writes doc and, for compact output, the newline that the
// indented form already ends with.
func viewDoc(w io.Writer, doc *ir.Node, compact bool, opts ...encode.EncodeOption) error {
	if err := encode.Encode(doc, w, opts...); err != nil {
		return fmt.Errorf("error encoding: %w", err)
	}
	if !compact {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}
