package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signadot/tagwire/ir"

	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
)

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.J == cfg.Y {
		return fmt.Errorf("%w: specify exactly one of -j[son] -y[aml]", cli.ErrUsage)
	}
	n := 0
	return eachFile(cc, args, cfg.parseOpts(), func(_ string, doc *ir.Node) error {
		if n > 0 && cfg.Y {
			if _, err := io.WriteString(cc.Out, "---\n"); err != nil {
				return err
			}
		}
		n++
		return dumpDoc(cc.Out, doc, cfg.Y, cfg.Tags)
	})
}

func dumpDoc(w io.Writer, doc *ir.Node, asYAML, tags bool) error {
	var (
		d   []byte
		err error
	)
	if asYAML {
		d, err = yaml.Marshal(toMapSlice(doc, tags))
	} else {
		d, err = json.MarshalIndent(ir.ToAny(doc, tags), "", "  ")
		d = append(d, '\n')
	}
	if err != nil {
		return fmt.Errorf("error encoding: %w", err)
	}
	_, err = w.Write(d)
	return err
}

// toMapSlice is ir.ToAny keeping field order.
func toMapSlice(n *ir.Node, tags bool) any {
	switch n.Type {
	case ir.ScalarType:
		return n.Text
	case ir.ArrayType:
		res := make([]any, len(n.Values))
		for i, e := range n.Values {
			v := toMapSlice(e, tags)
			if tags {
				v = yaml.MapSlice{{Key: e.Tag, Value: v}}
			}
			res[i] = v
		}
		return res
	case ir.ObjectType:
		res := make(yaml.MapSlice, len(n.Values))
		for i, f := range n.Values {
			k := f.Name
			if tags {
				k = f.Key()
			}
			res[i] = yaml.MapItem{Key: k, Value: toMapSlice(f, tags)}
		}
		return res
	}
	return nil
}
