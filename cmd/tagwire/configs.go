package main

import (
	"io"
	"os"

	"github.com/signadot/tagwire/encode"
	"github.com/signadot/tagwire/parse"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color    bool `cli:"name=color desc='encode with color'"`
	MaxDepth int  `cli:"name=depth desc='maximum nesting depth'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) parseOpts() []parse.ParseOption {
	if cfg.MaxDepth <= 0 {
		return nil
	}
	return []parse.ParseOption{parse.MaxDepth(cfg.MaxDepth)}
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	if cfg.useColor(w) {
		return []encode.EncodeOption{encode.EncodeColors(encode.NewColors())}
	}
	return nil
}

// useColor honours an explicit -color and otherwise colors terminals.
func (cfg *MainConfig) useColor(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	if cfg.Main != nil {
		for _, opt := range cfg.Main.Opts {
			if opt.Name == "color" && opt.Value != nil {
				return false
			}
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type ViewConfig struct {
	*MainConfig

	Wire      bool `cli:"name=wire desc='output compact wire text'"`
	HideExtra bool `cli:"name=x desc='hide declared collection signatures'"`
	View      *cli.Command
}

type DumpConfig struct {
	*MainConfig

	J    bool `cli:"name=j aliases=json desc='dump json'"`
	Y    bool `cli:"name=y aliases=yaml desc='dump yaml'"`
	Tags bool `cli:"name=tags desc='keep type tags'"`
	Dump *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`

	Diff *cli.Command
}

type QueryConfig struct {
	*MainConfig
	Expr string `cli:"name=e desc='expression over doc'"`
	Tags bool   `cli:"name=tags desc='keep type tags'"`

	Query *cli.Command
}

type CheckConfig struct {
	*MainConfig

	Check *cli.Command
}
