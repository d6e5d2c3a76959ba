package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/tagwire/ir"
	"github.com/signadot/tagwire/parse"
	"github.com/signadot/tagwire/stream"

	"github.com/scott-cotton/cli"
)

// getObjFile reads the document at path, "-" being standard input.
// Compressed files are accepted.
func getObjFile(cc *cli.Context, path string, opts ...parse.ParseOption) (*ir.Node, error) {
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
	return readDoc(r, opts...)
}

func readDoc(r io.Reader, opts ...parse.ParseOption) (*ir.Node, error) {
	text, err := stream.ReadText(r)
	if err != nil {
		return nil, err
	}
	return parse.Parse(text, opts...)
}

// eachFile calls fn for every argument, or for standard input when
// there are none.
func eachFile(cc *cli.Context, files []string, opts []parse.ParseOption, fn func(name string, doc *ir.Node) error) error {
	if len(files) == 0 {
		files = []string{"-"}
	}
	for _, file := range files {
		doc, err := getObjFile(cc, file, opts...)
		if err != nil {
			return fmt.Errorf("error processing %s: %w", file, err)
		}
		if err := fn(file, doc); err != nil {
			return fmt.Errorf("error processing %s: %w", file, err)
		}
	}
	return nil
}
