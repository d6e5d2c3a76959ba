// Package stream writes and reads wire text on io streams and files,
// optionally compressed.
package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signadot/tagwire/gomap"
)

type config struct {
	mapper      *gomap.Mapper
	compression Compression
	mapOpts     []gomap.MapOption
	unmapOpts   []gomap.UnmapOption
}

// Option configures the stream functions.
type Option func(*config)

// WithMapper selects the mapper used to encode and decode. The default
// mapper is used otherwise.
func WithMapper(m *gomap.Mapper) Option {
	return func(c *config) { c.mapper = m }
}

// Compress compresses written text. Reads detect compression from the
// data itself.
func Compress(comp Compression) Option {
	return func(c *config) { c.compression = comp }
}

// MapOptions passes options to the encoder.
func MapOptions(opts ...gomap.MapOption) Option {
	return func(c *config) { c.mapOpts = append(c.mapOpts, opts...) }
}

// UnmapOptions passes options to the decoder.
func UnmapOptions(opts ...gomap.UnmapOption) Option {
	return func(c *config) { c.unmapOpts = append(c.unmapOpts, opts...) }
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, o := range opts {
		o(c)
	}
	if c.mapper == nil {
		c.mapper = gomap.DefaultMapper()
	}
	return c
}

// Write encodes the record v and writes its wire text to w.
func Write(w io.Writer, v any, opts ...Option) error {
	cfg := newConfig(opts)
	text, err := cfg.mapper.ToText(v, cfg.mapOpts...)
	if err != nil {
		return err
	}
	return writeText(w, text, cfg)
}

// WriteText writes already encoded wire text to w.
func WriteText(w io.Writer, text string, opts ...Option) error {
	return writeText(w, text, newConfig(opts))
}

func writeText(w io.Writer, text string, cfg *config) error {
	data, err := compress([]byte(text), cfg.compression)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write wire text: %w", err)
	}
	return nil
}

// Read reads all of r and decodes it into p, a non-nil *T.
func Read(r io.Reader, p any, opts ...Option) error {
	cfg := newConfig(opts)
	text, err := ReadText(r)
	if err != nil {
		return err
	}
	return cfg.mapper.FromText(text, p, cfg.unmapOpts...)
}

// ReadText reads all of r, decompressing it if needed. Trailing line
// terminators are dropped.
func ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read wire text: %w", err)
	}
	data, err = decompress(data)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// WriteFile encodes v into the file at path, creating or truncating it.
func WriteFile(path string, v any, opts ...Option) (err error) {
	cfg := newConfig(opts)
	text, err := cfg.mapper.ToText(v, cfg.mapOpts...)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return writeText(f, text, cfg)
}

// ReadFile decodes the file at path into p.
func ReadFile(path string, p any, opts ...Option) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Read(f, p, opts...)
}
