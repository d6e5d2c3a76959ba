package gomap

import "log/slog"

// DefaultMaxDepth bounds record and collection nesting.
const DefaultMaxDepth = 10000

// MapOption configures encoding.
type MapOption interface {
	applyMap(*mapConfig)
}

// UnmapOption configures decoding.
type UnmapOption interface {
	applyUnmap(*unmapConfig)
}

// Option configures both encoding and decoding.
type Option interface {
	MapOption
	UnmapOption
}

type mapConfig struct {
	maxDepth int
	log      *slog.Logger
}

type unmapConfig struct {
	maxDepth int
	log      *slog.Logger
}

func newMapConfig(opts []MapOption) *mapConfig {
	cfg := &mapConfig{maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o.applyMap(cfg)
	}
	return cfg
}

func newUnmapConfig(opts []UnmapOption) *unmapConfig {
	cfg := &unmapConfig{maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o.applyUnmap(cfg)
	}
	return cfg
}

type maxDepth int

func (m maxDepth) applyMap(c *mapConfig)     { c.maxDepth = int(m) }
func (m maxDepth) applyUnmap(c *unmapConfig) { c.maxDepth = int(m) }

// MaxDepth bounds record and collection nesting. Deeper values fail
// with ErrFormat on decode and ErrUnsupportedType on encode.
func MaxDepth(n int) Option {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	return maxDepth(n)
}

type logger struct{ l *slog.Logger }

func (o logger) applyMap(c *mapConfig)     { c.log = o.l }
func (o logger) applyUnmap(c *unmapConfig) { c.log = o.l }

// Logger sends debug records of the call to l.
func Logger(l *slog.Logger) Option {
	return logger{l: l}
}
