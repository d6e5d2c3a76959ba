// Package debug holds environment driven debug switches and the logger
// used when they are on.
package debug

import (
	"log/slog"
	"os"
	"strconv"
)

type debug struct {
	Encode   bool
	Decode   bool
	Registry bool
}

var (
	d   *debug
	log *slog.Logger
)

func init() {
	d = &debug{}
	d.Encode = boolEnv("TAGWIRE_DEBUG_ENCODE")
	d.Decode = boolEnv("TAGWIRE_DEBUG_DECODE")
	d.Registry = boolEnv("TAGWIRE_DEBUG_REGISTRY")
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Encode() bool {
	return d.Encode
}

func Decode() bool {
	return d.Decode
}

func Registry() bool {
	return d.Registry
}

// Logger returns the stderr logger used for debug output.
func Logger() *slog.Logger {
	return log
}
