package compiler

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/fs"
)

// Well-known feature names.
const (
	OtypeFeature  = "otype"
	OslotsFeature = "oslots"
	OtextFeature  = "otext"
)

// Options configures building, compiling and opening.
type Options struct {
	Logger      *slog.Logger
	FS          fs.FileSystem
	Parallelism int
	// Features restricts the non-structural features loaded; nil loads all.
	// Features required by the text configuration are always loaded.
	Features    []string
	Compression columnar.Compression
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.FS == nil {
		o.FS = fs.Default
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

func (o Options) selected(name string, required map[string]bool) bool {
	if o.Features == nil || required[name] {
		return true
	}
	for _, f := range o.Features {
		if f == name {
			return true
		}
	}
	return false
}
