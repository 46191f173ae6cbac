package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/fs"
	"github.com/hupe1980/tfgraph/internal/manifest"
)

// Compile parses the feature files in locations and publishes a new build
// under store. All features are compiled regardless of opts.Features. The
// caller must hold the store lock.
func Compile(ctx context.Context, locations []string, store *manifest.Store, opts Options) (string, error) {
	opts = opts.withDefaults()
	opts.Features = nil

	w, err := newWriter(opts.FS, store.Root(), opts.Compression)
	if err != nil {
		return "", err
	}
	p, err := newPipeline(locations, opts, w)
	if err == nil {
		err = p.run(ctx)
	}
	if err != nil {
		if aerr := w.abort(); aerr != nil {
			err = errors.Join(err, aerr)
		}
		return "", err
	}

	dir, err := w.commit(store, manifestOf(p.data, opts.Compression))
	if err != nil {
		_ = w.abort()
		return "", err
	}
	opts.Logger.Info("compiled corpus", "dir", dir, "maxNode", p.data.MaxNode(), "warnings", len(p.data.Warnings))
	return dir, nil
}

// Write publishes an already assembled corpus under store without
// re-reading any text. The caller must hold the store lock.
func Write(ctx context.Context, d *corpus.Data, store *manifest.Store, opts Options) (string, error) {
	opts = opts.withDefaults()
	w, err := newWriter(opts.FS, store.Root(), opts.Compression)
	if err != nil {
		return "", err
	}
	if err := w.all(ctx, d); err != nil {
		if aerr := w.abort(); aerr != nil {
			err = errors.Join(err, aerr)
		}
		return "", err
	}
	dir, err := w.commit(store, manifestOf(d, opts.Compression))
	if err != nil {
		_ = w.abort()
		return "", err
	}
	opts.Logger.Info("wrote corpus", "dir", dir)
	return dir, nil
}

// Ensure opens the published build of store, compiling locations first when
// nothing is published or force is set. Compilation holds the store lock;
// a build published by another process while waiting for it is reused.
func Ensure(ctx context.Context, locations []string, store *manifest.Store, force bool, opts Options) (*corpus.Data, error) {
	opts = opts.withDefaults()
	if !force {
		d, err := Open(ctx, store, opts)
		if !errors.Is(err, ErrNoCache) {
			return d, err
		}
	}

	if err := opts.FS.MkdirAll(store.Root(), 0o755); err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	lock, err := fs.Lock(ctx, store.LockPath())
	if err != nil {
		return nil, fmt.Errorf("lock cache: %w", err)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			opts.Logger.Warn("unlock cache", "error", uerr)
		}
	}()

	if !force {
		d, err := Open(ctx, store, opts)
		if err == nil {
			opts.Logger.Debug("reusing build published while waiting for lock")
		}
		if !errors.Is(err, ErrNoCache) {
			return d, err
		}
	}
	if _, err := Compile(ctx, locations, store, opts); err != nil {
		return nil, err
	}
	return Open(ctx, store, opts)
}
