package tfgraph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/tfgraph/feature"
	"github.com/hupe1980/tfgraph/internal/compiler"
	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/fs"
	"github.com/hupe1980/tfgraph/internal/manifest"
	"github.com/hupe1980/tfgraph/model"
	"github.com/hupe1980/tfgraph/search"
)

// Corpus is a loaded, read-only corpus. It is safe for concurrent use; the
// queries it creates are not.
type Corpus struct {
	data      *corpus.Data
	reg       *feature.Registry
	locations []string
	source    LoadSource
	warnings  []error
	opts      options

	closeOnce sync.Once
	closeErr  error
}

// DefaultCacheDir returns the cache directory used for locations when
// WithCacheDir is not given.
func DefaultCacheDir(locations []string) string {
	if len(locations) == 0 {
		return ""
	}
	return filepath.Join(locations[0], ".tfg", "v"+strconv.Itoa(manifest.FormatVersion))
}

func (o options) cacheRoot(locations []string) string {
	if o.cacheDir != "" {
		return o.cacheDir
	}
	return DefaultCacheDir(locations)
}

func (o options) compilerOptions(log *Logger) compiler.Options {
	return compiler.Options{
		Logger:      log.Logger,
		Parallelism: o.parallelism,
		Features:    o.features,
		Compression: o.compression,
	}
}

// Load opens the corpus stored as feature files in locations. Later
// locations override features of earlier ones.
//
// Unless WithoutCache is given, the compiled cache is mapped when one is
// published and compiled first otherwise. A published cache that fails to
// load yields a *CacheCorruptError; it is never replaced silently.
func Load(ctx context.Context, locations []string, optFns ...Option) (*Corpus, error) {
	o := applyOptions(optFns)
	log := o.logger.WithCorpus(locations)

	start := time.Now()
	d, source, err := load(ctx, locations, o, log)
	o.metricsCollector.RecordLoad(source, time.Since(start), err)
	if err != nil {
		log.LogLoad(ctx, string(source), 0, 0, err)
		return nil, err
	}

	c := &Corpus{
		data:      d,
		reg:       feature.NewRegistry(d),
		locations: append([]string{}, locations...),
		source:    source,
		opts:      o,
	}
	for _, w := range d.Warnings {
		werr := warningError(w)
		c.warnings = append(c.warnings, werr)
		log.LogWarning(ctx, werr)
	}
	log.LogLoad(ctx, string(source), d.MaxNode(), len(c.warnings), nil)
	return c, nil
}

func load(ctx context.Context, locations []string, o options, log *Logger) (*corpus.Data, LoadSource, error) {
	if len(locations) == 0 {
		return nil, SourceText, ErrNoLocations
	}
	copts := o.compilerOptions(log)
	if o.noCache {
		d, err := compiler.Build(ctx, locations, copts)
		return d, SourceText, translateError(err, "")
	}

	root := o.cacheRoot(locations)
	store := manifest.NewStore(nil, root)
	if !o.forceCompile {
		d, err := compiler.Open(ctx, store, copts)
		if err == nil {
			return d, SourceCache, nil
		}
		if !errors.Is(err, compiler.ErrNoCache) {
			return nil, SourceCache, translateError(err, root)
		}
	}

	start := time.Now()
	d, err := compiler.Ensure(ctx, locations, store, o.forceCompile, copts)
	err = translateError(err, root)
	o.metricsCollector.RecordCompile(time.Since(start), err)
	return d, SourceCompiled, err
}

// Compile compiles the feature files in locations into a new build of the
// cache directory and publishes it. It returns the build directory.
func Compile(ctx context.Context, locations []string, optFns ...Option) (string, error) {
	o := applyOptions(optFns)
	log := o.logger.WithCorpus(locations)
	if len(locations) == 0 {
		return "", ErrNoLocations
	}

	start := time.Now()
	root := o.cacheRoot(locations)
	dir, err := withStore(ctx, root, func(store *manifest.Store) (string, error) {
		return compiler.Compile(ctx, locations, store, o.compilerOptions(log))
	})
	err = translateError(err, root)
	o.metricsCollector.RecordCompile(time.Since(start), err)
	log.LogCompile(ctx, dir, err)
	return dir, err
}

// Compile publishes the loaded corpus as a new build under cacheDir without
// re-reading the feature files. An empty cacheDir uses the corpus' cache
// directory. Only the loaded features are written.
func (c *Corpus) Compile(ctx context.Context, cacheDir string) (string, error) {
	if cacheDir == "" {
		cacheDir = c.opts.cacheRoot(c.locations)
	}
	log := c.opts.logger.WithCorpus(c.locations)

	start := time.Now()
	dir, err := withStore(ctx, cacheDir, func(store *manifest.Store) (string, error) {
		return compiler.Write(ctx, c.data, store, c.opts.compilerOptions(log))
	})
	err = translateError(err, cacheDir)
	c.opts.metricsCollector.RecordCompile(time.Since(start), err)
	log.LogCompile(ctx, dir, err)
	return dir, err
}

// withStore runs fn while holding the cache lock of root.
func withStore(ctx context.Context, root string, fn func(*manifest.Store) (string, error)) (dir string, err error) {
	if err := fs.Default.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create cache: %w", err)
	}
	store := manifest.NewStore(nil, root)
	lock, err := fs.Lock(ctx, store.LockPath())
	if err != nil {
		return "", fmt.Errorf("lock cache: %w", err)
	}
	defer func() {
		err = errors.Join(err, lock.Unlock())
	}()
	return fn(store)
}

// Source tells whether the corpus was parsed, mapped or compiled.
func (c *Corpus) Source() LoadSource { return c.source }

// Warnings returns the non-fatal problems found while compiling:
// *DependencyMissingError, *SentinelCollisionError and overrides of
// features by later locations.
func (c *Corpus) Warnings() []error { return append([]error(nil), c.warnings...) }

// MaxSlot returns the number of slots.
func (c *Corpus) MaxSlot() model.Node { return model.Node(c.data.MaxSlot()) }

// MaxNode returns the largest node.
func (c *Corpus) MaxNode() model.Node { return model.Node(c.data.MaxNode()) }

// Registry returns the feature accessors.
func (c *Corpus) Registry() *feature.Registry { return c.reg }

// Otype returns the node type accessor.
func (c *Corpus) Otype() *feature.Otype { return c.reg.Otype() }

// Oslots returns the slot containment accessor.
func (c *Corpus) Oslots() *feature.Oslots { return c.reg.Oslots() }

// Canonical returns the canonical node order.
func (c *Corpus) Canonical() *feature.Canonical { return c.reg.Canonical() }

// Node returns a node feature.
func (c *Corpus) Node(name string) (*feature.NodeFeature, error) {
	f, ok := c.reg.Node(name)
	if !ok {
		return nil, fmt.Errorf("%w: node feature %q", ErrFeatureNotFound, name)
	}
	return f, nil
}

// Edge returns an edge feature.
func (c *Corpus) Edge(name string) (*feature.EdgeFeature, error) {
	f, ok := c.reg.Edge(name)
	if !ok {
		return nil, fmt.Errorf("%w: edge feature %q", ErrFeatureNotFound, name)
	}
	return f, nil
}

// Computed returns levUp or levDown.
func (c *Corpus) Computed(name string) (*feature.Computed, error) {
	f, ok := c.reg.Computed(name)
	if !ok {
		return nil, fmt.Errorf("%w: computed feature %q", ErrFeatureNotFound, name)
	}
	return f, nil
}

// Bounds returns the first and last slot of every node.
func (c *Corpus) Bounds() *feature.Bounds { return c.reg.Bounds() }

// NodeFeatures returns the names of the loaded node features.
func (c *Corpus) NodeFeatures() []string {
	return c.reg.Names(feature.KindStrNode, feature.KindIntNode)
}

// EdgeFeatures returns the names of the loaded edge features.
func (c *Corpus) EdgeFeatures() []string {
	return c.reg.Names(feature.KindEdge, feature.KindEdgeValues)
}

func (c *Corpus) searchOptions(opts []search.Option) []search.Option {
	base := []search.Option{search.WithLogger(c.opts.logger.Logger)}
	if c.opts.searchParams != nil {
		base = append(base, search.WithParams(*c.opts.searchParams))
	}
	return append(base, opts...)
}

// Study parses and plans a template. Check Query.Valid before fetching.
func (c *Corpus) Study(text string, opts ...search.Option) *search.Query {
	return search.Study(c.reg, text, c.searchOptions(opts)...)
}

// Search runs a template and collects up to limit tuples; limit 0 collects
// all of them up to the overflow cutoff. Tuples hold one node per atom in
// declaration order. An invalid template returns its *search.Error.
func (c *Corpus) Search(ctx context.Context, text string, limit int, opts ...search.Option) ([][]model.Node, error) {
	start := time.Now()
	out, err := c.search(ctx, text, limit, opts)
	c.opts.metricsCollector.RecordSearch(len(out), time.Since(start), err)
	c.opts.logger.WithQuery(text).LogSearch(ctx, len(out), err)
	return out, err
}

func (c *Corpus) search(ctx context.Context, text string, limit int, opts []search.Option) ([][]model.Node, error) {
	q := c.Study(text, opts...)
	if !q.Valid() {
		return nil, q.Err()
	}
	var out [][]model.Node
	res := q.Fetch(limit)
	for res.Next() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, res.Tuple())
	}
	return out, res.Err()
}

// Close releases the mapped cache. The corpus and its accessors must not be
// used afterwards.
func (c *Corpus) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closeErr = c.data.Close()
	})
	return c.closeErr
}
