package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/featfile"
	"github.com/hupe1980/tfgraph/internal/precompute"
	"github.com/hupe1980/tfgraph/model"
)

// Build parses the feature files found in locations into a heap-backed
// corpus without writing anything.
func Build(ctx context.Context, locations []string, opts Options) (*corpus.Data, error) {
	p, err := newPipeline(locations, opts, nil)
	if err != nil {
		return nil, err
	}
	if err := p.run(ctx); err != nil {
		return nil, err
	}
	return p.data, nil
}

type pipeline struct {
	opts  Options
	log   *slog.Logger
	files map[string]string
	w     *writer

	data     *corpus.Data
	required map[string]bool
}

func newPipeline(locations []string, opts Options, w *writer) (*pipeline, error) {
	opts = opts.withDefaults()
	files, warnings, err := discover(opts.FS, locations, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		opts:  opts,
		log:   opts.Logger,
		files: files,
		w:     w,
		data: &corpus.Data{
			Nodes:    map[string]*corpus.NodeColumn{},
			Edges:    map[string]*corpus.EdgeColumn{},
			Configs:  map[string]map[string]string{},
			Warnings: warnings,
		},
	}, nil
}

func (p *pipeline) run(ctx context.Context) error {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"structure", p.structure},
		{"text-config", p.textConfig},
		{"precompute", p.precompute},
		{"features", p.features},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := st.fn(ctx); err != nil {
			p.log.Error("compile stage failed", "stage", st.name, "error", err)
			return &StageError{Stage: st.name, Err: err}
		}
		p.log.Debug("compile stage done", "stage", st.name, "duration", time.Since(start))
	}
	return nil
}

// emit serializes a stage result when compiling.
func (p *pipeline) emit(fn func(w *writer) error) error {
	if p.w == nil {
		return nil
	}
	return fn(p.w)
}

func (p *pipeline) warn(w corpus.Warning) {
	p.log.Warn("compile warning", "kind", string(w.Kind), "feature", w.Feature, "detail", w.Detail)
	p.data.Warnings = append(p.data.Warnings, w)
}

func (p *pipeline) structure(context.Context) error {
	otypePath, ok := p.files[OtypeFeature]
	if !ok {
		return structuralf("feature %q is missing", OtypeFeature)
	}
	oslotsPath, ok := p.files[OslotsFeature]
	if !ok {
		return structuralf("feature %q is missing", OslotsFeature)
	}

	otype, err := featfile.ParseFile(otypePath, 1)
	if err != nil {
		return structuralf("%v", err)
	}
	s, err := buildStructure(otype, func(start model.Node) (*featfile.Feature, error) {
		return featfile.ParseFile(oslotsPath, start)
	})
	if err != nil {
		return err
	}
	p.data.Structure = s
	p.data.IndexTypes()
	p.log.Debug("structure", "maxSlot", s.MaxSlot, "maxNode", s.MaxNode, "types", len(s.TypeNames))

	return p.emit(func(w *writer) error {
		if err := w.otype(s); err != nil {
			return err
		}
		return w.csr(pathOslots, s.Oslots)
	})
}

func (p *pipeline) textConfig(context.Context) error {
	path, ok := p.files[OtextFeature]
	if !ok {
		p.log.Info("no text configuration; section and structure queries disabled")
		return nil
	}
	h, err := featfile.ReadHeader(path)
	if err != nil {
		return err
	}
	p.data.Text = parseTextConfig(h.Meta)
	p.required = requiredFeatures(p.data.Text)
	return nil
}

func (p *pipeline) precompute(context.Context) error {
	d := p.data
	s := d.Structure

	d.Levels, d.LevelOf = precompute.Levels(s)
	d.Order, d.Rank = precompute.Order(s, d.LevelOf)
	if err := p.emit(func(w *writer) error {
		if err := w.uint32s(pathOrder, d.Order); err != nil {
			return err
		}
		return w.uint32s(pathRank, d.Rank)
	}); err != nil {
		return err
	}

	d.LevUp = precompute.LevUp(s, d.LevelOf, d.Rank)
	if err := p.emit(func(w *writer) error { return w.csr(pathLevUp, d.LevUp) }); err != nil {
		return err
	}
	d.LevDown = precompute.LevDown(s, d.LevelOf, d.Rank, d.LevUp)
	if err := p.emit(func(w *writer) error { return w.csr(pathLevDown, d.LevDown) }); err != nil {
		return err
	}
	d.Boundary = precompute.ComputeBoundary(s, d.Order)
	if err := p.emit(func(w *writer) error { return w.boundary(d.Boundary) }); err != nil {
		return err
	}

	if d.Text == nil {
		return nil
	}
	if codes, err := hierarchyTypes(s, d.Text.SectionTypes, d.Text.SectionFeatures, p.files); err != nil {
		p.warn(corpus.Warning{Kind: corpus.WarnDependencyMissing, Feature: "sections", Detail: err.Error()})
	} else {
		d.Sections = precompute.Hierarchy(s, codes, d.Order, d.LevUp)
		if err := p.emit(func(w *writer) error { return w.csr(pathSections, d.Sections) }); err != nil {
			return err
		}
	}
	if codes, err := hierarchyTypes(s, d.Text.StructureTypes, d.Text.StructureFeatures, p.files); err != nil {
		p.warn(corpus.Warning{Kind: corpus.WarnDependencyMissing, Feature: "structure", Detail: err.Error()})
	} else {
		d.StructureMap = precompute.Hierarchy(s, codes, d.Order, d.LevUp)
		if err := p.emit(func(w *writer) error { return w.csr(pathStructure, d.StructureMap) }); err != nil {
			return err
		}
	}
	return nil
}

type featureResult struct {
	node     *corpus.NodeColumn
	edge     *corpus.EdgeColumn
	config   map[string]string
	warnings []corpus.Warning
}

func (p *pipeline) features(ctx context.Context) error {
	var names []string
	for _, name := range sortedNames(p.files) {
		if name == OtypeFeature || name == OslotsFeature {
			continue
		}
		if corpus.Reserved(name) {
			p.warn(corpus.Warning{Kind: corpus.WarnReserved, Feature: name, Detail: fmt.Sprintf("%s names a computed feature and is ignored", p.files[name])})
			continue
		}
		if name == OtextFeature || p.opts.selected(name, p.required) {
			names = append(names, name)
		}
	}

	results := make([]featureResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Parallelism)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.feature(name)
			if err != nil {
				return fmt.Errorf("feature %s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		r := results[i]
		switch {
		case r.node != nil:
			p.data.Nodes[name] = r.node
		case r.edge != nil:
			p.data.Edges[name] = r.edge
		default:
			p.data.Configs[name] = r.config
		}
		for _, w := range r.warnings {
			p.warn(w)
		}
	}
	p.log.Debug("features loaded", "node", len(p.data.Nodes), "edge", len(p.data.Edges))
	return nil
}

func (p *pipeline) feature(name string) (featureResult, error) {
	d := p.data
	f, err := featfile.ParseFile(p.files[name], 1)
	if err != nil {
		return featureResult{}, err
	}

	var (
		res        featureResult
		collisions int
	)
	switch f.Kind {
	case featfile.KindConfig:
		res.config = f.Meta
		return res, nil
	case featfile.KindNode:
		res.node, collisions, err = corpus.BuildNodeColumn(f, d.MaxNode())
		if err == nil {
			err = p.emit(func(w *writer) error { return w.node(res.node) })
		}
	case featfile.KindEdge:
		res.edge, collisions, err = corpus.BuildEdgeColumn(f, d.MaxNode(), d.Rank)
		if err == nil {
			err = p.emit(func(w *writer) error { return w.edge(res.edge) })
		}
	default:
		err = errors.New("unknown feature kind")
	}
	if err != nil {
		return featureResult{}, err
	}
	if collisions > 0 {
		res.warnings = append(res.warnings, corpus.Warning{
			Kind:    corpus.WarnSentinelCollision,
			Feature: name,
			Detail:  fmt.Sprintf("%d values equal the missing-value marker and will read back as absent", collisions),
		})
	}
	return res, nil
}
