package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/manifest"
	"github.com/hupe1980/tfgraph/internal/mmap"
	"github.com/hupe1980/tfgraph/internal/precompute"
	"github.com/hupe1980/tfgraph/model"
)

// Open maps the published build of store. It returns ErrNoCache when
// nothing has been published and ErrCorrupt when a published build cannot
// be read; a corrupt build is never repaired or replaced automatically.
func Open(ctx context.Context, store *manifest.Store, opts Options) (*corpus.Data, error) {
	opts = opts.withDefaults()
	m, dir, err := store.Load()
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return nil, ErrNoCache
		}
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	r := &reader{dir: dir, m: m, data: &corpus.Data{
		Nodes:    map[string]*corpus.NodeColumn{},
		Edges:    map[string]*corpus.EdgeColumn{},
		Configs:  map[string]map[string]string{},
		Warnings: m.Warnings,
	}}
	if err := r.read(ctx, opts); err != nil {
		_ = r.data.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, dir, err)
	}
	opts.Logger.Debug("opened compiled corpus", "dir", dir, "nodeFeatures", len(r.data.Nodes), "edgeFeatures", len(r.data.Edges))
	return r.data, nil
}

type reader struct {
	dir  string
	m    *manifest.Manifest
	data *corpus.Data
}

func (r *reader) open(rel string, kind columnar.Kind, sections int) (*columnar.File, error) {
	f, err := columnar.Open(filepath.Join(r.dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	r.data.AddCloser(f)
	if err := f.Expect(kind, sections); err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	return f, nil
}

func (r *reader) csr(rel string, pattern mmap.AccessPattern) (*columnar.CSR, error) {
	f, err := r.open(rel, columnar.KindCSR, 2)
	if err != nil {
		return nil, err
	}
	_ = f.Advise(pattern)
	return f.CSR(0)
}

func (r *reader) uint32s(rel string) ([]uint32, error) {
	f, err := r.open(rel, columnar.KindUint32s, 1)
	if err != nil {
		return nil, err
	}
	return f.Uint32s(0)
}

func (r *reader) read(ctx context.Context, opts Options) error {
	d, m := r.data, r.m
	var err error

	if err := r.structure(); err != nil {
		return err
	}
	d.IndexTypes()

	d.LevelOf = make([]int, len(m.Types))
	for i, l := range m.Levels {
		d.Levels = append(d.Levels, precompute.Level(l))
		code, ok := d.TypeCode(l.Type)
		if !ok {
			return fmt.Errorf("level names unknown type %q", l.Type)
		}
		d.LevelOf[code] = i
	}

	if d.Order, err = r.uint32s(pathOrder); err != nil {
		return err
	}
	if d.Rank, err = r.uint32s(pathRank); err != nil {
		return err
	}
	if len(d.Order) != int(m.MaxNode) || len(d.Rank) != int(m.MaxNode)+1 {
		return fmt.Errorf("order/rank sizes do not match maxNode %d", m.MaxNode)
	}
	if d.LevUp, err = r.csr(pathLevUp, mmap.AccessRandom); err != nil {
		return err
	}
	if d.LevDown, err = r.csr(pathLevDown, mmap.AccessRandom); err != nil {
		return err
	}
	if d.Boundary, err = r.boundary(); err != nil {
		return err
	}
	if m.Text != nil {
		d.Text = (*corpus.TextConfig)(m.Text)
	}
	if m.Sections {
		if d.Sections, err = r.csr(pathSections, mmap.AccessDefault); err != nil {
			return err
		}
	}
	if m.Structure {
		if d.StructureMap, err = r.csr(pathStructure, mmap.AccessDefault); err != nil {
			return err
		}
	}

	required := requiredFeatures(d.Text)
	for _, mf := range m.NodeFeatures {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !opts.selected(mf.Name, required) {
			continue
		}
		col, err := r.node(mf)
		if err != nil {
			return err
		}
		d.Nodes[mf.Name] = col
	}
	for _, mf := range m.EdgeFeatures {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !opts.selected(mf.Name, required) {
			continue
		}
		col, err := r.edge(mf)
		if err != nil {
			return err
		}
		d.Edges[mf.Name] = col
	}
	for _, mf := range m.Configs {
		d.Configs[mf.Name] = mf.Meta
	}
	return nil
}

func (r *reader) structure() error {
	f, err := r.open(pathOtype, columnar.KindOtype, 3)
	if err != nil {
		return err
	}
	types, err := f.Uint16s(0)
	if err != nil {
		return err
	}
	pool, err := f.Pool(1)
	if err != nil {
		return err
	}
	names := make([]string, pool.Len())
	for i := range names {
		names[i] = pool.String(uint32(i)) //nolint:gosec
	}
	oslots, err := r.csr(pathOslots, mmap.AccessRandom)
	if err != nil {
		return err
	}
	s, err := precompute.Restore(r.m.MaxSlot, r.m.MaxNode, types, names, oslots)
	if err != nil {
		return err
	}
	r.data.Structure = s
	return nil
}

func (r *reader) boundary() (*precompute.Boundary, error) {
	f, err := r.open(pathBoundary, columnar.KindBoundary, 6)
	if err != nil {
		return nil, err
	}
	b := &precompute.Boundary{}
	if b.First, err = f.Uint32s(0); err != nil {
		return nil, err
	}
	if b.Last, err = f.Uint32s(1); err != nil {
		return nil, err
	}
	if b.StartsAt, err = f.CSR(2); err != nil {
		return nil, err
	}
	if b.EndsAt, err = f.CSR(4); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *reader) node(mf manifest.Feature) (*corpus.NodeColumn, error) {
	vt, err := model.ParseValueType(mf.ValueType)
	if err != nil {
		return nil, err
	}
	col := &corpus.NodeColumn{Name: mf.Name, ValueType: vt, Meta: mf.Meta}
	size := int(r.m.MaxNode) + 1

	if vt == model.ValueInt {
		f, err := r.open(nodePath(mf.Name), columnar.KindNodeFeature, 1)
		if err != nil {
			return nil, err
		}
		data, err := f.Int64s(0)
		if err != nil {
			return nil, err
		}
		if len(data) != size {
			return nil, fmt.Errorf("node feature %s has %d entries, want %d", mf.Name, len(data), size)
		}
		col.Int = columnar.NewIntColumn(data)
		return col, nil
	}

	f, err := r.open(nodePath(mf.Name), columnar.KindNodeFeature, 3)
	if err != nil {
		return nil, err
	}
	index, err := f.Uint32s(0)
	if err != nil {
		return nil, err
	}
	if len(index) != size {
		return nil, fmt.Errorf("node feature %s has %d entries, want %d", mf.Name, len(index), size)
	}
	pool, err := f.Pool(1)
	if err != nil {
		return nil, err
	}
	col.Str = columnar.NewStringColumn(pool, index)
	return col, nil
}

func (r *reader) edge(mf manifest.Feature) (*corpus.EdgeColumn, error) {
	vt, err := model.ParseValueType(mf.ValueType)
	if err != nil {
		return nil, err
	}
	sections := 4
	if mf.EdgeValues {
		sections = 6
		if vt == model.ValueStr {
			sections = 8
		}
	}
	f, err := r.open(edgePath(mf.Name), columnar.KindEdgeFeature, sections)
	if err != nil {
		return nil, err
	}
	_ = f.Advise(mmap.AccessRandom)

	col := &corpus.EdgeColumn{Name: mf.Name, ValueType: vt, EdgeValues: mf.EdgeValues, Meta: mf.Meta}
	if col.Fwd, err = f.CSR(0); err != nil {
		return nil, err
	}
	if col.Inv, err = f.CSR(2); err != nil {
		return nil, err
	}
	if col.Fwd.NumRows() != int(r.m.MaxNode)+1 || col.Inv.NumRows() != int(r.m.MaxNode)+1 {
		return nil, fmt.Errorf("edge feature %s does not cover maxNode %d", mf.Name, r.m.MaxNode)
	}
	if !mf.EdgeValues {
		return col, nil
	}

	if vt == model.ValueInt {
		fwd, err := f.Int64s(4)
		if err != nil {
			return nil, err
		}
		inv, err := f.Int64s(5)
		if err != nil {
			return nil, err
		}
		if len(fwd) != col.Fwd.Len() || len(inv) != col.Inv.Len() {
			return nil, fmt.Errorf("edge feature %s values misaligned", mf.Name)
		}
		col.FwdInt, col.InvInt = columnar.NewIntColumn(fwd), columnar.NewIntColumn(inv)
		return col, nil
	}

	fwd, err := f.Uint32s(4)
	if err != nil {
		return nil, err
	}
	inv, err := f.Uint32s(5)
	if err != nil {
		return nil, err
	}
	if len(fwd) != col.Fwd.Len() || len(inv) != col.Inv.Len() {
		return nil, fmt.Errorf("edge feature %s values misaligned", mf.Name)
	}
	pool, err := f.Pool(6)
	if err != nil {
		return nil, err
	}
	col.FwdStr = columnar.NewStringColumn(pool, fwd)
	col.InvStr = columnar.NewStringColumn(pool, inv)
	return col, nil
}
