package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/fs"
	"github.com/hupe1980/tfgraph/internal/manifest"
	"github.com/hupe1980/tfgraph/internal/precompute"
)

// Build directory layout, relative to the build root.
const (
	dirStruct  = "struct"
	dirPrecomp = "precomp"
	dirNode    = "node"
	dirEdge    = "edge"
	fileExt    = ".tfb"

	pathOtype     = dirStruct + "/otype" + fileExt
	pathOslots    = dirStruct + "/oslots" + fileExt
	pathOrder     = dirPrecomp + "/order" + fileExt
	pathRank      = dirPrecomp + "/rank" + fileExt
	pathLevUp     = dirPrecomp + "/levup" + fileExt
	pathLevDown   = dirPrecomp + "/levdown" + fileExt
	pathBoundary  = dirPrecomp + "/boundary" + fileExt
	pathSections  = dirPrecomp + "/sections" + fileExt
	pathStructure = dirPrecomp + "/structure" + fileExt
)

func nodePath(name string) string { return dirNode + "/" + name + fileExt }
func edgePath(name string) string { return dirEdge + "/" + name + fileExt }

// writer serializes corpus parts into a staging directory that becomes a
// build directory on commit.
type writer struct {
	fs          fs.FileSystem
	root        string
	name        string
	staging     string
	compression columnar.Compression
}

func newWriter(fsys fs.FileSystem, root string, compression columnar.Compression) (*writer, error) {
	name := uuid.NewString()
	w := &writer{
		fs:          fsys,
		root:        root,
		name:        name,
		staging:     filepath.Join(root, "."+name+".tmp"),
		compression: compression,
	}
	for _, d := range []string{dirStruct, dirPrecomp, dirNode, dirEdge} {
		if err := fsys.MkdirAll(filepath.Join(w.staging, d), 0o755); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *writer) write(rel string, cw *columnar.Writer) error {
	path := filepath.Join(w.staging, filepath.FromSlash(rel))
	err := fs.CreateFile(w.fs, path, func(out io.Writer) error {
		_, err := cw.WriteTo(out)
		return err
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

func (w *writer) otype(s *precompute.Structure) error {
	cw := columnar.NewWriter(columnar.KindOtype)
	cw.AddUint16s(s.Types)
	if err := cw.AddPool(columnar.BuildPool(s.TypeNames), columnar.CompressionNone); err != nil {
		return err
	}
	return w.write(pathOtype, cw)
}

func (w *writer) csr(rel string, c *columnar.CSR) error {
	cw := columnar.NewWriter(columnar.KindCSR)
	cw.AddCSR(c)
	return w.write(rel, cw)
}

func (w *writer) uint32s(rel string, v []uint32) error {
	cw := columnar.NewWriter(columnar.KindUint32s)
	cw.AddUint32s(v)
	return w.write(rel, cw)
}

func (w *writer) boundary(b *precompute.Boundary) error {
	cw := columnar.NewWriter(columnar.KindBoundary)
	cw.AddUint32s(b.First)
	cw.AddUint32s(b.Last)
	cw.AddCSR(b.StartsAt)
	cw.AddCSR(b.EndsAt)
	return w.write(pathBoundary, cw)
}

func (w *writer) node(col *corpus.NodeColumn) error {
	cw := columnar.NewWriter(columnar.KindNodeFeature)
	if col.Int != nil {
		cw.SetFlags(columnar.FlagIntValues)
		cw.AddInt64s(col.Int.Data())
	} else {
		cw.AddUint32s(col.Str.Index())
		if err := cw.AddPool(col.Str.Pool(), w.compression); err != nil {
			return err
		}
	}
	return w.write(nodePath(col.Name), cw)
}

func (w *writer) edge(col *corpus.EdgeColumn) error {
	cw := columnar.NewWriter(columnar.KindEdgeFeature)
	cw.AddCSR(col.Fwd)
	cw.AddCSR(col.Inv)
	if col.EdgeValues {
		flags := columnar.FlagEdgeValues
		if col.FwdInt != nil {
			flags |= columnar.FlagIntValues
			cw.AddInt64s(col.FwdInt.Data())
			cw.AddInt64s(col.InvInt.Data())
		} else {
			cw.AddUint32s(col.FwdStr.Index())
			cw.AddUint32s(col.InvStr.Index())
			if err := cw.AddPool(col.FwdStr.Pool(), w.compression); err != nil {
				return err
			}
		}
		cw.SetFlags(flags | cw.Flags())
	}
	return w.write(edgePath(col.Name), cw)
}

// all serializes every part of an assembled corpus.
func (w *writer) all(ctx context.Context, d *corpus.Data) error {
	steps := []func() error{
		func() error { return w.otype(d.Structure) },
		func() error { return w.csr(pathOslots, d.Structure.Oslots) },
		func() error { return w.uint32s(pathOrder, d.Order) },
		func() error { return w.uint32s(pathRank, d.Rank) },
		func() error { return w.csr(pathLevUp, d.LevUp) },
		func() error { return w.csr(pathLevDown, d.LevDown) },
		func() error { return w.boundary(d.Boundary) },
	}
	if d.Sections != nil {
		steps = append(steps, func() error { return w.csr(pathSections, d.Sections) })
	}
	if d.StructureMap != nil {
		steps = append(steps, func() error { return w.csr(pathStructure, d.StructureMap) })
	}
	for _, name := range d.NodeFeatureNames() {
		steps = append(steps, func() error { return w.node(d.Nodes[name]) })
	}
	for _, name := range d.EdgeFeatureNames() {
		steps = append(steps, func() error { return w.edge(d.Edges[name]) })
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// commit writes the manifest, moves the staging directory to its final
// name and points CURRENT at it.
func (w *writer) commit(store *manifest.Store, m *manifest.Manifest) (string, error) {
	if err := store.Write(w.staging, m); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	final := filepath.Join(w.root, w.name)
	if err := w.fs.Rename(w.staging, final); err != nil {
		return "", fmt.Errorf("publish build: %w", err)
	}
	if err := store.Publish(w.name); err != nil {
		if rerr := w.fs.RemoveAll(final); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return "", fmt.Errorf("publish build: %w", err)
	}
	return final, nil
}

func (w *writer) abort() error {
	return w.fs.RemoveAll(w.staging)
}

// manifestOf describes an assembled corpus.
func manifestOf(d *corpus.Data, compression columnar.Compression) *manifest.Manifest {
	m := &manifest.Manifest{
		MaxSlot:     d.MaxSlot(),
		MaxNode:     d.MaxNode(),
		SlotType:    d.SlotType(),
		Types:       d.Structure.TypeNames,
		Compression: compression.String(),
		Warnings:    d.Warnings,
	}
	for _, l := range d.Levels {
		m.Levels = append(m.Levels, manifest.Level(l))
	}
	for _, name := range d.NodeFeatureNames() {
		c := d.Nodes[name]
		m.NodeFeatures = append(m.NodeFeatures, manifest.Feature{Name: name, ValueType: c.ValueType.String(), Meta: c.Meta})
	}
	for _, name := range d.EdgeFeatureNames() {
		c := d.Edges[name]
		m.EdgeFeatures = append(m.EdgeFeatures, manifest.Feature{
			Name: name, ValueType: c.ValueType.String(), EdgeValues: c.EdgeValues, Meta: c.Meta,
		})
	}
	for _, name := range sortedNames(configNames(d.Configs)) {
		m.Configs = append(m.Configs, manifest.Feature{Name: name, Meta: d.Configs[name]})
	}
	if d.Text != nil {
		m.Text = (*manifest.Text)(d.Text)
	}
	m.Sections = d.Sections != nil
	m.Structure = d.StructureMap != nil
	return m
}

func configNames(configs map[string]map[string]string) map[string]string {
	out := make(map[string]string, len(configs))
	for name := range configs {
		out[name] = name
	}
	return out
}
