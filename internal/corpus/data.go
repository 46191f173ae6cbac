package corpus

import (
	"errors"
	"io"
	"slices"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/precompute"
)

// TextConfig is the section, structure and format configuration declared by
// the otext config feature.
type TextConfig struct {
	SectionTypes      []string
	SectionFeatures   []string
	StructureTypes    []string
	StructureFeatures []string
	Formats           map[string]string
}

// Data is a complete corpus in columnar form.
type Data struct {
	Structure *precompute.Structure

	Levels  []precompute.Level
	LevelOf []int // indexed by type code
	Order   []uint32
	Rank    []uint32
	LevUp   *columnar.CSR
	LevDown *columnar.CSR

	Boundary *precompute.Boundary

	// Sections and Structure trees; nil when their dependencies are missing.
	Sections     *columnar.CSR
	StructureMap *columnar.CSR

	Text    *TextConfig
	Nodes   map[string]*NodeColumn
	Edges   map[string]*EdgeColumn
	Configs map[string]map[string]string

	Warnings []Warning

	typeCodes map[string]uint16
	closers   []io.Closer
}

// MaxSlot returns the number of slots.
func (d *Data) MaxSlot() uint32 { return d.Structure.MaxSlot }

// MaxNode returns the highest node number.
func (d *Data) MaxNode() uint32 { return d.Structure.MaxNode }

// SlotType returns the name of the slot type.
func (d *Data) SlotType() string { return d.Structure.TypeNames[d.Structure.SlotType()] }

// TypeCode returns the code of a node type name.
func (d *Data) TypeCode(name string) (uint16, bool) {
	c, ok := d.typeCodes[name]
	return c, ok
}

// IndexTypes builds the type name lookup. Constructors call it once before
// the Data is shared.
func (d *Data) IndexTypes() {
	d.typeCodes = make(map[string]uint16, len(d.Structure.TypeNames))
	for i, name := range d.Structure.TypeNames {
		d.typeCodes[name] = uint16(i) //nolint:gosec
	}
}

// TypeName returns the type name of node n.
func (d *Data) TypeName(n uint32) string {
	return d.Structure.TypeNames[d.Structure.Types[n]]
}

// Level returns the level index of node n.
func (d *Data) Level(n uint32) int {
	return d.LevelOf[d.Structure.Types[n]]
}

// NodeFeatureNames returns the sorted node feature names.
func (d *Data) NodeFeatureNames() []string {
	names := make([]string, 0, len(d.Nodes))
	for name := range d.Nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// EdgeFeatureNames returns the sorted edge feature names.
func (d *Data) EdgeFeatureNames() []string {
	names := make([]string, 0, len(d.Edges))
	for name := range d.Edges {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AddCloser registers a resource released by Close.
func (d *Data) AddCloser(c io.Closer) {
	d.closers = append(d.closers, c)
}

// Close releases mapped files. Heap-backed data has nothing to release.
func (d *Data) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
