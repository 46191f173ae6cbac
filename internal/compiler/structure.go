package compiler

import (
	"slices"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/featfile"
	"github.com/hupe1980/tfgraph/internal/precompute"
	"github.com/hupe1980/tfgraph/model"
)

// typesFromOtype assigns type codes in sorted name order and derives the
// slot type, maxSlot and maxNode. Every node up to maxNode must be typed.
func typesFromOtype(otype *featfile.Feature) (codes []uint16, names []string, maxSlot, maxNode uint32, err error) {
	if otype.Kind != featfile.KindNode || otype.ValueType != model.ValueStr {
		return nil, nil, 0, 0, structuralf("otype must be a string node feature")
	}
	if len(otype.Nodes) == 0 {
		return nil, nil, 0, 0, structuralf("otype is empty")
	}

	for _, n := range otype.Nodes {
		maxNode = max(maxNode, uint32(n))
	}
	names = slices.Clone(otype.Strs)
	slices.Sort(names)
	names = slices.Compact(names)
	if len(names) > 1<<16-1 {
		return nil, nil, 0, 0, structuralf("%d node types exceed the type code width", len(names))
	}

	byName := make(map[string]uint16, len(names))
	for i, name := range names {
		byName[name] = uint16(i) //nolint:gosec
	}
	const untyped = 1<<16 - 1
	codes = make([]uint16, maxNode+1)
	for i := range codes {
		codes[i] = untyped
	}
	for i, n := range otype.Nodes {
		codes[n] = byName[otype.Strs[i]]
	}
	for n := uint32(1); n <= maxNode; n++ {
		if codes[n] == untyped {
			return nil, nil, 0, 0, structuralf("node %d has no type", n)
		}
	}
	codes[0] = codes[1]

	slotType := codes[1]
	maxSlot = 1
	for maxSlot < maxNode && codes[maxSlot+1] == slotType {
		maxSlot++
	}
	return codes, names, maxSlot, maxNode, nil
}

// oslotsRows builds one sorted slot row per non-slot node.
func oslotsRows(oslots *featfile.Feature, maxSlot, maxNode uint32) (*columnar.CSR, error) {
	if oslots.Kind != featfile.KindEdge || oslots.EdgeValues {
		return nil, structuralf("oslots must be an edge feature without values")
	}
	rows := make([][]uint32, maxNode-maxSlot)
	for i := range oslots.From {
		n, s := uint32(oslots.From[i]), uint32(oslots.To[i])
		if n <= maxSlot || n > maxNode {
			return nil, structuralf("oslots assigns slots to node %d outside %d-%d", n, maxSlot+1, maxNode)
		}
		rows[n-maxSlot-1] = append(rows[n-maxSlot-1], s)
	}
	for i, r := range rows {
		slices.Sort(r)
		rows[i] = slices.Compact(r)
	}
	return columnar.BuildCSR(rows), nil
}

// buildStructure derives the structural core from otype and the oslots
// feature, which is parsed only once maxSlot is known.
func buildStructure(otype *featfile.Feature, oslots func(start model.Node) (*featfile.Feature, error)) (*precompute.Structure, error) {
	codes, names, maxSlot, maxNode, err := typesFromOtype(otype)
	if err != nil {
		return nil, err
	}
	f, err := oslots(model.Node(maxSlot + 1))
	if err != nil {
		return nil, structuralf("%v", err)
	}
	csr, err := oslotsRows(f, maxSlot, maxNode)
	if err != nil {
		return nil, err
	}
	s, err := precompute.NewStructure(maxSlot, maxNode, codes, names, csr)
	if err != nil {
		return nil, structuralf("%v", err)
	}
	return s, nil
}
