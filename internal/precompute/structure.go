package precompute

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tfgraph/internal/columnar"
)

// ErrStructure indicates otype/oslots data violating the node model.
var ErrStructure = errors.New("precompute: invalid structure")

// Structure is the structural core of a corpus.
//
// Types has one type code per node, indexed by node (index 0 unused).
// Oslots has one row per non-slot node: row i holds the sorted slots of node
// MaxSlot+1+i.
type Structure struct {
	MaxSlot   uint32
	MaxNode   uint32
	Types     []uint16
	TypeNames []string
	Oslots    *columnar.CSR

	self []uint32
}

// NewStructure validates the structural core.
func NewStructure(maxSlot, maxNode uint32, types []uint16, typeNames []string, oslots *columnar.CSR) (*Structure, error) {
	s := &Structure{MaxSlot: maxSlot, MaxNode: maxNode, Types: types, TypeNames: typeNames, Oslots: oslots}
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.self = make([]uint32, maxSlot+1)
	for i := range s.self {
		s.self[i] = uint32(i) //nolint:gosec
	}
	return s, nil
}

func (s *Structure) validate() error {
	if s.MaxSlot == 0 || s.MaxNode < s.MaxSlot {
		return fmt.Errorf("%w: maxSlot %d, maxNode %d", ErrStructure, s.MaxSlot, s.MaxNode)
	}
	if len(s.Types) != int(s.MaxNode)+1 {
		return fmt.Errorf("%w: %d type codes for %d nodes", ErrStructure, len(s.Types)-1, s.MaxNode)
	}
	if want := int(s.MaxNode - s.MaxSlot); s.Oslots.NumRows() != want {
		return fmt.Errorf("%w: oslots has %d rows, want %d", ErrStructure, s.Oslots.NumRows(), want)
	}
	slotType := s.Types[1]
	for n := uint32(1); n <= s.MaxNode; n++ {
		code := s.Types[n]
		if int(code) >= len(s.TypeNames) {
			return fmt.Errorf("%w: node %d has unknown type code %d", ErrStructure, n, code)
		}
		if n <= s.MaxSlot {
			if code != slotType {
				return fmt.Errorf("%w: slot %d is not of slot type %q", ErrStructure, n, s.TypeNames[slotType])
			}
			continue
		}
		if code == slotType {
			return fmt.Errorf("%w: node %d of slot type %q lies beyond maxSlot %d", ErrStructure, n, s.TypeNames[slotType], s.MaxSlot)
		}
		row := s.Oslots.Row(int(n - s.MaxSlot - 1))
		if len(row) == 0 {
			return fmt.Errorf("%w: node %d has no slots", ErrStructure, n)
		}
		for i, slot := range row {
			if slot == 0 || slot > s.MaxSlot {
				return fmt.Errorf("%w: node %d links to %d, which is not a slot", ErrStructure, n, slot)
			}
			if i > 0 && row[i-1] >= slot {
				return fmt.Errorf("%w: slots of node %d are not strictly ascending", ErrStructure, n)
			}
		}
	}
	return nil
}

// SlotType returns the type code shared by all slots.
func (s *Structure) SlotType() uint16 { return s.Types[1] }

// IsSlot reports whether n is a slot node.
func (s *Structure) IsSlot(n uint32) bool { return n >= 1 && n <= s.MaxSlot }

// Slots returns the sorted slots of n. A slot yields itself.
func (s *Structure) Slots(n uint32) []uint32 {
	if n <= s.MaxSlot {
		return s.self[n : n+1 : n+1]
	}
	return s.Oslots.Row(int(n - s.MaxSlot - 1))
}

func (s *Structure) first(n uint32) uint32 { return s.Slots(n)[0] }

func (s *Structure) last(n uint32) uint32 {
	sl := s.Slots(n)
	return sl[len(sl)-1]
}

// Restore rebuilds a Structure from compiled arrays without revalidating
// every row; compiled builds were validated when they were written.
func Restore(maxSlot, maxNode uint32, types []uint16, typeNames []string, oslots *columnar.CSR) (*Structure, error) {
	s := &Structure{MaxSlot: maxSlot, MaxNode: maxNode, Types: types, TypeNames: typeNames, Oslots: oslots}
	if maxSlot == 0 || maxNode < maxSlot || len(types) != int(maxNode)+1 || oslots.NumRows() != int(maxNode-maxSlot) {
		return nil, fmt.Errorf("%w: compiled arrays do not match maxSlot %d, maxNode %d", ErrStructure, maxSlot, maxNode)
	}
	s.self = make([]uint32, maxSlot+1)
	for i := range s.self {
		s.self[i] = uint32(i) //nolint:gosec
	}
	return s, nil
}
