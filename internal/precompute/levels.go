package precompute

import (
	"cmp"
	"slices"
)

// Level describes one node type.
type Level struct {
	Type     string  `json:"type"`
	AvgSlots float64 `json:"avgSlots"`
	Min      uint32  `json:"min"`
	Max      uint32  `json:"max"`
}

// Levels orders node types by average slots per node, slot type first,
// breaking ties by name. It also returns the level index of every type code.
func Levels(s *Structure) ([]Level, []int) {
	type acc struct {
		count, slots uint64
		min, max     uint32
	}
	accs := make([]acc, len(s.TypeNames))
	for n := uint32(1); n <= s.MaxNode; n++ {
		a := &accs[s.Types[n]]
		if a.count == 0 {
			a.min = n
		}
		a.max = n
		a.count++
		a.slots += uint64(len(s.Slots(n)))
	}

	slotType := s.SlotType()
	codes := make([]int, 0, len(accs))
	levels := make([]Level, len(accs))
	for code, a := range accs {
		if a.count == 0 {
			continue
		}
		codes = append(codes, code)
		levels[code] = Level{
			Type:     s.TypeNames[code],
			AvgSlots: float64(a.slots) / float64(a.count),
			Min:      a.min,
			Max:      a.max,
		}
	}
	slices.SortFunc(codes, func(a, b int) int {
		switch {
		case a == int(slotType):
			return -1
		case b == int(slotType):
			return 1
		}
		if c := cmp.Compare(levels[a].AvgSlots, levels[b].AvgSlots); c != 0 {
			return c
		}
		return cmp.Compare(levels[a].Type, levels[b].Type)
	})

	out := make([]Level, len(codes))
	levelOf := make([]int, len(s.TypeNames))
	for i, code := range codes {
		out[i] = levels[code]
		levelOf[code] = i
	}
	return out, levelOf
}
