package compiler

import (
	"fmt"
	"strings"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/precompute"
)

// otext metadata keys.
const (
	metaSectionTypes      = "sectionTypes"
	metaSectionFeatures   = "sectionFeatures"
	metaStructureTypes    = "structureTypes"
	metaStructureFeatures = "structureFeatures"
	metaFormatPrefix      = "fmt:"
)

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTextConfig(meta map[string]string) *corpus.TextConfig {
	tc := &corpus.TextConfig{
		SectionTypes:      splitList(meta[metaSectionTypes]),
		SectionFeatures:   splitList(meta[metaSectionFeatures]),
		StructureTypes:    splitList(meta[metaStructureTypes]),
		StructureFeatures: splitList(meta[metaStructureFeatures]),
		Formats:           map[string]string{},
	}
	for k, v := range meta {
		if name, ok := strings.CutPrefix(k, metaFormatPrefix); ok {
			tc.Formats[name] = v
		}
	}
	return tc
}

// requiredFeatures returns the features the text configuration depends on.
func requiredFeatures(tc *corpus.TextConfig) map[string]bool {
	req := map[string]bool{}
	if tc == nil {
		return req
	}
	for _, f := range tc.SectionFeatures {
		req[f] = true
	}
	for _, f := range tc.StructureFeatures {
		req[f] = true
	}
	return req
}

// hierarchyTypes resolves the type codes of a section or structure
// hierarchy, or reports the first missing dependency.
func hierarchyTypes(s *precompute.Structure, types, features []string, files map[string]string) ([]uint16, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("no types declared")
	}
	if len(features) != len(types) {
		return nil, fmt.Errorf("%d types but %d label features declared", len(types), len(features))
	}
	codes := make([]uint16, len(types))
	for i, t := range types {
		found := false
		for code, name := range s.TypeNames {
			if name == t {
				codes[i], found = uint16(code), true //nolint:gosec
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("type %q does not occur in otype", t)
		}
	}
	for _, f := range features {
		if _, ok := files[f]; !ok {
			return nil, fmt.Errorf("feature %q not found", f)
		}
	}
	return codes, nil
}
