package compiler

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/featfile"
	"github.com/hupe1980/tfgraph/internal/fs"
)

// discover maps feature names to files. A feature found in a later location
// overrides the earlier one with a warning.
func discover(fsys fs.FileSystem, locations []string, log *slog.Logger) (map[string]string, []corpus.Warning, error) {
	if len(locations) == 0 {
		return nil, nil, fmt.Errorf("no corpus locations given")
	}
	files := make(map[string]string)
	var warnings []corpus.Warning
	for _, loc := range locations {
		entries, err := fsys.ReadDir(loc)
		if err != nil {
			return nil, nil, fmt.Errorf("read location: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), featfile.Ext) {
				continue
			}
			path := filepath.Join(loc, e.Name())
			name := featfile.NameOf(path)
			if prev, ok := files[name]; ok {
				w := corpus.Warning{Kind: corpus.WarnOverride, Feature: name, Detail: fmt.Sprintf("%s overrides %s", path, prev)}
				log.Warn("feature overridden", "feature", name, "path", path, "previous", prev)
				warnings = append(warnings, w)
			}
			files[name] = path
		}
	}
	return files, warnings, nil
}

func sortedNames(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
