package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/fs"
)

const (
	ManifestFileName = "MANIFEST.json"
	CurrentFileName  = "CURRENT"
	LockFileName     = "LOCK"

	// FormatVersion is the version of the compiled corpus layout. Caches of
	// other versions live in sibling directories and are never read.
	FormatVersion = 1
)

// Manifest enumerates everything a compiled corpus contains.
type Manifest struct {
	FormatVersion int              `json:"formatVersion"`
	MaxSlot       uint32           `json:"maxSlot"`
	MaxNode       uint32           `json:"maxNode"`
	SlotType      string           `json:"slotType"`
	Types         []string         `json:"types"`
	Levels        []Level          `json:"levels"`
	Compression   string           `json:"compression"`
	NodeFeatures  []Feature        `json:"nodeFeatures"`
	EdgeFeatures  []Feature        `json:"edgeFeatures"`
	Configs       []Feature        `json:"configs,omitempty"`
	Text          *Text            `json:"text,omitempty"`
	Sections      bool             `json:"sections"`
	Structure     bool             `json:"structure"`
	Warnings      []corpus.Warning `json:"warnings,omitempty"`
}

// Level mirrors one entry of the level table.
type Level struct {
	Type     string  `json:"type"`
	AvgSlots float64 `json:"avgSlots"`
	Min      uint32  `json:"min"`
	Max      uint32  `json:"max"`
}

// Feature describes one compiled feature.
type Feature struct {
	Name       string            `json:"name"`
	ValueType  string            `json:"valueType,omitempty"`
	EdgeValues bool              `json:"edgeValues,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// Text is the text configuration declared by the otext feature. Sections
// and Structure on the manifest report whether the trees were computed.
type Text struct {
	SectionTypes      []string          `json:"sectionTypes,omitempty"`
	SectionFeatures   []string          `json:"sectionFeatures,omitempty"`
	StructureTypes    []string          `json:"structureTypes,omitempty"`
	StructureFeatures []string          `json:"structureFeatures,omitempty"`
	Formats           map[string]string `json:"formats,omitempty"`
}

// Encode writes m as indented JSON.
func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Decode reads a manifest and checks its version.
func Decode(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if m.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrIncompatibleVersion, m.FormatVersion, FormatVersion)
	}
	return m, nil
}

// Store manages the CURRENT pointer and build manifests under a cache root.
type Store struct {
	fs   fs.FileSystem
	root string
}

// NewStore creates a store rooted at root. A nil fsys means fs.Default.
func NewStore(fsys fs.FileSystem, root string) *Store {
	if fsys == nil {
		fsys = fs.Default
	}
	return &Store{fs: fsys, root: root}
}

// Root returns the cache root.
func (s *Store) Root() string { return s.root }

// LockPath returns the path of the compile lock file.
func (s *Store) LockPath() string { return filepath.Join(s.root, LockFileName) }

// Current returns the directory of the published build.
func (s *Store) Current() (string, error) {
	b, err := s.fs.ReadFile(filepath.Join(s.root, CurrentFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	name := strings.TrimSpace(string(b))
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: CURRENT names %q", ErrCorrupt, name)
	}
	return filepath.Join(s.root, name), nil
}

// Load resolves CURRENT and reads the manifest of that build.
func (s *Store) Load() (*Manifest, string, error) {
	dir, err := s.Current()
	if err != nil {
		return nil, "", err
	}
	b, err := s.fs.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	m, err := Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", err
	}
	return m, dir, nil
}

// Write writes the manifest into a build directory.
func (s *Store) Write(dir string, m *Manifest) error {
	m.FormatVersion = FormatVersion
	return fs.CreateFile(s.fs, filepath.Join(dir, ManifestFileName), m.Encode)
}

// Publish atomically points CURRENT at the build directory name.
func (s *Store) Publish(build string) error {
	return fs.WriteFileAtomic(s.fs, filepath.Join(s.root, CurrentFileName), []byte(build+"\n"))
}
