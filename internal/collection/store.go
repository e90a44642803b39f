package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duelkeeper/duelkeeper/internal/fsio"
)

// ErrUnsupportedFormat indicates a collection filename with an extension the
// store cannot encode or decode.
var ErrUnsupportedFormat = errors.New("unsupported collection file format")

// Store persists collections as JSON or YAML files, chosen by extension,
// under a single data directory.
type Store struct {
	fs  fsio.FileSystem
	dir string
}

// NewStore creates a collection store rooted at dir.
func NewStore(fs fsio.FileSystem, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// List returns the collection filenames available in the store, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads a collection file. Corruption is fatal and surfaced to the
// caller; a collection cannot be partially loaded.
func (s *Store) Load(filename string) (*Collection, error) {
	data, err := s.fs.ReadFile(s.path(filename))
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", filename, err)
	}

	col := &Collection{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		if err := json.Unmarshal(data, col); err != nil {
			return nil, fmt.Errorf("decode collection %s: %w", filename, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, col); err != nil {
			return nil, fmt.Errorf("decode collection %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}

	return col, nil
}

// Save atomically replaces a collection file.
func (s *Store) Save(col *Collection, filename string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		data, err = json.MarshalIndent(col, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(col)
	default:
		return fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", filename, err)
	}

	if err := s.fs.WriteFileAtomic(s.path(filename), data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", filename, err)
	}
	return nil
}

// Path returns the absolute path of a collection file inside the store.
func (s *Store) Path(filename string) string {
	return s.path(filename)
}

func (s *Store) path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}
