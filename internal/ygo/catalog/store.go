package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/duelkeeper/duelkeeper/internal/fsio"
	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// ErrCatalogCorrupt indicates the stored catalog file could not be decoded.
// The remedy is a fresh fetch; the corrupt file is left in place until a
// successful merge replaces it.
var ErrCatalogCorrupt = errors.New("catalog file is corrupt")

// Store persists one catalog file per language under a data directory.
type Store struct {
	fs  fsio.FileSystem
	dir string
}

// NewStore creates a catalog store rooted at dir.
func NewStore(fs fsio.FileSystem, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Path returns the catalog file path for a language. English (or an empty
// language) uses the historical plain filename.
func (s *Store) Path(lang string) string {
	return filepath.Join(s.dir, FileName(lang))
}

// FileName returns the catalog filename for a language.
func FileName(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "en" {
		return "card_db.json"
	}
	return "card_db_" + lang + ".json"
}

// LanguageForFile maps a catalog filename back to its language code.
// The second return is false for files that are not catalog files.
func LanguageForFile(name string) (string, bool) {
	if name == "card_db.json" {
		return "en", true
	}
	if strings.HasPrefix(name, "card_db_") && strings.HasSuffix(name, ".json") {
		return strings.TrimSuffix(strings.TrimPrefix(name, "card_db_"), ".json"), true
	}
	return "", false
}

// Load reads the stored catalog for a language. A missing file yields an
// empty catalog; an undecodable file yields ErrCatalogCorrupt.
func (s *Store) Load(lang string) ([]*cards.Card, error) {
	data, err := s.fs.ReadFile(s.Path(lang))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog %s: %w", lang, err)
	}

	var catalog []*cards.Card
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w: %v", lang, ErrCatalogCorrupt, err)
	}

	return catalog, nil
}

// Save atomically replaces the stored catalog for a language.
func (s *Store) Save(lang string, catalog []*cards.Card) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("encode catalog %s: %w", lang, err)
	}

	if err := s.fs.WriteFileAtomic(s.Path(lang), data, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", lang, err)
	}

	return nil
}

// Dir returns the directory holding the catalog files.
func (s *Store) Dir() string {
	return s.dir
}
