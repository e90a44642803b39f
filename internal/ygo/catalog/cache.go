package catalog

import (
	"strings"
	"sync"

	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// Cache holds decoded catalogs keyed by language, loading from the store on
// first access. Invalidation is explicit: callers (or the file watcher)
// invalidate a language when its file changes on disk.
type Cache struct {
	store *Store

	mu     sync.RWMutex
	byLang map[string][]*cards.Card
	index  map[string]map[int]*cards.Card
}

// NewCache creates a cache backed by the given store.
func NewCache(store *Store) *Cache {
	return &Cache{
		store:  store,
		byLang: make(map[string][]*cards.Card),
		index:  make(map[string]map[int]*cards.Card),
	}
}

// Get returns the catalog for a language, loading it on a cache miss.
// Language keys are case-insensitive.
func (c *Cache) Get(lang string) ([]*cards.Card, error) {
	lang = strings.ToLower(lang)
	c.mu.RLock()
	catalog, ok := c.byLang[lang]
	c.mu.RUnlock()
	if ok {
		return catalog, nil
	}

	catalog, err := c.store.Load(lang)
	if err != nil {
		return nil, err
	}

	c.Put(lang, catalog)
	return catalog, nil
}

// Card looks up a single card by id in the given language's catalog.
func (c *Cache) Card(lang string, cardID int) (*cards.Card, bool) {
	lang = strings.ToLower(lang)
	if _, err := c.Get(lang); err != nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	card, ok := c.index[lang][cardID]
	return card, ok
}

// Put replaces the cached catalog for a language.
func (c *Cache) Put(lang string, catalog []*cards.Card) {
	lang = strings.ToLower(lang)
	idx := make(map[int]*cards.Card, len(catalog))
	for _, card := range catalog {
		idx[card.ID] = card
	}

	c.mu.Lock()
	c.byLang[lang] = catalog
	c.index[lang] = idx
	c.mu.Unlock()
}

// Invalidate drops the cached catalog for a language. The next Get reloads
// from disk.
func (c *Cache) Invalidate(lang string) {
	lang = strings.ToLower(lang)
	c.mu.Lock()
	delete(c.byLang, lang)
	delete(c.index, lang)
	c.mu.Unlock()
}

// InvalidateAll drops every cached catalog.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.byLang = make(map[string][]*cards.Card)
	c.index = make(map[string]map[int]*cards.Card)
	c.mu.Unlock()
}

// Languages returns the languages currently held in the cache.
func (c *Cache) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langs := make([]string, 0, len(c.byLang))
	for lang := range c.byLang {
		langs = append(langs, lang)
	}
	return langs
}
