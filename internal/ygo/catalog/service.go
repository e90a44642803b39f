package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// Fetcher supplies a freshly fetched remote snapshot for a language.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, lang string) ([]*cards.Card, error)
}

// PriceRecorder receives price samples after each successful merge. Recording
// is best-effort; failures are logged, never propagated.
type PriceRecorder interface {
	RecordMergePrices(ctx context.Context, lang string, catalog []*cards.Card, at time.Time) error
}

// Service ties fetch, merge and persistence together.
type Service struct {
	fetcher Fetcher
	store   *Store
	cache   *Cache
	history PriceRecorder // optional
}

// NewService creates a catalog service. history may be nil to disable price
// recording.
func NewService(fetcher Fetcher, store *Store, cache *Cache, history PriceRecorder) *Service {
	return &Service{
		fetcher: fetcher,
		store:   store,
		cache:   cache,
		history: history,
	}
}

// Sync fetches a fresh snapshot for a language, merges it against the stored
// catalog and atomically replaces the catalog file. Returns the number of
// cards in the new catalog.
//
// Sync is fail-closed: if the fetch fails, the merge does not run and the
// stored catalog is untouched.
func (s *Service) Sync(ctx context.Context, lang string) (int, error) {
	log.Printf("[Catalog] Fetching %q snapshot...", lang)
	snapshot, err := s.fetcher.FetchSnapshot(ctx, lang)
	if err != nil {
		return 0, fmt.Errorf("fetch snapshot: %w", err)
	}
	log.Printf("[Catalog] Fetched %d cards", len(snapshot))

	local, err := s.store.Load(lang)
	if err != nil {
		if !errors.Is(err, ErrCatalogCorrupt) {
			return 0, fmt.Errorf("load local catalog: %w", err)
		}
		// A corrupt local catalog means the refetch we just did is the
		// recovery path. Merge against an empty catalog; customizations in
		// the corrupt file are unrecoverable.
		log.Printf("[Catalog] Local %q catalog is corrupt, rebuilding from snapshot: %v", lang, err)
		local = nil
	}

	merged := Merge(local, snapshot)

	if err := s.store.Save(lang, merged); err != nil {
		return 0, fmt.Errorf("save merged catalog: %w", err)
	}
	s.cache.Put(lang, merged)
	log.Printf("[Catalog] Saved %q catalog with %d cards", lang, len(merged))

	if s.history != nil {
		if err := s.history.RecordMergePrices(ctx, lang, merged, time.Now()); err != nil {
			log.Printf("[Catalog] Failed to record price history: %v", err)
		}
	}

	return len(merged), nil
}

// Card resolves a card by id in a language's catalog.
func (s *Service) Card(lang string, cardID int) (*cards.Card, bool) {
	return s.cache.Card(lang, cardID)
}
