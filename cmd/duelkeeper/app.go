package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/duelkeeper/duelkeeper/internal/backup"
	"github.com/duelkeeper/duelkeeper/internal/collection"
	"github.com/duelkeeper/duelkeeper/internal/collection/changelog"
	"github.com/duelkeeper/duelkeeper/internal/config"
	"github.com/duelkeeper/duelkeeper/internal/fsio"
	"github.com/duelkeeper/duelkeeper/internal/pricehistory"
	"github.com/duelkeeper/duelkeeper/internal/ygo/catalog"
)

// app wires the stores and services the subcommands run against.
type app struct {
	cfg *config.Config

	catalogStore *catalog.Store
	cache        *catalog.Cache
	service      *catalog.Service
	watcher      *catalog.Watcher

	collections *collection.Store
	changelog   *changelog.Manager
	backups     *backup.Manager
	history     *pricehistory.Store
}

// newApp loads the configuration and assembles the application. Directories
// are created as needed.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	collectionsDir, err := cfg.CollectionsDir()
	if err != nil {
		return nil, err
	}
	catalogsDir, err := cfg.CatalogsDir()
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{collectionsDir, catalogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}

	fs := fsio.NewOSFileSystem()

	a := &app{
		cfg:          cfg,
		catalogStore: catalog.NewStore(fs, catalogsDir),
		collections:  collection.NewStore(fs, collectionsDir),
		changelog:    changelog.NewManager(fs, collectionsDir),
		backups:      backup.NewManager(collectionsDir, cfg.Backup.Dir),
	}
	a.cache = catalog.NewCache(a.catalogStore)

	if cfg.History.Enabled {
		dbPath, err := cfg.HistoryDBPath()
		if err != nil {
			return nil, err
		}
		history, err := pricehistory.Open(pricehistory.DefaultConfig(dbPath))
		if err != nil {
			// Price history is an enrichment; the ledger works without it.
			log.Printf("[App] Price history unavailable: %v", err)
		} else {
			a.history = history
		}
	}

	timeout, err := cfg.GetCatalogTimeout()
	if err != nil {
		return nil, err
	}
	rateInterval, err := cfg.GetRateInterval()
	if err != nil {
		return nil, err
	}
	client := catalog.NewClientWithConfig(catalog.ClientConfig{
		BaseURL:      cfg.Catalog.BaseURL,
		Timeout:      timeout,
		RateInterval: rateInterval,
		MaxRetries:   cfg.Catalog.MaxRetries,
	})
	var recorder catalog.PriceRecorder
	if a.history != nil {
		recorder = a.history
	}
	a.service = catalog.NewService(client, a.catalogStore, a.cache, recorder)

	if cfg.Data.WatchFiles {
		watcher, err := catalog.NewWatcher(a.catalogStore, a.cache)
		if err != nil {
			log.Printf("[App] Catalog watcher unavailable: %v", err)
		} else {
			a.watcher = watcher
		}
	}

	return a, nil
}

// close releases held resources. Safe to call once.
func (a *app) close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			log.Printf("[App] Error closing watcher: %v", err)
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Printf("[App] Error closing price history: %v", err)
		}
	}
}

// resolveCollectionFile turns a collection name into a store filename. A name
// without an extension maps to "<name>.json"; an existing file of any
// supported extension wins over the default.
func (a *app) resolveCollectionFile(name string) (string, error) {
	names, err := a.collections.List()
	if err != nil {
		return "", err
	}

	for _, existing := range names {
		if existing == name {
			return existing, nil
		}
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		candidate := name + ext
		for _, existing := range names {
			if existing == candidate {
				return existing, nil
			}
		}
	}

	// New collection: default to JSON.
	if filepath.Ext(name) != "" {
		return name, nil
	}
	return name + ".json", nil
}

// loadOrCreateCollection loads a collection file, or starts a fresh one when
// the file does not exist yet.
func (a *app) loadOrCreateCollection(filename, displayName string) (*collection.Collection, error) {
	col, err := a.collections.Load(filename)
	if err == nil {
		return col, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return &collection.Collection{Name: displayName}, nil
	}
	return nil, err
}
