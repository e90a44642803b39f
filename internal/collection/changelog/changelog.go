// Package changelog keeps a per-collection append-only journal of ledger
// mutations as newline-delimited JSON, supporting pop-based undo.
//
// Undo rewrites the whole file without the popped record, which is O(n) per
// call. Journals stay small at the expected per-collection mutation volume;
// this is a known ceiling, not a target for optimization.
package changelog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/duelkeeper/duelkeeper/internal/fsio"
)

// Record actions.
const (
	ActionAdd    = "ADD"
	ActionRemove = "REMOVE"
)

// Record types.
const (
	TypeSingle = "single"
	TypeBatch  = "batch"
)

// CardData is the snapshot of a mutation's target stored with each record.
// It carries everything needed to re-apply the inverse operation later, even
// when the catalog is unavailable.
type CardData struct {
	CardID          int    `json:"card_id"`
	Name            string `json:"name,omitempty"`
	SetCode         string `json:"set_code,omitempty"`
	Rarity          string `json:"rarity,omitempty"`
	Language        string `json:"language,omitempty"`
	Condition       string `json:"condition,omitempty"`
	FirstEdition    bool   `json:"first_edition,omitempty"`
	ImageID         int    `json:"image_id,omitempty"`
	VariantID       string `json:"variant_id,omitempty"`
	StorageLocation string `json:"storage_location,omitempty"`
}

// Change is one mutation descriptor inside a batch record.
type Change struct {
	Action   string   `json:"action"`
	Quantity int      `json:"quantity"`
	CardData CardData `json:"card_data"`
}

// Record is one journal line: either a single mutation or a batch undone as
// one unit. Timestamp is Unix seconds.
type Record struct {
	ID        int     `json:"id"`
	Timestamp float64 `json:"timestamp"`
	Type      string  `json:"type,omitempty"`

	// Single records.
	Action   string    `json:"action,omitempty"`
	Quantity int       `json:"quantity,omitempty"`
	CardData *CardData `json:"card_data,omitempty"`

	// Batch records.
	Description string   `json:"description,omitempty"`
	Changes     []Change `json:"changes,omitempty"`
}

// IsBatch reports whether the record wraps multiple changes. Records written
// before the type field existed carry no type and are single.
func (r *Record) IsBatch() bool {
	return r.Type == TypeBatch
}

// Manager stores one journal file per collection under a directory.
type Manager struct {
	fs  fsio.FileSystem
	dir string
	now func() time.Time
}

// NewManager creates a changelog manager rooted at dir.
func NewManager(fs fsio.FileSystem, dir string) *Manager {
	return &Manager{fs: fs, dir: dir, now: time.Now}
}

// path returns the journal file for a collection. The name is reduced to its
// base to keep callers from escaping the changelog directory.
func (m *Manager) path(collectionName string) string {
	return filepath.Join(m.dir, filepath.Base(collectionName)+".log")
}

// LogChange appends a single-mutation record. The record id is the current
// record count plus one.
func (m *Manager) LogChange(collectionName, action string, cardData CardData, quantity int) error {
	record := Record{
		Type:     TypeSingle,
		Action:   action,
		Quantity: quantity,
		CardData: &cardData,
	}
	return m.append(collectionName, record)
}

// LogBatchChange appends one record wrapping several mutations, undone later
// as a single atomic unit.
func (m *Manager) LogBatchChange(collectionName, description string, changes []Change) error {
	record := Record{
		Type:        TypeBatch,
		Description: description,
		Changes:     changes,
	}
	return m.append(collectionName, record)
}

func (m *Manager) append(collectionName string, record Record) error {
	history, err := m.LoadHistory(collectionName)
	if err != nil {
		return err
	}

	record.ID = len(history) + 1
	record.Timestamp = float64(m.now().UnixNano()) / float64(time.Second)

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode changelog record: %w", err)
	}
	line = append(line, '\n')

	if err := m.fs.AppendFile(m.path(collectionName), line, 0o644); err != nil {
		return fmt.Errorf("append changelog record: %w", err)
	}

	log.Printf("[Changelog] %s: logged %s record #%d", collectionName, record.Type, record.ID)
	return nil
}

// LoadHistory parses every record of a collection's journal. A corrupt line
// is skipped and logged; it never fails the load.
func (m *Manager) LoadHistory(collectionName string) ([]Record, error) {
	data, err := m.fs.ReadFile(m.path(collectionName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read changelog: %w", err)
	}

	var history []Record
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			log.Printf("[Changelog] %s: skipping corrupt record at line %d: %v", collectionName, lineNo, err)
			continue
		}
		history = append(history, record)
	}
	if err := scanner.Err(); err != nil {
		return history, fmt.Errorf("scan changelog: %w", err)
	}

	return history, nil
}

// LastChange returns the most recent record without removing it, or nil when
// the journal is empty.
func (m *Manager) LastChange(collectionName string) (*Record, error) {
	history, err := m.LoadHistory(collectionName)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[len(history)-1], nil
}

// UndoLastChange pops the most recent record and rewrites the journal
// without it. The popped record is returned so the caller can apply the
// inverse ledger operation; the journal itself performs no inversion.
// Returns nil when the journal is empty.
func (m *Manager) UndoLastChange(collectionName string) (*Record, error) {
	history, err := m.LoadHistory(collectionName)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}

	popped := history[len(history)-1]
	remaining := history[:len(history)-1]

	var buf bytes.Buffer
	for _, record := range remaining {
		line, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode changelog record %d: %w", record.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := m.fs.WriteFileAtomic(m.path(collectionName), buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("rewrite changelog: %w", err)
	}

	return &popped, nil
}
