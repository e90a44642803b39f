package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/duelkeeper/duelkeeper/internal/fsio"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	return NewManager(fsio.NewOSFileSystem(), dir), dir
}

func sampleCardData() CardData {
	return CardData{
		CardID:    46986414,
		Name:      "Dark Magician",
		SetCode:   "LOB-EN005",
		Rarity:    "Ultra Rare",
		Language:  "EN",
		Condition: "Near Mint",
		VariantID: "abc",
	}
}

func TestLogChangeAssignsSequentialIDs(t *testing.T) {
	m, _ := newTestManager(t)

	for i := 0; i < 3; i++ {
		if err := m.LogChange("binder", ActionAdd, sampleCardData(), 1); err != nil {
			t.Fatalf("LogChange() error = %v", err)
		}
	}

	history, err := m.LoadHistory("binder")
	if err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	for i, record := range history {
		if record.ID != i+1 {
			t.Errorf("record %d has id %d, want %d", i, record.ID, i+1)
		}
		if record.Timestamp == 0 {
			t.Errorf("record %d has no timestamp", i)
		}
	}
}

// UndoLastChange immediately after LogChange returns exactly the logged
// record, and the history afterwards has one fewer record.
func TestUndoRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.LogChange("binder", ActionAdd, sampleCardData(), 2); err != nil {
		t.Fatal(err)
	}
	if err := m.LogChange("binder", ActionRemove, sampleCardData(), 1); err != nil {
		t.Fatal(err)
	}

	popped, err := m.UndoLastChange("binder")
	if err != nil {
		t.Fatalf("UndoLastChange() error = %v", err)
	}
	if popped == nil {
		t.Fatal("UndoLastChange() = nil, want the last record")
	}
	if popped.Action != ActionRemove || popped.Quantity != 1 {
		t.Errorf("popped = %+v, want the REMOVE record", popped)
	}
	if popped.CardData == nil || popped.CardData.CardID != 46986414 {
		t.Errorf("popped card data = %+v", popped.CardData)
	}

	history, err := m.LoadHistory("binder")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Action != ActionAdd {
		t.Errorf("history after undo = %+v, want only the ADD record", history)
	}
}

func TestUndoEmptyJournal(t *testing.T) {
	m, _ := newTestManager(t)

	popped, err := m.UndoLastChange("binder")
	if err != nil {
		t.Fatalf("UndoLastChange() error = %v", err)
	}
	if popped != nil {
		t.Errorf("popped = %+v, want nil", popped)
	}
}

func TestBatchRecordIsOneUnit(t *testing.T) {
	m, _ := newTestManager(t)

	changes := []Change{
		{Action: ActionAdd, Quantity: 3, CardData: sampleCardData()},
		{Action: ActionAdd, Quantity: 1, CardData: CardData{CardID: 2, SetCode: "SDY-006", Rarity: "Common"}},
	}
	if err := m.LogBatchChange("binder", "structure deck import", changes); err != nil {
		t.Fatalf("LogBatchChange() error = %v", err)
	}

	history, err := m.LoadHistory("binder")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1 (batch is a single record)", len(history))
	}
	record := history[0]
	if !record.IsBatch() || record.Description != "structure deck import" || len(record.Changes) != 2 {
		t.Errorf("record = %+v", record)
	}

	popped, err := m.UndoLastChange("binder")
	if err != nil {
		t.Fatal(err)
	}
	if !popped.IsBatch() || len(popped.Changes) != 2 {
		t.Errorf("popped = %+v, want the whole batch", popped)
	}
}

// A corrupt line is skipped; the rest of the journal still loads.
func TestLoadHistorySkipsCorruptLines(t *testing.T) {
	m, dir := newTestManager(t)

	if err := m.LogChange("binder", ActionAdd, sampleCardData(), 1); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "binder.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{this is not json\n"); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	if err := m.LogChange("binder", ActionRemove, sampleCardData(), 1); err != nil {
		t.Fatal(err)
	}

	history, err := m.LoadHistory("binder")
	if err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2 valid records", len(history))
	}
	if history[0].Action != ActionAdd || history[1].Action != ActionRemove {
		t.Errorf("history = %+v", history)
	}
}

// Records written before the type field existed are treated as single.
func TestLoadHistoryLegacyRecords(t *testing.T) {
	m, dir := newTestManager(t)

	legacy := `{"id":1,"timestamp":1700000000.5,"action":"ADD","quantity":2,"card_data":{"card_id":7}}` + "\n"
	if err := os.WriteFile(filepath.Join(dir, "binder.log"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	history, err := m.LoadHistory("binder")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	if history[0].IsBatch() {
		t.Error("legacy record misclassified as batch")
	}
	if history[0].CardData == nil || history[0].CardData.CardID != 7 {
		t.Errorf("legacy record = %+v", history[0])
	}
}

func TestPathTraversalIsNeutralized(t *testing.T) {
	m, dir := newTestManager(t)

	if err := m.LogChange("../../etc/passwd", ActionAdd, sampleCardData(), 1); err != nil {
		t.Fatalf("LogChange() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "passwd.log") {
		t.Errorf("entries = %v, want the journal inside the changelog dir", entries)
	}
}

func TestLastChangeDoesNotPop(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.LogChange("binder", ActionAdd, sampleCardData(), 1); err != nil {
		t.Fatal(err)
	}

	last, err := m.LastChange("binder")
	if err != nil || last == nil {
		t.Fatalf("LastChange() = (%v, %v)", last, err)
	}

	history, _ := m.LoadHistory("binder")
	if len(history) != 1 {
		t.Errorf("LastChange() modified the journal: %d records", len(history))
	}
}
