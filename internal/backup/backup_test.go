package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fastEncryptionConfig keeps key derivation cheap in tests.
func fastEncryptionConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{
		Password:      password,
		Argon2Time:    1,
		Argon2Memory:  1024,
		Argon2Threads: 1,
	}
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	dir := t.TempDir()
	manager := NewManager(dir, "")
	manager.now = func() time.Time {
		return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	}
	return manager, dir
}

func writeCollection(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing collection file: %v", err)
	}
}

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	manager, dir := newTestManager(t)
	writeCollection(t, dir, "binder.json", `{"name":"Binder","cards":[]}`)

	backupPath, err := manager.Backup("binder.json", nil)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if filepath.Base(backupPath) != "binder_20260825_120000.json" {
		t.Errorf("backup name = %q, want timestamped name", filepath.Base(backupPath))
	}

	// Change the live file, then restore the backup over it.
	writeCollection(t, dir, "binder.json", `{"name":"Changed","cards":[]}`)

	restoredPath, err := manager.Restore(backupPath, nil)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if filepath.Base(restoredPath) != "binder.json" {
		t.Errorf("restored name = %q, want binder.json", filepath.Base(restoredPath))
	}

	restored, err := os.ReadFile(restoredPath)
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if string(restored) != `{"name":"Binder","cards":[]}` {
		t.Errorf("restored content = %q, want original content", restored)
	}
}

func TestBackupEncryptedRoundTrip(t *testing.T) {
	manager, dir := newTestManager(t)
	original := `{"name":"Binder","cards":[]}`
	writeCollection(t, dir, "binder.json", original)

	enc := fastEncryptionConfig("opening-the-pod-bay-doors")
	backupPath, err := manager.Backup("binder.json", enc)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if !strings.HasSuffix(backupPath, ".json.enc") {
		t.Errorf("encrypted backup path = %q, want .json.enc suffix", backupPath)
	}

	raw, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte(EncryptionMagicHeader)) {
		t.Error("encrypted backup missing magic header")
	}
	if bytes.Contains(raw, []byte("Binder")) {
		t.Error("encrypted backup contains plaintext")
	}

	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		t.Fatalf("IsEncrypted() error = %v", err)
	}
	if !encrypted {
		t.Error("IsEncrypted() = false for encrypted backup")
	}

	restoredPath, err := manager.Restore(backupPath, enc)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	restored, err := os.ReadFile(restoredPath)
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if string(restored) != original {
		t.Errorf("restored content = %q, want %q", restored, original)
	}
}

func TestRestoreEncryptedRequiresPassword(t *testing.T) {
	manager, dir := newTestManager(t)
	writeCollection(t, dir, "binder.json", `{"name":"Binder"}`)

	enc := fastEncryptionConfig("correct")
	backupPath, err := manager.Backup("binder.json", enc)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	if _, err := manager.Restore(backupPath, nil); err == nil {
		t.Error("Restore() without password succeeded, want error")
	}
	if _, err := manager.Restore(backupPath, fastEncryptionConfig("wrong")); err == nil {
		t.Error("Restore() with wrong password succeeded, want error")
	}
}

func TestRestoreKeepsPreviousFile(t *testing.T) {
	manager, dir := newTestManager(t)
	writeCollection(t, dir, "binder.json", "v1")

	backupPath, err := manager.Backup("binder.json", nil)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	writeCollection(t, dir, "binder.json", "v2")
	if _, err := manager.Restore(backupPath, nil); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	old, err := os.ReadFile(filepath.Join(dir, "binder.json.old.20260825_120000"))
	if err != nil {
		t.Fatalf("previous file not kept: %v", err)
	}
	if string(old) != "v2" {
		t.Errorf("kept file content = %q, want v2", old)
	}
}

func TestListBackups(t *testing.T) {
	manager, dir := newTestManager(t)
	writeCollection(t, dir, "binder.json", `{"name":"Binder"}`)

	if backups, err := manager.List(); err != nil || len(backups) != 0 {
		t.Fatalf("List() on missing dir = %v, %v; want empty, nil", backups, err)
	}

	if _, err := manager.Backup("binder.json", nil); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if _, err := manager.Backup("binder.json", fastEncryptionConfig("pw")); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() returned %d backups, want 2", len(backups))
	}

	encryptedSeen := false
	for _, b := range backups {
		if b.Checksum == "" || b.Size == 0 {
			t.Errorf("backup %s missing checksum or size", b.Name)
		}
		if b.Encrypted {
			encryptedSeen = true
		}
	}
	if !encryptedSeen {
		t.Error("List() did not flag the encrypted backup")
	}
}

// Newest-first ordering holds across collections, not just within one
// collection's lexically sorted backup names.
func TestListBackupsNewestFirstAcrossCollections(t *testing.T) {
	manager, dir := newTestManager(t)
	writeCollection(t, dir, "binder.json", `{"name":"Binder"}`)
	writeCollection(t, dir, "trades.json", `{"name":"Trades"}`)

	olderPath, err := manager.Backup("trades.json", nil)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	newerPath, err := manager.Backup("binder.json", nil)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(olderPath, base, base); err != nil {
		t.Fatalf("setting backup time: %v", err)
	}
	if err := os.Chtimes(newerPath, base.Add(time.Hour), base.Add(time.Hour)); err != nil {
		t.Fatalf("setting backup time: %v", err)
	}

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() returned %d backups, want 2", len(backups))
	}
	if filepath.Base(newerPath) != backups[0].Name || filepath.Base(olderPath) != backups[1].Name {
		t.Errorf("List() order = [%s, %s], want newest first", backups[0].Name, backups[1].Name)
	}
}

func TestEncryptDecryptData(t *testing.T) {
	enc := fastEncryptionConfig("secret")
	plaintext := []byte("collection payload")

	ciphertext, err := EncryptData(plaintext, enc)
	if err != nil {
		t.Fatalf("EncryptData() error = %v", err)
	}
	if bytes.Contains(ciphertext, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := DecryptData(ciphertext, enc)
	if err != nil {
		t.Fatalf("DecryptData() error = %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("DecryptData() = %q, want %q", decrypted, plaintext)
	}

	if _, err := DecryptData(ciphertext, fastEncryptionConfig("other")); err == nil {
		t.Error("DecryptData() with wrong password succeeded, want error")
	}
	if _, err := DecryptData([]byte("short"), enc); err == nil {
		t.Error("DecryptData() on truncated data succeeded, want error")
	}
}

func TestRestoreTargetName(t *testing.T) {
	tests := []struct {
		name       string
		backupName string
		want       string
	}{
		{name: "plain json", backupName: "binder_20260825_120000.json", want: "binder.json"},
		{name: "encrypted yaml", backupName: "trades_20260825_120000.yaml.enc", want: "trades.yaml"},
		{name: "underscored stem", backupName: "my_binder_20260825_120000.json", want: "my_binder.json"},
		{name: "no timestamp", backupName: "binder.json", want: "binder.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := restoreTargetName(tt.backupName); got != tt.want {
				t.Errorf("restoreTargetName(%q) = %q, want %q", tt.backupName, got, tt.want)
			}
		})
	}
}
