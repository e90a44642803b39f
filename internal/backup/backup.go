// Package backup copies collection files into a backup directory with
// checksum verification, and optionally encrypts them with a passphrase.
package backup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// encryptedExt marks encrypted backup files.
const encryptedExt = ".enc"

// timestampSuffix matches the timestamp a backup name carries before its
// extension, e.g. "binder_20260825_120000.json".
var timestampSuffix = regexp.MustCompile(`_\d{8}_\d{6}$`)

// Manager creates and restores backups of collection files.
type Manager struct {
	collectionsDir string
	backupDir      string
	now            func() time.Time
}

// NewManager returns a manager for the given collections directory. An empty
// backupDir defaults to a "backups" subdirectory next to the collections.
func NewManager(collectionsDir, backupDir string) *Manager {
	if backupDir == "" {
		backupDir = filepath.Join(collectionsDir, "backups")
	}
	return &Manager{
		collectionsDir: collectionsDir,
		backupDir:      backupDir,
		now:            time.Now,
	}
}

// Info describes one backup file.
type Info struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	Checksum  string
	Encrypted bool
}

// Backup copies one collection file into the backup directory under a
// timestamped name and verifies the copy against the source checksum.
// A non-nil encryption config produces an encrypted backup instead.
func (m *Manager) Backup(fileName string, enc *EncryptionConfig) (string, error) {
	sourcePath := filepath.Join(m.collectionsDir, filepath.Base(fileName))
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to read collection file: %w", err)
	}

	if err := os.MkdirAll(m.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := filepath.Base(fileName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := m.now().Format("20060102_150405")
	backupName := fmt.Sprintf("%s_%s%s", stem, stamp, ext)

	payload := data
	if enc != nil {
		encrypted, err := EncryptData(data, enc)
		if err != nil {
			return "", fmt.Errorf("encryption failed: %w", err)
		}
		payload = append([]byte(EncryptionMagicHeader), encrypted...)
		backupName += encryptedExt
	}

	backupPath := filepath.Join(m.backupDir, backupName)
	if err := os.WriteFile(backupPath, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}

	if err := m.verify(backupPath, data, enc); err != nil {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	return backupPath, nil
}

// verify re-reads the written backup and checks its content (decrypted if
// necessary) against the source checksum.
func (m *Manager) verify(backupPath string, source []byte, enc *EncryptionConfig) error {
	written, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to re-read backup: %w", err)
	}

	if enc != nil {
		if !bytes.HasPrefix(written, []byte(EncryptionMagicHeader)) {
			return fmt.Errorf("encrypted backup missing magic header")
		}
		written, err = DecryptData(written[len(EncryptionMagicHeader):], enc)
		if err != nil {
			return err
		}
	}

	if checksum(written) != checksum(source) {
		return fmt.Errorf("checksum mismatch")
	}
	return nil
}

// Restore copies a backup file back into the collections directory under
// its original name, decrypting it when it carries the encrypted header.
// The current collection file, if present, is kept next to it with an
// ".old" timestamp suffix.
func (m *Manager) Restore(backupPath string, enc *EncryptionConfig) (string, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to read backup file: %w", err)
	}

	if bytes.HasPrefix(data, []byte(EncryptionMagicHeader)) {
		if enc == nil {
			return "", fmt.Errorf("backup is encrypted, password required")
		}
		data, err = DecryptData(data[len(EncryptionMagicHeader):], enc)
		if err != nil {
			return "", err
		}
	}

	targetName := restoreTargetName(filepath.Base(backupPath))
	targetPath := filepath.Join(m.collectionsDir, targetName)

	if _, err := os.Stat(targetPath); err == nil {
		oldPath := targetPath + ".old." + m.now().Format("20060102_150405")
		if err := os.Rename(targetPath, oldPath); err != nil {
			return "", fmt.Errorf("failed to set aside current collection: %w", err)
		}
	}

	if err := os.WriteFile(targetPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write restored collection: %w", err)
	}

	return targetPath, nil
}

// List returns all backup files in the backup directory, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(m.backupDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			Path:      path,
			Name:      entry.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Checksum:  checksum(data),
			Encrypted: bytes.HasPrefix(data, []byte(EncryptionMagicHeader)),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].ModTime.After(backups[j].ModTime)
		}
		return backups[i].Name < backups[j].Name
	})

	return backups, nil
}

// BackupDir returns the directory backups are written to.
func (m *Manager) BackupDir() string {
	return m.backupDir
}

// restoreTargetName recovers the original collection file name from a
// backup name: the encrypted suffix and the timestamp are stripped.
func restoreTargetName(backupName string) string {
	name := strings.TrimSuffix(backupName, encryptedExt)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stem = timestampSuffix.ReplaceAllString(stem, "")
	return stem + ext
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
