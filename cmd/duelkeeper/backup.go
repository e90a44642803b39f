package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/duelkeeper/duelkeeper/internal/backup"
)

// passwordEnvVar supplies the backup passphrase without putting it on the
// command line.
const passwordEnvVar = "DUELKEEPER_BACKUP_PASSWORD"

func runBackupCommand(args []string) {
	if len(args) == 0 {
		printBackupUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		runBackupCreate(args[1:])
	case "list":
		runBackupList()
	case "restore":
		runBackupRestore(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown backup action: %s\n\n", args[0])
		printBackupUsage()
		os.Exit(1)
	}
}

func printBackupUsage() {
	fmt.Println("Usage: duelkeeper backup <action> [options]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  create  - Back up a collection file")
	fmt.Println("  list    - List available backups")
	fmt.Println("  restore - Restore a collection from a backup file")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  duelkeeper backup create -collection binder")
	fmt.Println("  duelkeeper backup create -collection binder -encrypt")
	fmt.Println("  duelkeeper backup restore -file binder_20260825_120000.json")
	fmt.Println()
	fmt.Printf("Encrypted backups read the passphrase from -password or $%s.\n", passwordEnvVar)
}

func runBackupCreate(args []string) {
	fs := flag.NewFlagSet("backup create", flag.ExitOnError)
	name := fs.String("collection", "", "Collection name (required)")
	encrypt := fs.Bool("encrypt", false, "Encrypt the backup with a passphrase")
	password := fs.String("password", "", "Backup passphrase (or $"+passwordEnvVar+")")
	_ = fs.Parse(args)

	if *name == "" {
		log.Fatal("Error: -collection is required")
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}
	defer a.close()

	filename, err := a.resolveCollectionFile(*name)
	if err != nil {
		log.Fatalf("Error resolving collection: %v", err)
	}

	var enc *backup.EncryptionConfig
	if *encrypt || a.cfg.Backup.Encrypt {
		enc = backup.DefaultEncryptionConfig(resolvePassword(*password))
	}

	path, err := a.backups.Backup(filename, enc)
	if err != nil {
		log.Fatalf("Error creating backup: %v", err)
	}
	fmt.Printf("Backup written to %s\n", path)
}

func runBackupList() {
	a, err := newApp()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}
	defer a.close()

	backups, err := a.backups.List()
	if err != nil {
		log.Fatalf("Error listing backups: %v", err)
	}
	if len(backups) == 0 {
		fmt.Printf("No backups in %s\n", a.backups.BackupDir())
		return
	}

	for _, b := range backups {
		flag := " "
		if b.Encrypted {
			flag = "E"
		}
		fmt.Printf("%s %-40s %8d bytes  %s  %s\n",
			flag, b.Name, b.Size, b.ModTime.Format("2006-01-02 15:04:05"), b.Checksum[:12])
	}
}

func runBackupRestore(args []string) {
	fs := flag.NewFlagSet("backup restore", flag.ExitOnError)
	file := fs.String("file", "", "Backup file name or path (required)")
	password := fs.String("password", "", "Backup passphrase (or $"+passwordEnvVar+")")
	_ = fs.Parse(args)

	if *file == "" {
		log.Fatal("Error: -file is required")
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}
	defer a.close()

	backupPath := *file
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		backupPath = filepath.Join(a.backups.BackupDir(), *file)
	}

	var enc *backup.EncryptionConfig
	encrypted, err := backup.IsEncrypted(backupPath)
	if err != nil {
		log.Fatalf("Error reading backup: %v", err)
	}
	if encrypted {
		enc = backup.DefaultEncryptionConfig(resolvePassword(*password))
	}

	restored, err := a.backups.Restore(backupPath, enc)
	if err != nil {
		log.Fatalf("Error restoring backup: %v", err)
	}
	fmt.Printf("Restored %s\n", restored)
}

func resolvePassword(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(passwordEnvVar); env != "" {
		return env
	}
	log.Fatalf("Error: passphrase required (-password or $%s)", passwordEnvVar)
	return ""
}
