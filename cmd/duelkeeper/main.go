package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/duelkeeper/duelkeeper/internal/collection"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	switch os.Args[1] {
	case "sync":
		runSyncCommand(os.Args[2:])
	case "add":
		runEditCommand(os.Args[2:], editAdd)
	case "remove":
		runEditCommand(os.Args[2:], editRemove)
	case "set":
		runEditCommand(os.Args[2:], editSet)
	case "show":
		runShowCommand(os.Args[2:])
	case "undo":
		runUndoCommand(os.Args[2:])
	case "history":
		runHistoryCommand(os.Args[2:])
	case "report":
		runReportCommand(os.Args[2:])
	case "backup":
		runBackupCommand(os.Args[2:])
	case "collections":
		runCollectionsCommand()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("DuelKeeper - Card Collection Tracker")
	fmt.Println("====================================")
	fmt.Println()
	fmt.Println("Usage: duelkeeper <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  sync        - Sync the card catalog from the remote database")
	fmt.Println("  add         - Add copies of a card to a collection")
	fmt.Println("  remove      - Remove copies of a card from a collection")
	fmt.Println("  set         - Set the exact quantity of a card in a collection")
	fmt.Println("  show        - List a collection's contents")
	fmt.Println("  undo        - Undo the last change to a collection")
	fmt.Println("  history     - Show a collection's change history")
	fmt.Println("  report      - Render an HTML report for a collection")
	fmt.Println("  backup      - Create, list or restore collection backups")
	fmt.Println("  collections - List known collections")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  duelkeeper sync -lang en")
	fmt.Println("  duelkeeper add -collection binder -card 89631139 -set LOB-001 -rarity \"Ultra Rare\"")
	fmt.Println("  duelkeeper remove -collection binder -card 89631139 -set LOB-001 -rarity \"Ultra Rare\" -qty 1")
	fmt.Println("  duelkeeper show -collection binder")
	fmt.Println("  duelkeeper undo -collection binder")
	fmt.Println("  duelkeeper report -collection binder -o report.html")
	fmt.Println("  duelkeeper backup create -collection binder")
	fmt.Println()
}

func runSyncCommand(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	lang := fs.String("lang", "", "Single language to sync (default: all configured languages)")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall sync timeout")
	_ = fs.Parse(args)

	a, err := newApp()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}
	defer a.close()

	languages := a.cfg.Catalog.Languages
	if *lang != "" {
		languages = []string{*lang}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	for _, language := range languages {
		count, err := a.service.Sync(ctx, language)
		if err != nil {
			log.Fatalf("Error syncing %q catalog: %v", language, err)
		}
		fmt.Printf("Synced %q catalog: %d cards\n", language, count)
	}
}

func runShowCommand(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	name := fs.String("collection", "", "Collection name (required)")
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
	col, err := a.collections.Load(filename)
	if err != nil {
		log.Fatalf("Error loading collection: %v", err)
	}

	fmt.Printf("%s: %d cards, $%.2f\n", col.Name, col.TotalCards(), col.TotalValue())
	for _, card := range col.Cards {
		fmt.Printf("\n%s (#%d)\n", card.Name, card.CardID)
		for _, variant := range card.Variants {
			for _, entry := range variant.Entries {
				edition := ""
				if entry.FirstEdition {
					edition = "  1st Ed."
				}
				location := ""
				if entry.StorageLocation != "" {
					location = "  [" + entry.StorageLocation + "]"
				}
				// Set codes print in the entry's language, e.g. the German
				// copy of LOB-EN001 shows as LOB-DE001.
				fmt.Printf("  %dx %-12s %-24s %s/%s%s%s\n",
					entry.Quantity, collection.LocalizedSetCode(variant, entry),
					variant.Rarity, entry.Language, entry.Condition, edition, location)
			}
		}
	}
}

func runUndoCommand(args []string) {
	fs := flag.NewFlagSet("undo", flag.ExitOnError)
	name := fs.String("collection", "", "Collection name (required)")
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

	col, err := a.collections.Load(filename)
	if err != nil {
		log.Fatalf("Error loading collection: %v", err)
	}

	record, err := a.changelog.UndoLastChange(filename)
	if err != nil {
		log.Fatalf("Error popping change: %v", err)
	}
	if record == nil {
		fmt.Println("Nothing to undo.")
		return
	}

	applyInverseRecord(a, col, record)

	if err := a.collections.Save(col, filename); err != nil {
		log.Fatalf("Error saving collection: %v", err)
	}

	fmt.Printf("Undid change #%d (%s)\n", record.ID, describeRecord(record))
}

func runHistoryCommand(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	name := fs.String("collection", "", "Collection name (required)")
	limit := fs.Int("n", 20, "Number of most recent records to show (0 = all)")
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

	history, err := a.changelog.LoadHistory(filename)
	if err != nil {
		log.Fatalf("Error loading history: %v", err)
	}
	if len(history) == 0 {
		fmt.Println("No history.")
		return
	}

	start := 0
	if *limit > 0 && len(history) > *limit {
		start = len(history) - *limit
	}
	for _, record := range history[start:] {
		when := time.Unix(int64(record.Timestamp), 0).Format("2006-01-02 15:04:05")
		fmt.Printf("#%-4d %s  %s\n", record.ID, when, describeRecord(&record))
	}
}

func runCollectionsCommand() {
	a, err := newApp()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}
	defer a.close()

	names, err := a.collections.List()
	if err != nil {
		log.Fatalf("Error listing collections: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No collections yet. Create one with 'duelkeeper add'.")
		return
	}

	for _, name := range names {
		col, err := a.collections.Load(name)
		if err != nil {
			fmt.Printf("%-30s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%-30s %5d cards  $%.2f\n", name, col.TotalCards(), col.TotalValue())
	}
}
