package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/duelkeeper/duelkeeper/internal/collection"
	"github.com/duelkeeper/duelkeeper/internal/collection/changelog"
	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// editKind selects the mutation a ledger edit command performs.
type editKind int

const (
	editAdd editKind = iota
	editRemove
	editSet
)

func (k editKind) String() string {
	switch k {
	case editAdd:
		return "add"
	case editRemove:
		return "remove"
	default:
		return "set"
	}
}

func runEditCommand(args []string, kind editKind) {
	fs := flag.NewFlagSet(kind.String(), flag.ExitOnError)
	name := fs.String("collection", "", "Collection name (required)")
	cardID := fs.Int("card", 0, "Card id (required)")
	setCode := fs.String("set", "", "Set code, e.g. LOB-001 (required)")
	rarity := fs.String("rarity", "", "Printed rarity (required)")
	lang := fs.String("lang", "EN", "Print language")
	condition := fs.String("condition", collection.ConditionNearMint, "Card condition")
	firstEd := fs.Bool("first", false, "First edition print")
	imageID := fs.Int("image", 0, "Artwork image id (0 = card default)")
	location := fs.String("location", "", "Storage location name")
	qty := fs.Int("qty", 1, "Number of copies (target quantity for 'set')")
	_ = fs.Parse(args)

	if *name == "" || *cardID == 0 || *setCode == "" || *rarity == "" {
		log.Fatalf("Error: -collection, -card, -set and -rarity are required")
	}
	if *qty < 0 || (kind != editSet && *qty == 0) {
		log.Fatalf("Error: -qty must be positive")
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}
	defer a.close()

	card, ok := a.service.Card(*lang, *cardID)
	if !ok && *lang != "EN" {
		card, ok = a.service.Card("en", *cardID)
	}
	if !ok {
		err := fmt.Errorf("card %d: %w", *cardID, collection.ErrCardNotFound)
		log.Fatalf("Error: %v. Run 'duelkeeper sync' first.", err)
	}

	imgID := *imageID
	if imgID == 0 {
		imgID = card.DefaultImageID()
	}

	filename, err := a.resolveCollectionFile(*name)
	if err != nil {
		log.Fatalf("Error resolving collection: %v", err)
	}
	col, err := a.loadOrCreateCollection(filename, *name)
	if err != nil {
		log.Fatalf("Error loading collection: %v", err)
	}

	change := collection.Change{
		SetCode:         *setCode,
		Rarity:          *rarity,
		Language:        *lang,
		Condition:       *condition,
		FirstEdition:    *firstEd,
		ImageID:         imgID,
		StorageLocation: *location,
	}

	before := currentQuantity(col, card.ID, change)
	switch kind {
	case editAdd:
		change.Mode = collection.Add{Delta: *qty}
	case editRemove:
		change.Mode = collection.Add{Delta: -*qty}
	case editSet:
		change.Mode = collection.Set{Target: *qty}
	}

	if !collection.ApplyChange(col, card, change) {
		fmt.Println("No change.")
		return
	}

	if err := a.collections.Save(col, filename); err != nil {
		log.Fatalf("Error saving collection: %v", err)
	}

	after := currentQuantity(col, card.ID, change)
	action, amount := changelog.ActionAdd, after-before
	if amount < 0 {
		action, amount = changelog.ActionRemove, -amount
	}

	data := changelog.CardData{
		CardID:          card.ID,
		Name:            card.Name,
		SetCode:         *setCode,
		Rarity:          *rarity,
		Language:        *lang,
		Condition:       *condition,
		FirstEdition:    *firstEd,
		ImageID:         imgID,
		VariantID:       cards.VariantID(card.ID, *setCode, *rarity, imgID),
		StorageLocation: *location,
	}
	if err := a.changelog.LogChange(filename, action, data, amount); err != nil {
		log.Printf("Warning: change applied but not journaled: %v", err)
	}

	fmt.Printf("%s: %s %dx %s (%s %s), now %d\n",
		col.Name, action, amount, card.Name, *setCode, *rarity, after)
}

// currentQuantity reads the quantity of the entry a change addresses, or 0.
func currentQuantity(col *collection.Collection, cardID int, ch collection.Change) int {
	variantID := ch.VariantID
	if variantID == "" {
		variantID = cards.VariantID(cardID, ch.SetCode, ch.Rarity, ch.ImageID)
	}

	card := col.FindCard(cardID)
	if card == nil {
		return 0
	}
	for _, v := range card.Variants {
		if v.VariantID != variantID {
			continue
		}
		for _, e := range v.Entries {
			if e.Language == ch.Language &&
				e.Condition == ch.Condition &&
				e.FirstEdition == ch.FirstEdition &&
				e.StorageLocation == ch.StorageLocation {
				return e.Quantity
			}
		}
	}
	return 0
}

// applyInverseRecord undoes a popped changelog record against the ledger,
// resolving cards through the catalog service.
func applyInverseRecord(a *app, col *collection.Collection, record *changelog.Record) {
	collection.ApplyInverse(col, record, a.service)
}

func describeRecord(record *changelog.Record) string {
	if record.IsBatch() {
		return fmt.Sprintf("batch %q (%d changes)", record.Description, len(record.Changes))
	}
	if record.CardData == nil {
		return record.Action
	}
	return fmt.Sprintf("%s %dx %s (%s %s)",
		record.Action, record.Quantity, record.CardData.Name,
		record.CardData.SetCode, record.CardData.Rarity)
}
