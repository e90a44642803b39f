package collection

import (
	"testing"

	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

func testCard() *cards.Card {
	return &cards.Card{
		ID:   46986414,
		Name: "Dark Magician",
		CardImages: []cards.CardImage{
			{ID: 46986414},
		},
	}
}

func baseChange(mode QuantityMode) Change {
	return Change{
		SetCode:      "LOB-EN001",
		Rarity:       "Ultra Rare",
		Language:     "EN",
		Condition:    ConditionNearMint,
		FirstEdition: false,
		ImageID:      46986414,
		Mode:         mode,
	}
}

func TestApplyChangeCreatesPath(t *testing.T) {
	col := &Collection{Name: "Binder"}

	changed := ApplyChange(col, testCard(), baseChange(Add{Delta: 3}))
	if !changed {
		t.Fatal("ApplyChange() = false, want true")
	}

	if len(col.Cards) != 1 {
		t.Fatalf("len(cards) = %d, want 1", len(col.Cards))
	}
	card := col.Cards[0]
	if card.CardID != 46986414 || card.Name != "Dark Magician" {
		t.Errorf("card = %+v", card)
	}
	if len(card.Variants) != 1 {
		t.Fatalf("len(variants) = %d, want 1", len(card.Variants))
	}
	variant := card.Variants[0]
	if want := cards.VariantID(46986414, "LOB-EN001", "Ultra Rare", 46986414); variant.VariantID != want {
		t.Errorf("VariantID = %q, want resolved %q", variant.VariantID, want)
	}
	if len(variant.Entries) != 1 || variant.Entries[0].Quantity != 3 {
		t.Errorf("entries = %+v", variant.Entries)
	}
}

// Scenario: adding three copies then removing three leaves the collection
// empty — no shells survive.
func TestApplyChangeConservation(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	if changed := ApplyChange(col, card, baseChange(Add{Delta: 3})); !changed {
		t.Fatal("add not applied")
	}
	if changed := ApplyChange(col, card, baseChange(Add{Delta: -3})); !changed {
		t.Fatal("remove not applied")
	}

	if len(col.Cards) != 0 {
		t.Errorf("cards = %+v, want empty collection", col.Cards)
	}
}

func TestApplyChangeConservationRestoresQuantity(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	ApplyChange(col, card, baseChange(Add{Delta: 2}))
	ApplyChange(col, card, baseChange(Add{Delta: 5}))
	ApplyChange(col, card, baseChange(Add{Delta: -5}))

	variant := col.Cards[0].Variants[0]
	if variant.Entries[0].Quantity != 2 {
		t.Errorf("quantity = %d, want restored 2", variant.Entries[0].Quantity)
	}
}

func TestApplyChangeSetMode(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	ApplyChange(col, card, baseChange(Set{Target: 4}))
	if qty := col.Cards[0].Variants[0].Entries[0].Quantity; qty != 4 {
		t.Fatalf("quantity = %d, want 4", qty)
	}

	// Setting the same value is not a change.
	if changed := ApplyChange(col, card, baseChange(Set{Target: 4})); changed {
		t.Error("setting the current quantity reported a change")
	}

	ApplyChange(col, card, baseChange(Set{Target: 1}))
	if qty := col.Cards[0].Variants[0].Entries[0].Quantity; qty != 1 {
		t.Errorf("quantity = %d, want 1", qty)
	}

	ApplyChange(col, card, baseChange(Set{Target: 0}))
	if len(col.Cards) != 0 {
		t.Errorf("cards = %+v, want empty after set to zero", col.Cards)
	}
}

func TestApplyChangeNoEmptyShells(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	// Removing from an empty collection must not materialize anything.
	if changed := ApplyChange(col, card, baseChange(Add{Delta: -2})); changed {
		t.Error("negative add on empty collection reported a change")
	}
	if changed := ApplyChange(col, card, baseChange(Set{Target: 0})); changed {
		t.Error("set zero on empty collection reported a change")
	}
	if len(col.Cards) != 0 {
		t.Errorf("cards = %+v, want none", col.Cards)
	}
}

func TestApplyChangeEntryKey(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	ApplyChange(col, card, baseChange(Add{Delta: 1}))

	played := baseChange(Add{Delta: 1})
	played.Condition = ConditionPlayed
	ApplyChange(col, card, played)

	german := baseChange(Add{Delta: 1})
	german.Language = "DE"
	ApplyChange(col, card, german)

	firstEd := baseChange(Add{Delta: 1})
	firstEd.FirstEdition = true
	ApplyChange(col, card, firstEd)

	boxed := baseChange(Add{Delta: 1})
	boxed.StorageLocation = "Box A"
	ApplyChange(col, card, boxed)

	variant := col.Cards[0].Variants[0]
	if len(variant.Entries) != 5 {
		t.Errorf("len(entries) = %d, want 5 distinct keys", len(variant.Entries))
	}

	// Same key again merges into the existing entry.
	ApplyChange(col, card, baseChange(Add{Delta: 2}))
	if len(variant.Entries) != 5 {
		t.Errorf("len(entries) = %d after repeat, want 5", len(variant.Entries))
	}
	if variant.Entries[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", variant.Entries[0].Quantity)
	}
}

func TestApplyChangePrunesOnlyEmptyBranches(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	ultra := baseChange(Add{Delta: 1})
	common := baseChange(Add{Delta: 1})
	common.Rarity = "Common"
	ApplyChange(col, card, ultra)
	ApplyChange(col, card, common)

	remove := baseChange(Add{Delta: -1})
	ApplyChange(col, card, remove)

	if len(col.Cards) != 1 {
		t.Fatalf("card pruned while a variant remains")
	}
	if len(col.Cards[0].Variants) != 1 {
		t.Fatalf("variants = %+v, want only the Common print", col.Cards[0].Variants)
	}
	if col.Cards[0].Variants[0].Rarity != "Common" {
		t.Errorf("surviving variant = %+v", col.Cards[0].Variants[0])
	}
}

func TestApplyChangeExplicitVariantID(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	custom := baseChange(Add{Delta: 1})
	custom.VariantID = "custom-1234"
	ApplyChange(col, card, custom)

	if got := col.Cards[0].Variants[0].VariantID; got != "custom-1234" {
		t.Errorf("VariantID = %q, want supplied custom id", got)
	}
}

func TestApplyChangeClampsNegativeBelowZero(t *testing.T) {
	col := &Collection{Name: "Binder"}
	card := testCard()

	ApplyChange(col, card, baseChange(Add{Delta: 1}))
	if changed := ApplyChange(col, card, baseChange(Add{Delta: -5})); !changed {
		t.Fatal("over-removal not applied")
	}
	if len(col.Cards) != 0 {
		t.Errorf("cards = %+v, want empty (no negative quantities persist)", col.Cards)
	}
}
