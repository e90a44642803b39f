package collection

import (
	"errors"

	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// ErrCardNotFound indicates a ledger mutation referenced a card the catalog
// cannot resolve.
var ErrCardNotFound = errors.New("card not found")

// QuantityMode selects how a change computes the entry's new quantity.
// Exactly two modes exist; illegal combinations are unrepresentable.
type QuantityMode interface {
	newQuantity(current int) int
}

// Set replaces the entry's quantity with Target.
type Set struct {
	Target int
}

func (m Set) newQuantity(int) int { return m.Target }

// Add adjusts the entry's quantity by Delta, which may be negative.
type Add struct {
	Delta int
}

func (m Add) newQuantity(current int) int { return current + m.Delta }

// Change describes one ledger mutation.
type Change struct {
	SetCode         string
	Rarity          string
	Language        string
	Condition       string
	FirstEdition    bool
	ImageID         int
	VariantID       string // resolved deterministically when empty
	StorageLocation string
	Mode            QuantityMode
}

// ApplyChange applies a change to the collection in memory and reports
// whether anything was modified.
//
// Cards, variants and entries are created lazily and only when the resulting
// quantity is positive; a change that resolves to zero or below removes the
// entry and cascade-prunes empty variants and cards. No code path can leave
// a non-positive entry or an empty shell behind.
//
// The mutation is in-memory only. If persisting the collection afterwards
// fails, the state is not rolled back; the caller decides whether to retry
// the save or discard the session.
func ApplyChange(col *Collection, card *cards.Card, ch Change) bool {
	variantID := ch.VariantID
	if variantID == "" {
		variantID = cards.VariantID(card.ID, ch.SetCode, ch.Rarity, ch.ImageID)
	}

	targetCard := col.FindCard(card.ID)

	var targetVariant *Variant
	if targetCard != nil {
		for _, v := range targetCard.Variants {
			if v.VariantID == variantID {
				targetVariant = v
				break
			}
		}
	}

	var targetEntry *Entry
	if targetVariant != nil {
		targetEntry = findEntry(targetVariant, ch)
	}

	current := 0
	if targetEntry != nil {
		current = targetEntry.Quantity
	}
	newQty := ch.Mode.newQuantity(current)

	if newQty <= 0 {
		if targetEntry == nil {
			return false
		}
		removeEntry(targetVariant, targetEntry)
		pruneVariant(targetCard, targetVariant)
		pruneCard(col, targetCard)
		return true
	}

	if targetEntry != nil {
		if targetEntry.Quantity == newQty {
			return false
		}
		targetEntry.Quantity = newQty
		return true
	}

	// Positive quantity on a missing entry: materialize the path.
	if targetCard == nil {
		targetCard = &Card{CardID: card.ID, Name: card.Name}
		col.Cards = append(col.Cards, targetCard)
	}
	if targetVariant == nil {
		targetVariant = &Variant{
			VariantID: variantID,
			SetCode:   ch.SetCode,
			Rarity:    ch.Rarity,
			ImageID:   ch.ImageID,
		}
		targetCard.Variants = append(targetCard.Variants, targetVariant)
	}
	targetVariant.Entries = append(targetVariant.Entries, &Entry{
		Language:        ch.Language,
		Condition:       ch.Condition,
		FirstEdition:    ch.FirstEdition,
		Quantity:        newQty,
		StorageLocation: ch.StorageLocation,
	})
	return true
}

// findEntry locates the entry matching the change's exact key. The storage
// location participates in the key, so copies in different boxes stay
// distinct.
func findEntry(v *Variant, ch Change) *Entry {
	for _, e := range v.Entries {
		if e.Language == ch.Language &&
			e.Condition == ch.Condition &&
			e.FirstEdition == ch.FirstEdition &&
			e.StorageLocation == ch.StorageLocation {
			return e
		}
	}
	return nil
}

func removeEntry(v *Variant, target *Entry) {
	for i, e := range v.Entries {
		if e == target {
			v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
			return
		}
	}
}

func pruneVariant(c *Card, target *Variant) {
	if c == nil || target == nil || len(target.Entries) > 0 {
		return
	}
	for i, v := range c.Variants {
		if v == target {
			c.Variants = append(c.Variants[:i], c.Variants[i+1:]...)
			return
		}
	}
}

func pruneCard(col *Collection, target *Card) {
	if target == nil || len(target.Variants) > 0 {
		return
	}
	for i, c := range col.Cards {
		if c == target {
			col.Cards = append(col.Cards[:i], col.Cards[i+1:]...)
			return
		}
	}
}
