package collection

import (
	"log"

	"github.com/duelkeeper/duelkeeper/internal/collection/changelog"
	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// CardResolver resolves a card id against the catalog. The cache in
// internal/ygo/catalog satisfies this.
type CardResolver interface {
	Card(lang string, cardID int) (*cards.Card, bool)
}

// ApplyInverse applies the inverse of a popped changelog record to the
// collection. Batch records are undone in LIFO order. A logged ADD is undone
// by a negative Add, a logged REMOVE by a positive one.
//
// The resolver may be nil or miss the card (offline, card since removed from
// the catalog); the record's snapshot then stands in so the undo still lands
// on the right variant.
func ApplyInverse(col *Collection, record *changelog.Record, resolver CardResolver) {
	if record == nil {
		return
	}

	if record.IsBatch() {
		for i := len(record.Changes) - 1; i >= 0; i-- {
			applySingleInverse(col, record.Changes[i], resolver)
		}
		return
	}

	if record.CardData == nil {
		log.Printf("[Undo] record #%d has no card data, skipping", record.ID)
		return
	}
	applySingleInverse(col, changelog.Change{
		Action:   record.Action,
		Quantity: record.Quantity,
		CardData: *record.CardData,
	}, resolver)
}

func applySingleInverse(col *Collection, change changelog.Change, resolver CardResolver) {
	var delta int
	switch change.Action {
	case changelog.ActionAdd:
		delta = -change.Quantity
	case changelog.ActionRemove:
		delta = change.Quantity
	default:
		log.Printf("[Undo] unknown action %q, skipping", change.Action)
		return
	}

	data := change.CardData
	if data.CardID == 0 {
		log.Printf("[Undo] missing card id in record, skipping")
		return
	}

	card := resolveCard(data, resolver)

	ApplyChange(col, card, Change{
		SetCode:         data.SetCode,
		Rarity:          data.Rarity,
		Language:        orDefault(data.Language, "EN"),
		Condition:       orDefault(data.Condition, ConditionNearMint),
		FirstEdition:    data.FirstEdition,
		ImageID:         data.ImageID,
		VariantID:       data.VariantID,
		StorageLocation: data.StorageLocation,
		Mode:            Add{Delta: delta},
	})
}

func resolveCard(data changelog.CardData, resolver CardResolver) *cards.Card {
	lang := orDefault(data.Language, "EN")
	if resolver != nil {
		if card, ok := resolver.Card(lang, data.CardID); ok {
			return card
		}
	}

	name := data.Name
	if name == "" {
		name = "Unknown Card"
	}
	return &cards.Card{
		ID:        data.CardID,
		Name:      name,
		Type:      "Unknown",
		FrameType: "unknown",
		Desc:      "Restored from undo",
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
