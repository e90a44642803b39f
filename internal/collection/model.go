// Package collection holds the per-collection ledger of owned card
// quantities and the mutation logic that maintains its structural
// invariants: entries always carry a positive quantity, and variants or
// cards without children never persist.
package collection

import "github.com/duelkeeper/duelkeeper/internal/ygo/setcode"

// Card conditions used by Entry. Free-form values are accepted on load; these
// are the ones the application offers.
const (
	ConditionMint     = "Mint"
	ConditionNearMint = "Near Mint"
	ConditionPlayed   = "Played"
	ConditionDamaged  = "Damaged"
)

// Entry is a quantity of one variant under one (language, condition, edition,
// storage) combination. Quantity is always positive while the entry exists.
type Entry struct {
	Language        string  `json:"language" yaml:"language"`
	Condition       string  `json:"condition" yaml:"condition"`
	FirstEdition    bool    `json:"first_edition" yaml:"first_edition"`
	Quantity        int     `json:"quantity" yaml:"quantity"`
	StorageLocation string  `json:"storage_location,omitempty" yaml:"storage_location,omitempty"`
	PurchasePrice   float64 `json:"purchase_price,omitempty" yaml:"purchase_price,omitempty"`
	MarketValue     float64 `json:"market_value,omitempty" yaml:"market_value,omitempty"`
}

// Variant is one tracked print of a card. It exists only while it holds at
// least one entry.
type Variant struct {
	VariantID string   `json:"variant_id" yaml:"variant_id"`
	SetCode   string   `json:"set_code" yaml:"set_code"`
	Rarity    string   `json:"rarity" yaml:"rarity"`
	ImageID   int      `json:"image_id,omitempty" yaml:"image_id,omitempty"`
	Entries   []*Entry `json:"entries" yaml:"entries"`
}

// Quantity returns the total number of copies across all entries.
func (v *Variant) Quantity() int {
	total := 0
	for _, e := range v.Entries {
		total += e.Quantity
	}
	return total
}

// Card is one tracked card. It exists only while it holds at least one
// variant.
type Card struct {
	CardID   int        `json:"card_id" yaml:"card_id"`
	Name     string     `json:"name" yaml:"name"`
	Variants []*Variant `json:"variants" yaml:"variants"`
}

// Quantity returns the total number of copies across all variants.
func (c *Card) Quantity() int {
	total := 0
	for _, v := range c.Variants {
		total += v.Quantity()
	}
	return total
}

// StorageDefinition describes a physical storage location (box, binder) that
// entries can reference by name.
type StorageDefinition struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ImagePath   string `json:"image_path,omitempty" yaml:"image_path,omitempty"`
	SetCode     string `json:"set_code,omitempty" yaml:"set_code,omitempty"`
}

// Collection is the ledger of owned quantities for one user collection.
type Collection struct {
	Name               string              `json:"name" yaml:"name"`
	Description        string              `json:"description,omitempty" yaml:"description,omitempty"`
	StorageDefinitions []StorageDefinition `json:"storage_definitions,omitempty" yaml:"storage_definitions,omitempty"`
	Cards              []*Card             `json:"cards" yaml:"cards"`
}

// FindCard returns the tracked card with the given id, or nil.
func (c *Collection) FindCard(cardID int) *Card {
	for _, card := range c.Cards {
		if card.CardID == cardID {
			return card
		}
	}
	return nil
}

// TotalCards returns the total number of physical copies in the collection.
func (c *Collection) TotalCards() int {
	total := 0
	for _, card := range c.Cards {
		total += card.Quantity()
	}
	return total
}

// TotalValue returns the summed market value of all entries.
func (c *Collection) TotalValue() float64 {
	total := 0.0
	for _, card := range c.Cards {
		for _, v := range card.Variants {
			for _, e := range v.Entries {
				total += e.MarketValue * float64(e.Quantity)
			}
		}
	}
	return total
}

// LocalizedSetCode returns the variant's set code rewritten to the entry's
// print language. Region-agnostic codes come back unchanged.
func LocalizedSetCode(v *Variant, e *Entry) string {
	return setcode.Transform(v.SetCode, e.Language)
}
