// Package cards defines the card and print-variant data model shared by the
// catalog and collection layers, along with the deterministic variant
// identity that joins the two across independent fetches.
package cards

// CardImage represents one artwork of a card as delivered by the ygoprodeck
// API.
type CardImage struct {
	ID              int    `json:"id"`
	ImageURL        string `json:"image_url"`
	ImageURLSmall   string `json:"image_url_small"`
	ImageURLCropped string `json:"image_url_cropped,omitempty"`
}

// CardSet represents one print variant of a card: a (set, rarity, artwork)
// combination. ImageID and VariantID are local extensions filled in by the
// merge engine; the API does not deliver them.
type CardSet struct {
	SetName       string `json:"set_name"`
	SetCode       string `json:"set_code"`
	SetRarity     string `json:"set_rarity"`
	SetRarityCode string `json:"set_rarity_code,omitempty"`
	SetPrice      string `json:"set_price,omitempty"`
	ImageID       int    `json:"image_id,omitempty"`
	VariantID     string `json:"variant_id,omitempty"`
}

// CardPrice holds marketplace price quotes for a card.
type CardPrice struct {
	CardmarketPrice   string `json:"cardmarket_price,omitempty"`
	TcgplayerPrice    string `json:"tcgplayer_price,omitempty"`
	EbayPrice         string `json:"ebay_price,omitempty"`
	AmazonPrice       string `json:"amazon_price,omitempty"`
	CoolstuffincPrice string `json:"coolstuffinc_price,omitempty"`
}

// Card is one card record of the external catalog, authoritative for the
// card's existence and scalar facts in one language.
type Card struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	FrameType   string      `json:"frameType"`
	Desc        string      `json:"desc"`
	Race        string      `json:"race,omitempty"`
	Atk         *int        `json:"atk,omitempty"`
	Def         *int        `json:"def,omitempty"`
	Level       *int        `json:"level,omitempty"`
	Scale       *int        `json:"scale,omitempty"`
	LinkVal     *int        `json:"linkval,omitempty"`
	LinkMarkers []string    `json:"linkmarkers,omitempty"`
	Attribute   string      `json:"attribute,omitempty"`
	Archetype   string      `json:"archetype,omitempty"`
	CardImages  []CardImage `json:"card_images,omitempty"`
	CardSets    []CardSet   `json:"card_sets,omitempty"`
	CardPrices  []CardPrice `json:"card_prices,omitempty"`
}

// DefaultImageID returns the id of the card's first image, or 0 when the card
// has none. New variants adopted during a merge default to this artwork.
func (c *Card) DefaultImageID() int {
	if len(c.CardImages) == 0 {
		return 0
	}
	return c.CardImages[0].ID
}

// Clone returns a deep copy of the card. The merge engine clones remote cards
// before assigning variant identities so the snapshot is never mutated.
func (c *Card) Clone() *Card {
	out := *c

	clonePtr := func(p *int) *int {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	out.Atk = clonePtr(c.Atk)
	out.Def = clonePtr(c.Def)
	out.Level = clonePtr(c.Level)
	out.Scale = clonePtr(c.Scale)
	out.LinkVal = clonePtr(c.LinkVal)

	if c.LinkMarkers != nil {
		out.LinkMarkers = append([]string(nil), c.LinkMarkers...)
	}
	if c.CardImages != nil {
		out.CardImages = append([]CardImage(nil), c.CardImages...)
	}
	if c.CardSets != nil {
		out.CardSets = append([]CardSet(nil), c.CardSets...)
	}
	if c.CardPrices != nil {
		out.CardPrices = append([]CardPrice(nil), c.CardPrices...)
	}

	return &out
}
