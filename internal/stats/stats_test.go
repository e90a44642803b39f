package stats

import (
	"testing"

	"github.com/duelkeeper/duelkeeper/internal/collection"
)

func testCollection() *collection.Collection {
	return &collection.Collection{
		Name: "Binder",
		Cards: []*collection.Card{
			{
				CardID: 89631139,
				Name:   "Blue-Eyes White Dragon",
				Variants: []*collection.Variant{
					{
						VariantID: "v-bewd-lob",
						SetCode:   "LOB-001",
						Rarity:    "Ultra Rare",
						Entries: []*collection.Entry{
							{Language: "en", Condition: "Near Mint", Quantity: 2, MarketValue: 40, PurchasePrice: 25},
							{Language: "de", Condition: "Played", Quantity: 1, MarketValue: 15, FirstEdition: true},
						},
					},
					{
						VariantID: "v-bewd-sdk",
						SetCode:   "SDK-001",
						Rarity:    "Common",
						Entries: []*collection.Entry{
							{Language: "en", Condition: "Near Mint", Quantity: 3, MarketValue: 2},
						},
					},
				},
			},
			{
				CardID: 46986414,
				Name:   "Dark Magician",
				Variants: []*collection.Variant{
					{
						VariantID: "v-dm-lob",
						SetCode:   "LOB-EN005",
						Rarity:    "Ghost Rare",
						Entries: []*collection.Entry{
							{Language: "en", Condition: "Mint", Quantity: 1, MarketValue: 300, FirstEdition: true},
						},
					},
				},
			},
		},
	}
}

func TestComputeTotals(t *testing.T) {
	summary := Compute(testCollection())

	if summary.CollectionName != "Binder" {
		t.Errorf("CollectionName = %q, want %q", summary.CollectionName, "Binder")
	}
	if summary.TotalCards != 7 {
		t.Errorf("TotalCards = %d, want 7", summary.TotalCards)
	}
	if summary.UniqueCards != 2 {
		t.Errorf("UniqueCards = %d, want 2", summary.UniqueCards)
	}
	if summary.UniqueVariants != 3 {
		t.Errorf("UniqueVariants = %d, want 3", summary.UniqueVariants)
	}
	if want := 2*40.0 + 15 + 3*2 + 300; summary.TotalValue != want {
		t.Errorf("TotalValue = %v, want %v", summary.TotalValue, want)
	}
	if want := 2 * 25.0; summary.PurchaseTotal != want {
		t.Errorf("PurchaseTotal = %v, want %v", summary.PurchaseTotal, want)
	}
	if summary.FirstEditions != 2 {
		t.Errorf("FirstEditions = %d, want 2", summary.FirstEditions)
	}
}

func TestComputeRarityBreakdownOrderedByRank(t *testing.T) {
	summary := Compute(testCollection())

	wantOrder := []string{"Ghost Rare", "Ultra Rare", "Common"}
	if len(summary.ByRarity) != len(wantOrder) {
		t.Fatalf("ByRarity has %d buckets, want %d", len(summary.ByRarity), len(wantOrder))
	}
	for i, want := range wantOrder {
		if summary.ByRarity[i].Label != want {
			t.Errorf("ByRarity[%d] = %q, want %q", i, summary.ByRarity[i].Label, want)
		}
	}
	if summary.ByRarity[1].Quantity != 3 {
		t.Errorf("Ultra Rare quantity = %d, want 3", summary.ByRarity[1].Quantity)
	}
}

func TestComputeSetBreakdownMergesLocalizedCodes(t *testing.T) {
	summary := Compute(testCollection())

	// LOB-001 and LOB-EN005 fall into the same set bucket.
	if len(summary.BySet) != 2 {
		t.Fatalf("BySet has %d buckets, want 2", len(summary.BySet))
	}
	if summary.BySet[0].Label != "LOB" || summary.BySet[0].Quantity != 4 {
		t.Errorf("BySet[0] = %+v, want LOB with quantity 4", summary.BySet[0])
	}
	if summary.BySet[1].Label != "SDK" || summary.BySet[1].Quantity != 3 {
		t.Errorf("BySet[1] = %+v, want SDK with quantity 3", summary.BySet[1])
	}
}

func TestComputeLanguageAndConditionBreakdowns(t *testing.T) {
	summary := Compute(testCollection())

	if summary.ByLanguage[0].Label != "en" || summary.ByLanguage[0].Quantity != 6 {
		t.Errorf("ByLanguage[0] = %+v, want en with quantity 6", summary.ByLanguage[0])
	}
	if summary.ByCondition[0].Label != "Near Mint" || summary.ByCondition[0].Quantity != 5 {
		t.Errorf("ByCondition[0] = %+v, want Near Mint with quantity 5", summary.ByCondition[0])
	}
}

func TestComputeEmptyCollection(t *testing.T) {
	summary := Compute(&collection.Collection{Name: "Empty"})

	if summary.TotalCards != 0 || summary.TotalValue != 0 {
		t.Errorf("empty collection totals = %d cards, %v value, want zeros",
			summary.TotalCards, summary.TotalValue)
	}
	if len(summary.ByRarity) != 0 || len(summary.BySet) != 0 {
		t.Error("empty collection produced non-empty breakdowns")
	}
}

func TestTopSets(t *testing.T) {
	summary := Compute(testCollection())

	top := summary.TopSets(1)
	if len(top) != 1 || top[0].Label != "LOB" {
		t.Errorf("TopSets(1) = %+v, want single LOB bucket", top)
	}
	if got := summary.TopSets(10); len(got) != 2 {
		t.Errorf("TopSets(10) returned %d buckets, want 2", len(got))
	}
}

func TestRarityRank(t *testing.T) {
	tests := []struct {
		name     string
		rarity   string
		wantRank int
	}{
		{name: "highest", rarity: "Ghost Rare", wantRank: 0},
		{name: "case insensitive", rarity: "ultra rare", wantRank: 9},
		{name: "lowest known", rarity: "Common", wantRank: 20},
		{name: "unknown ranks last", rarity: "Mystery Foil", wantRank: 21},
		{name: "padded", rarity: "  Rare  ", wantRank: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RarityRank(tt.rarity); got != tt.wantRank {
				t.Errorf("RarityRank(%q) = %d, want %d", tt.rarity, got, tt.wantRank)
			}
		})
	}
}
