package stats

import "strings"

// rarityRanking orders printed rarities from most to least desirable. It
// drives sort order in summaries and reports; lower index means higher
// rarity.
var rarityRanking = []string{
	"Ghost Rare",
	"Starlight Rare",
	"Quarter Century Secret Rare",
	"Prismatic Secret Rare",
	"Collector's Rare",
	"Ultimate Rare",
	"Secret Rare",
	"Platinum Secret Rare",
	"Extra Secret Rare",
	"Ultra Rare",
	"Super Rare",
	"Premium Gold Rare",
	"Gold Rare",
	"Mosaic Rare",
	"Starfoil Rare",
	"Shatterfoil Rare",
	"Duel Terminal Rare Parallel Rare",
	"Parallel Rare",
	"Rare",
	"Short Print",
	"Common",
}

var rarityRankIndex = func() map[string]int {
	index := make(map[string]int, len(rarityRanking))
	for i, rarity := range rarityRanking {
		index[strings.ToLower(rarity)] = i
	}
	return index
}()

// RarityRank returns the sort position of a rarity, matched
// case-insensitively. Unknown rarities rank after all known ones.
func RarityRank(rarity string) int {
	if rank, ok := rarityRankIndex[strings.ToLower(strings.TrimSpace(rarity))]; ok {
		return rank
	}
	return len(rarityRanking)
}
