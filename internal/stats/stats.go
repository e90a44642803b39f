// Package stats aggregates a collection into summary figures for display
// and reporting: totals, value, and breakdowns by rarity, set, language
// and condition.
package stats

import (
	"sort"
	"strings"

	"github.com/duelkeeper/duelkeeper/internal/collection"
	"github.com/duelkeeper/duelkeeper/internal/ygo/setcode"
)

// Bucket is one row of a breakdown: a label, the number of physical copies
// it covers, and their summed market value.
type Bucket struct {
	Label    string
	Quantity int
	Value    float64
}

// Summary holds the aggregate figures for one collection.
type Summary struct {
	CollectionName string
	TotalCards     int     // physical copies
	UniqueCards    int     // distinct card ids
	UniqueVariants int     // distinct prints
	TotalValue     float64 // summed market value
	PurchaseTotal  float64 // summed purchase prices
	FirstEditions  int     // physical first edition copies

	ByRarity    []Bucket // ordered most to least rare
	BySet       []Bucket // ordered by quantity, largest first
	ByLanguage  []Bucket // ordered by quantity, largest first
	ByCondition []Bucket // ordered by quantity, largest first
}

// Compute aggregates a collection into a Summary. Set breakdowns use the
// region-agnostic set prefix so localized prints of the same set land in
// one bucket.
func Compute(col *collection.Collection) *Summary {
	summary := &Summary{CollectionName: col.Name}

	rarities := map[string]*Bucket{}
	sets := map[string]*Bucket{}
	languages := map[string]*Bucket{}
	conditions := map[string]*Bucket{}

	for _, card := range col.Cards {
		summary.UniqueCards++
		for _, variant := range card.Variants {
			summary.UniqueVariants++
			setLabel := setPrefix(variant.SetCode)
			for _, entry := range variant.Entries {
				qty := entry.Quantity
				value := entry.MarketValue * float64(qty)

				summary.TotalCards += qty
				summary.TotalValue += value
				summary.PurchaseTotal += entry.PurchasePrice * float64(qty)
				if entry.FirstEdition {
					summary.FirstEditions += qty
				}

				accumulate(rarities, variant.Rarity, qty, value)
				accumulate(sets, setLabel, qty, value)
				accumulate(languages, languageLabel(entry.Language), qty, value)
				accumulate(conditions, conditionLabel(entry.Condition), qty, value)
			}
		}
	}

	summary.ByRarity = sortedBuckets(rarities, byRarityRank)
	summary.BySet = sortedBuckets(sets, byQuantity)
	summary.ByLanguage = sortedBuckets(languages, byQuantity)
	summary.ByCondition = sortedBuckets(conditions, byQuantity)

	return summary
}

// TopSets returns the n largest set buckets from an already computed
// summary. n larger than the breakdown returns all of it.
func (s *Summary) TopSets(n int) []Bucket {
	if n > len(s.BySet) {
		n = len(s.BySet)
	}
	return s.BySet[:n]
}

func accumulate(buckets map[string]*Bucket, label string, qty int, value float64) {
	b, ok := buckets[label]
	if !ok {
		b = &Bucket{Label: label}
		buckets[label] = b
	}
	b.Quantity += qty
	b.Value += value
}

// setPrefix reduces a set code to its set prefix, so "LOB-EN005" and
// "LOB-G005" count toward the same set.
func setPrefix(code string) string {
	normalized := setcode.Normalize(code)
	if i := strings.IndexByte(normalized, '-'); i > 0 {
		return normalized[:i]
	}
	return normalized
}

func languageLabel(lang string) string {
	if lang == "" {
		return "en"
	}
	return strings.ToLower(lang)
}

func conditionLabel(cond string) string {
	if cond == "" {
		return collection.ConditionNearMint
	}
	return cond
}

func byRarityRank(a, b *Bucket) bool {
	ra, rb := RarityRank(a.Label), RarityRank(b.Label)
	if ra != rb {
		return ra < rb
	}
	return a.Label < b.Label
}

func byQuantity(a, b *Bucket) bool {
	if a.Quantity != b.Quantity {
		return a.Quantity > b.Quantity
	}
	return a.Label < b.Label
}

func sortedBuckets(buckets map[string]*Bucket, less func(a, b *Bucket) bool) []Bucket {
	ordered := make([]*Bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

	out := make([]Bucket, len(ordered))
	for i, b := range ordered {
		out[i] = *b
	}
	return out
}
