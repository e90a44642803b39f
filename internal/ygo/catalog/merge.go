// Package catalog maintains the locally cached mirror of the external card
// database: one JSON file per language, reconciled against freshly fetched
// snapshots while preserving user-added print customizations.
package catalog

import (
	"strings"

	"github.com/duelkeeper/duelkeeper/internal/ygo/cards"
)

// groupKey identifies a (set code, rarity) variant group, case-insensitively.
func groupKey(setCode, rarity string) string {
	return strings.ToUpper(strings.TrimSpace(setCode)) + "|" + strings.ToLower(strings.TrimSpace(rarity))
}

// Merge reconciles the stored catalog with a freshly fetched snapshot and
// returns the new catalog. The snapshot is authoritative for which cards
// exist and for their scalar facts; locally customized variant identities and
// artwork survive where a matching (set code, rarity) group exists.
//
// A card present only locally is dropped. This mirrors the upstream database
// being the sole authority for card existence, and it means fully
// user-authored cards do not survive a re-merge (pinned by a regression
// test; see TestMergeDropsLocalOnlyCards).
//
// Neither input is mutated; the result shares no variant slices with either.
func Merge(local, remote []*cards.Card) []*cards.Card {
	localByID := make(map[int]*cards.Card, len(local))
	for _, c := range local {
		localByID[c.ID] = c
	}

	merged := make([]*cards.Card, 0, len(remote))
	for _, remoteCard := range remote {
		localCard, ok := localByID[remoteCard.ID]
		if !ok {
			merged = append(merged, adoptCard(remoteCard))
			continue
		}
		merged = append(merged, mergeCard(localCard, remoteCard))
	}

	return merged
}

// adoptCard takes a remote card verbatim, assigning every variant its default
// artwork and deterministic identity.
func adoptCard(remote *cards.Card) *cards.Card {
	out := remote.Clone()
	defaultImage := out.DefaultImageID()

	for i := range out.CardSets {
		v := &out.CardSets[i]
		if v.ImageID == 0 {
			v.ImageID = defaultImage
		}
		v.VariantID = cards.VariantID(out.ID, v.SetCode, v.SetRarity, v.ImageID)
	}

	return out
}

// mergeCard refreshes a locally tracked card from its remote counterpart.
// Scalar fields come from the remote card; variants are reconciled so local
// identities and artwork are kept wherever the remote still lists the same
// (set code, rarity) group.
func mergeCard(localCard, remoteCard *cards.Card) *cards.Card {
	out := remoteCard.Clone()
	defaultImage := out.DefaultImageID()
	if defaultImage == 0 {
		defaultImage = localCard.DefaultImageID()
	}

	// Pre-pass: give every local variant a comparable identity before
	// matching. Variants persisted by older versions may lack an image id or
	// variant id, and an unstable identity here would read as a drop.
	localVariants := make([]cards.CardSet, len(localCard.CardSets))
	copy(localVariants, localCard.CardSets)
	for i := range localVariants {
		v := &localVariants[i]
		if v.ImageID == 0 {
			v.ImageID = defaultImage
		}
		if v.VariantID == "" {
			v.VariantID = cards.VariantID(localCard.ID, v.SetCode, v.SetRarity, v.ImageID)
		}
	}

	// A group may hold several variants with distinct custom artwork.
	groups := make(map[string][]*cards.CardSet)
	for i := range localVariants {
		v := &localVariants[i]
		key := groupKey(v.SetCode, v.SetRarity)
		groups[key] = append(groups[key], v)
	}

	processed := make(map[string]bool)
	var adopted []cards.CardSet

	for _, rv := range out.CardSets {
		group, ok := groups[groupKey(rv.SetCode, rv.SetRarity)]
		if !ok {
			// The remote lists a print the local catalog never saw.
			nv := rv
			if nv.ImageID == 0 {
				nv.ImageID = defaultImage
			}
			nv.VariantID = cards.VariantID(out.ID, nv.SetCode, nv.SetRarity, nv.ImageID)
			adopted = append(adopted, nv)
			continue
		}

		// Refresh mutable fields on every local variant of the group, but
		// keep the local identity and artwork. Marking by variant id avoids
		// double-processing when several remote entries share a group.
		for _, lv := range group {
			if processed[lv.VariantID] {
				continue
			}
			lv.SetName = rv.SetName
			lv.SetPrice = rv.SetPrice
			if rv.SetRarityCode != "" {
				lv.SetRarityCode = rv.SetRarityCode
			}
			processed[lv.VariantID] = true
		}
	}

	// Local variants the remote no longer lists (custom or orphaned prints)
	// are appended unchanged, in their original order.
	result := make([]cards.CardSet, 0, len(localVariants)+len(adopted))
	result = append(result, localVariants...)
	result = append(result, adopted...)
	out.CardSets = result

	return out
}
