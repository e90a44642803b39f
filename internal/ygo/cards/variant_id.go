package cards

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// customVariantPrefix marks identities of user-authored prints. Hash-derived
// identities are hex strings and can never start with this prefix, so the two
// identity spaces cannot collide.
const customVariantPrefix = "custom-"

// VariantID derives the stable identity of a print variant from its defining
// attributes. Set code and rarity are normalized (trimmed, case-folded) so
// the same variant hashes identically regardless of who produced the input.
// An imageID of 0 means "no artwork recorded" and hashes as empty.
func VariantID(cardID int, setCode, rarity string, imageID int) string {
	code := strings.ToUpper(strings.TrimSpace(setCode))
	r := strings.ToLower(strings.TrimSpace(rarity))
	img := ""
	if imageID != 0 {
		img = strconv.Itoa(imageID)
	}

	sum := sha256.Sum256(fmt.Appendf(nil, "%d|%s|%s|%s", cardID, code, r, img))
	return hex.EncodeToString(sum[:])
}

// NewCustomVariantID returns a random opaque identity for a user-authored
// print. Such identities are deliberately non-derivable so a custom print is
// never mistaken for a server-catalog match.
func NewCustomVariantID() string {
	return customVariantPrefix + uuid.NewString()
}

// IsCustomVariantID reports whether id belongs to the custom identity space.
func IsCustomVariantID(id string) bool {
	return strings.HasPrefix(id, customVariantPrefix)
}
