package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeStem lower-cases, trims and collapses whitespace in a question
// stem. Used as the dedup key within an extraction run and as the stable
// identity for history tracking.
func NormalizeStem(stem string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(stem))), " ")
}

// StemKey returns a short stable identifier for a question stem.
func StemKey(stem string) string {
	sum := sha256.Sum256([]byte(NormalizeStem(stem)))
	return hex.EncodeToString(sum[:8])
}
