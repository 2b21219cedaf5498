package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// QuizContentHash fingerprints a serialized quiz definition. Computed
// over the stored bytes at attempt-save time and recomputed from the
// current definition at load time; a mismatch means the author edited
// the quiz between attempts.
func QuizContentHash(definition []byte) string {
	sum := sha256.Sum256(definition)
	return hex.EncodeToString(sum[:])
}
