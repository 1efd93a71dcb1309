package recognizer

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint is the hex BLAKE2b-256 digest of the image bytes. It identifies an image
// across sessions for the duplicate history check.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
