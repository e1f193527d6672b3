package model

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Digest returns the hex-encoded 128-bit xxh3 hash of content.
// Stored next to every blob and re-checked on fetch.
func Digest(content []byte) string {
	sum := xxh3.Hash128(content).Bytes()
	return hex.EncodeToString(sum[:])
}
