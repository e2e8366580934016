package project

import (
	"crypto/sha256"
)

// Digest is a 256-bit hash, the same shape as source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by every salt in order. The driver keys
// cached verdicts by Combine(fileHash, toolDigest).
func Combine(content Digest, salts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, s := range salts {
		_, _ = h.Write(s[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Sum hashes an arbitrary string into a Digest.
func Sum(s string) Digest {
	return sha256.Sum256([]byte(s))
}
