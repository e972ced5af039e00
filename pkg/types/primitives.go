// Package types defines the immutable value types shared across the ledger
// engine: blocks, transactions, inputs, outputs, and their storage-form
// projections.
package types

import (
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the width in bytes of every content-addressed ID in the engine.
const HashSize = 32

// Hash is a content-addressed identifier. It is produced by hashing an
// entity's canonical byte encoding, never stored as a pointer-graph edge:
// resolving a Hash is always a table lookup.
type Hash [HashSize]byte

// ZeroHash is the sentinel previous-block ID for the genesis block.
var ZeroHash Hash

// String renders the hash as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash's raw bytes.
func (h Hash) Bytes() []byte {
	return h[:]
}

// IsZero reports whether h is the all-zero sentinel.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Less provides a total order over hashes, used to sort input/output sets
// before canonical hashing.
func (h Hash) Less(other Hash) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// HashFromBytes copies b into a Hash. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, bool) {
	var h Hash
	if len(b) != HashSize {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

// SumHash computes the canonical ID for an entity's encoded bytes.
func SumHash(data []byte) Hash {
	return blake2b.Sum256(data)
}

// SortHashes sorts a slice of hashes in place using Hash.Less.
func SortHashes(hs []Hash) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Less(hs[j]) })
}

// ConcatHashes concatenates hashes in their current order into one byte
// slice, for use as the payload of a further hash.
func ConcatHashes(hs []Hash) []byte {
	out := make([]byte, 0, len(hs)*HashSize)
	for _, h := range hs {
		out = append(out, h[:]...)
	}
	return out
}
