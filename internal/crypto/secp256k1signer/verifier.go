// Package secp256k1signer is the reference signer.Verifier implementation:
// secp256k1 ECDSA signatures over a double-SHA256 digest of the message,
// the same primitive and hashing convention as the teacher's
// internal/core/infrastructure/crypto/signature package.
package secp256k1signer

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Verifier verifies DER-encoded secp256k1 ECDSA signatures.
type Verifier struct{}

// New returns a ready-to-use Verifier. It holds no state.
func New() *Verifier { return &Verifier{} }

// Verify reports whether signature is a valid DER-encoded secp256k1
// signature over the double-SHA256 digest of message, under publicKey
// (33-byte compressed or 65-byte uncompressed SEC1 encoding).
func (Verifier) Verify(publicKey, message, signature []byte) bool {
	pubKey, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	digest := doubleSHA256(message)
	return sig.Verify(digest, pubKey)
}

func doubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}
