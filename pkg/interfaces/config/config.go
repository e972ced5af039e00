// Package config defines the configuration functions the chain engine is
// parameterized over: the block-reward schedule and the coinbase-owner
// naming function, both supplied by the embedding application.
package config

// BlockRewardFunc returns the block subsidy for a given height. It must be
// monotone-nonincreasing in height.
type BlockRewardFunc func(height uint64) uint64

// CoinbaseOwnerFunc resolves a human-readable owner name for a public key,
// used for display/accounting purposes only; it never affects validity.
type CoinbaseOwnerFunc func(publicKey []byte) string
