// Package config assembles the chain engine's typed configuration: the
// block-reward schedule, the fee-floor multiplier, mempool limits, genesis
// bootstrap location, and the permissiveness knobs carried over from the
// design notes' open questions.
package config

import (
	cfgiface "github.com/utxoledger/engine/pkg/interfaces/config"
)

// MempoolByteCap is the maximum cumulative byte size getTransactions will
// return a prefix under — strictly under, per the spec's boundary test.
// 3.9 MiB expressed as an exact byte count (3.9 * 1024 * 1024).
const MempoolByteCap = 4089446

// FeeFloorNumerator/FeeFloorDenominator express the 0.5x minimum-fee
// multiplier as an integer ratio, avoiding floating point in a consensus
// path.
const (
	FeeFloorNumerator   = 1
	FeeFloorDenominator = 2
)

// MinFeeRate is the per-byte rate (in the ledger's base unit) applied to
// the combined input/output opaque-data size to compute a transaction's
// minFee, per spec.md §4.4 step 6.
const MinFeeRate = 100

// EngineOptions is the assembled, validated configuration for one chain
// engine instance.
type EngineOptions struct {
	// BlockReward is the block-subsidy schedule. Required.
	BlockReward cfgiface.BlockRewardFunc
	// CoinbaseOwner resolves a display name for a coinbase public key.
	// Optional; DefaultOptions leaves it nil, and no fallback is supplied.
	CoinbaseOwner cfgiface.CoinbaseOwnerFunc
	// GenesisPath is where a canonical-serialization genesis block is
	// loaded from on startup, if present.
	GenesisPath string
	// StrictConsensusConfirm makes a failing consensus.ConfirmTransaction
	// abort the enclosing block commit instead of only being logged.
	// See SPEC_FULL.md §9 (default false).
	StrictConsensusConfirm bool
	// EnforceTimestampMonotonicity rejects a block whose timestamp is
	// earlier than its parent's. See SPEC_FULL.md §9 (default false).
	EnforceTimestampMonotonicity bool
}

// DefaultOptions returns the engine defaults: a zero reward schedule
// (callers should replace BlockReward), both permissiveness knobs off.
func DefaultOptions() *EngineOptions {
	return &EngineOptions{
		BlockReward: func(uint64) uint64 { return 0 },
	}
}

// Validate checks the options are complete enough to construct an engine.
func (o *EngineOptions) Validate() error {
	if o.BlockReward == nil {
		return errRequired("BlockReward")
	}
	return nil
}

type optionError string

func (e optionError) Error() string { return string(e) }

func errRequired(field string) error {
	return optionError(field + " is required")
}
