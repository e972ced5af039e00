// Package consensus defines the contract the chain engine consumes from a
// pluggable consensus module. The engine never encodes a specific
// consensus algorithm; it only calls through this interface.
package consensus

import (
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// Adapter is the consensus module's contract, consumed by the chain engine
// at the hook points named in its methods.
type Adapter interface {
	// VerifyTransaction applies consensus-specific transaction rules on top
	// of the engine's own validator checks.
	VerifyTransaction(tx storage.Tx, transaction *types.Transaction) (bool, error)

	// ConfirmTransaction is an advisory callback invoked when a transaction
	// is confirmed into a block. The engine logs a failure, and aborts the
	// block only when its StrictConsensusConfirm option is set.
	ConfirmTransaction(tx storage.Tx, transaction *types.Transaction) (bool, error)

	// CheckConsensusRules validates a candidate block against its claimed
	// parent before the engine decides whether to extend, fork, or reject.
	CheckConsensusRules(tx storage.Tx, newBlock, parentBlock *types.Block) (bool, error)

	// IsBlockBetter reports whether candidate should replace currentTip as
	// the main chain tip (e.g. more accumulated work, greater height).
	IsBlockBetter(tx storage.Tx, candidate, currentTip *types.Block) (bool, error)

	// SubmitBlock is the consensus module's final acceptance gate for a
	// block about to be confirmed onto the main chain.
	SubmitBlock(tx storage.Tx, newBlock *types.Block) (bool, error)

	// GenerateConsensusData produces the opaque consensus payload for a new
	// block template extending previousID, to be mined/signed/finalized by
	// whatever the consensus module implements.
	GenerateConsensusData(tx storage.Tx, previousID types.Hash, publicKey []byte) ([]byte, error)
}
