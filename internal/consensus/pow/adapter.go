// Package pow is a reference consensus.Adapter implementing simple
// proof-of-work: a block is valid only if its ID (which hashes its
// opaque ConsensusData, and therefore its nonce) has at least
// DifficultyBits leading zero bits. It is grounded on the teacher's
// internal/core/infrastructure/crypto/pow package (MiningEngine's
// leading-zero-bit target check and GenerateConsensusData's
// find-a-nonce loop), simplified to a fixed difficulty rather than the
// teacher's windowed difficulty-adjustment strategy.
package pow

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// Adapter is a fixed-difficulty proof-of-work consensus module. It holds
// no chain state of its own; every decision is a pure function of the
// blocks it is handed.
type Adapter struct {
	// DifficultyBits is the minimum number of leading zero bits a
	// block's ID must have to be accepted.
	DifficultyBits uint

	logger *zap.Logger
}

// New returns an Adapter requiring difficultyBits leading zero bits.
func New(difficultyBits uint, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{DifficultyBits: difficultyBits, logger: logger}
}

// VerifyTransaction applies no consensus-specific transaction rules
// beyond what the validator kernel already enforces.
func (a *Adapter) VerifyTransaction(tx storage.Tx, transaction *types.Transaction) (bool, error) {
	return true, nil
}

// ConfirmTransaction is a no-op advisory hook.
func (a *Adapter) ConfirmTransaction(tx storage.Tx, transaction *types.Transaction) (bool, error) {
	return true, nil
}

// CheckConsensusRules requires newBlock's ID to meet the configured
// proof-of-work target and its height to be exactly one past its parent.
func (a *Adapter) CheckConsensusRules(tx storage.Tx, newBlock, parentBlock *types.Block) (bool, error) {
	if !meetsTarget(newBlock.ID(), a.DifficultyBits) {
		return false, nil
	}
	if parentBlock != nil && newBlock.Height != parentBlock.Height+1 {
		return false, nil
	}
	return true, nil
}

// IsBlockBetter prefers the chain with the greater height, i.e. the
// longest valid proof-of-work chain. Every block on a valid chain
// already met the same fixed difficulty target, so height alone orders
// accumulated work.
func (a *Adapter) IsBlockBetter(tx storage.Tx, candidate, currentTip *types.Block) (bool, error) {
	if currentTip == nil {
		return true, nil
	}
	return candidate.Height > currentTip.Height, nil
}

// SubmitBlock re-checks the proof-of-work target as the final
// acceptance gate.
func (a *Adapter) SubmitBlock(tx storage.Tx, newBlock *types.Block) (bool, error) {
	return meetsTarget(newBlock.ID(), a.DifficultyBits), nil
}

// GenerateConsensusData searches for an 8-byte big-endian nonce such that
// the hash of previousID followed by the nonce meets the configured
// difficulty target, in the shape of the teacher's
// MiningEngine.MineBlockHeader loop, carried in the opaque ConsensusData
// payload rather than a dedicated header field.
//
// The probe is not the block ID: the block ID also covers fields this
// method does not see (the coinbase, timestamp, height), so the returned
// data does not by itself make the assembled block meet the target, and
// the result depends only on previousID. If no nonce within 2^20 attempts
// meets the target, it logs a warning and returns eight zero bytes.
func (a *Adapter) GenerateConsensusData(tx storage.Tx, previousID types.Hash, publicKey []byte) ([]byte, error) {
	const maxAttempts = 1 << 20
	for nonce := uint64(0); nonce < maxAttempts; nonce++ {
		data := make([]byte, 8)
		binary.BigEndian.PutUint64(data, nonce)
		probe := types.SumHash(append(previousID[:], data...))
		if meetsTarget(probe, a.DifficultyBits) {
			return data, nil
		}
	}
	a.logger.Warn("exhausted nonce search without meeting difficulty target",
		zap.Uint("difficulty_bits", a.DifficultyBits))
	return make([]byte, 8), nil
}

// meetsTarget reports whether hash has at least targetBits leading
// zero bits.
func meetsTarget(hash types.Hash, targetBits uint) bool {
	if targetBits == 0 {
		return true
	}
	var zeroBits uint
	for _, b := range hash[:] {
		if b == 0 {
			zeroBits += 8
			continue
		}
		for i := 7; i >= 0; i-- {
			if (b>>uint(i))&1 == 0 {
				zeroBits++
			} else {
				return zeroBits >= targetBits
			}
		}
	}
	return zeroBits >= targetBits
}
