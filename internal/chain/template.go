package chain

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/utxoledger/engine/internal/validator"
	"github.com/utxoledger/engine/pkg/types"
)

// GenerateVerifyingBlock builds an unconfirmed block template extending
// the current tip, paying the block reward plus pooled fees to a single
// coinbase output locked to publicKey. It is read-only with respect to
// persisted state; the returned block still needs SubmitBlock to be
// accepted. Per Design Note §9, the coinbase output's nonce is drawn from
// crypto/rand rather than a clock-seeded PRNG.
func (e *Engine) GenerateVerifyingBlock(publicKey []byte) (*types.Block, error) {
	var block *types.Block
	err := e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		if err != nil {
			return types.NewStorageFailure("opening transaction", err)
		}
		defer stx.Abort()

		tipDB, err := loadTip(stx)
		if err != nil {
			return err
		}

		var previousID types.Hash
		height := uint64(1)
		if tipDB != nil {
			previousID = tipDB.ID
			height = tipDB.Height + 1
		}

		txs, err := e.pool.GetTransactions(func(tx *types.Transaction) (uint64, error) {
			inputTotal, outputTotal, err := validator.InputOutputTotals(stx, tx)
			if err != nil {
				return 0, err
			}
			return inputTotal - outputTotal, nil
		})
		if err != nil {
			return err
		}

		var fees uint64
		for _, tx := range txs {
			inputTotal, outputTotal, err := validator.InputOutputTotals(stx, tx)
			if err != nil {
				return err
			}
			fees += inputTotal - outputTotal
		}

		reward := e.opts.BlockReward(height)

		nonce, err := randomNonce()
		if err != nil {
			return types.NewStorageFailure("generating coinbase nonce", err)
		}

		coinbase := &types.Transaction{
			Outputs: []*types.Output{{
				Value: fees + reward,
				Nonce: nonce,
				Data:  map[string][]byte{types.DataPublicKeyKey: publicKey},
			}},
			Coinbase: true,
		}

		var consensusData []byte
		if e.consensus != nil {
			consensusData, err = e.consensus.GenerateConsensusData(stx, previousID, publicKey)
			if err != nil {
				return types.NewStorageFailure("generating consensus data", err)
			}
		}

		now := uint64(time.Now().Unix())
		coinbase.Timestamp = now

		block = &types.Block{
			Coinbase:        coinbase,
			Transactions:    txs,
			PreviousBlockID: previousID,
			Timestamp:       now,
			ConsensusData:   consensusData,
			Height:          height,
		}
		return nil
	})
	return block, err
}

// randomNonce draws a uniformly random 32-bit value from crypto/rand.
func randomNonce() (uint64, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return uint64(binary.BigEndian.Uint32(b[:])), nil
}
