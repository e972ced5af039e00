package chain

import (
	"go.uber.org/zap"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// reverseBlockTx undoes the current tip, restoring the previous tip and
// moving the reversed block to candidates, per spec.md §4.5.4. It then
// rescans the mempool and replays the non-coinbase transactions the
// reversed block had confirmed back into it (best-effort: a failed replay
// is logged, not returned), and returns that list of transactions.
func (e *Engine) reverseBlockTx(tok locked, stx storage.Tx) ([]*types.Transaction, error) {
	tipDB, err := loadTip(stx)
	if err != nil {
		return nil, err
	}
	if tipDB == nil {
		return nil, types.NewPermanent("no tip to reverse", nil)
	}
	tip, err := reconstructBlock(stx, tipDB)
	if err != nil {
		return nil, err
	}

	if tip.Coinbase != nil {
		for _, out := range tip.Coinbase.Outputs {
			if err := removeUTXO(stx, types.NewDBOutput(out)); err != nil {
				return nil, err
			}
		}
		if err := stx.Erase(storage.TableTransactions, tip.Coinbase.ID().String()); err != nil {
			return nil, types.NewStorageFailure("removing coinbase transaction", err)
		}
	}

	replay := make([]*types.Transaction, 0, len(tip.Transactions))
	for _, tx := range tip.Transactions {
		for _, out := range tx.Outputs {
			if err := removeUTXO(stx, types.NewDBOutput(out)); err != nil {
				return nil, err
			}
		}
		for _, in := range tx.Inputs {
			dbIn := types.NewDBInput(in)
			if err := stx.Erase(storage.TableInputs, dbIn.ID.String()); err != nil {
				return nil, types.NewStorageFailure("removing input", err)
			}
			out, err := lookupOutput(stx, in.OutputID)
			if err != nil {
				return nil, err
			}
			if err := moveSTXOToUTXO(stx, types.NewDBOutput(out)); err != nil {
				return nil, err
			}
		}
		if err := stx.Erase(storage.TableTransactions, tx.ID().String()); err != nil {
			return nil, types.NewStorageFailure("removing transaction", err)
		}
		replay = append(replay, tx)
	}

	if err := stx.EraseSecondary(storage.TableBlocks, storage.IndexHeightToBlockID, storage.HeightKey(tip.Height)); err != nil {
		return nil, types.NewStorageFailure("removing height index", err)
	}
	tipID := tip.ID()
	if err := stx.Erase(storage.TableBlocks, tipID.String()); err != nil {
		return nil, types.NewStorageFailure("removing block", err)
	}

	if tip.PreviousBlockID.IsZero() {
		if err := stx.Erase(storage.TableBlocks, storage.TipKey); err != nil {
			return nil, types.NewStorageFailure("clearing tip", err)
		}
	} else {
		prevDB, _, err := loadBlockByID(stx, tip.PreviousBlockID)
		if err != nil {
			return nil, err
		}
		if prevDB == nil {
			return nil, types.NewStorageFailure("previous block missing during reverse", nil)
		}
		if err := stx.Put(storage.TableBlocks, storage.TipKey, prevDB.Bytes()); err != nil {
			return nil, types.NewStorageFailure("restoring previous tip", err)
		}
	}

	if err := stx.Put(storage.TableCandidates, tipID.String(), tipDB.Bytes()); err != nil {
		return nil, types.NewStorageFailure("storing reversed block as candidate", err)
	}

	e.pool.Rescan(func(tx *types.Transaction) bool {
		return e.kernel.Verify(stx, tx) == nil
	})
	for _, tx := range replay {
		if _, _, err := e.submitTransactionTx(tok, stx, tx); err != nil {
			e.logger.Warn("replaying reversed transaction into mempool failed",
				zap.String("tx_id", tx.ID().String()), zap.Error(err))
		}
	}

	return replay, nil
}

// removeUTXO erases dbOut from the utxos table and its owner index.
func removeUTXO(stx storage.Tx, dbOut *types.DBOutput) error {
	if err := stx.Erase(storage.TableUTXOs, dbOut.ID.String()); err != nil {
		return types.NewStorageFailure("removing utxo", err)
	}
	if publicKey, ok := dbOut.PublicKey(); ok {
		if err := stx.IndexRemove(storage.TableUTXOs, storage.IndexUTXOByOwner, string(publicKey), dbOut.ID.String()); err != nil {
			return types.NewStorageFailure("removing utxo owner index", err)
		}
	}
	return nil
}

// reorgChainTx walks the candidate chain back from newTipID to the fork
// point, reverses blocks down to that point, then resubmits the candidate
// chain on top of it, all within stx, per spec.md §4.5.5. A false return
// means the caller's storage transaction should be discarded, restoring
// the chain exactly as it was.
func (e *Engine) reorgChainTx(tok locked, stx storage.Tx, newTipID types.Hash) (bool, error) {
	var stack []*types.DBBlock
	cursor := newTipID
	for {
		db, table, err := loadBlockByID(stx, cursor)
		if err != nil {
			return false, err
		}
		if db == nil || table != storage.TableCandidates {
			break
		}
		stack = append(stack, db)
		cursor = db.PreviousBlockID
	}

	for {
		tipDB, err := loadTip(stx)
		if err != nil {
			return false, err
		}
		if tipDB == nil {
			break
		}
		if tipDB.ID == cursor {
			break
		}
		if _, err := e.reverseBlockTx(tok, stx); err != nil {
			return false, err
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		block, err := reconstructBlock(stx, stack[i])
		if err != nil {
			return false, err
		}
		ok, _, err := e.submitBlockTx(tok, stx, block)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}
