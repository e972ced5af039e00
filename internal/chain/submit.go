package chain

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/utxoledger/engine/internal/validator"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// SubmitTransaction verifies tx and, if accepted, adds it to the mempool.
// accepted=false, permanent=true means the submitter should be penalized
// and must never resubmit tx unchanged; permanent=false means tx may be
// retried later (e.g. a mempool conflict, or a transaction that is already
// confirmed). An input that does not resolve to an unspent output is a
// permanent rejection.
func (e *Engine) SubmitTransaction(tx *types.Transaction) (accepted, permanent bool, err error) {
	lockErr := e.withLock(func(tok locked) error {
		accepted, permanent, err = e.submitTransaction(tok, tx)
		return err
	})
	if lockErr != nil {
		return false, false, lockErr
	}
	return accepted, permanent, nil
}

func (e *Engine) submitTransaction(tok locked, tx *types.Transaction) (bool, bool, error) {
	stx, err := e.store.Begin()
	if err != nil {
		return false, false, types.NewStorageFailure("opening transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			stx.Abort()
		}
	}()

	ok, permanent, err := e.submitTransactionTx(tok, stx, tx)
	if err != nil || !ok {
		return ok, permanent, err
	}

	if err := stx.Commit(); err != nil {
		return false, false, types.NewStorageFailure("committing transaction", err)
	}
	committed = true
	return true, false, nil
}

// submitTransactionTx implements spec.md §4.5.1 against an already-open
// storage transaction, so reverseBlock's best-effort mempool replay can
// reuse the enclosing block operation's transaction instead of opening its
// own.
func (e *Engine) submitTransactionTx(tok locked, stx storage.Tx, tx *types.Transaction) (bool, bool, error) {
	if err := e.kernel.Verify(stx, tx); err != nil {
		if types.IsPermanent(err) {
			return false, true, nil
		}
		var ee *types.EngineError
		if errors.As(err, &ee) && ee.Kind == types.KindStorageFailure {
			return false, false, err
		}
		return false, false, nil
	}

	if err := e.pool.Insert(tx); err != nil {
		return false, false, nil
	}
	return true, false, nil
}

// SubmitBlock verifies and, where accepted, confirms newBlock: as a main
// chain extension, as the target of a reorg, or as a stored side-chain
// candidate. accepted=false, permanent=true means newBlock is structurally
// or consensus invalid and must never be resubmitted unchanged.
func (e *Engine) SubmitBlock(block *types.Block) (accepted, permanent bool, err error) {
	lockErr := e.withLock(func(tok locked) error {
		accepted, permanent, err = e.submitBlock(tok, block)
		return err
	})
	if lockErr != nil {
		return false, false, lockErr
	}
	return accepted, permanent, nil
}

func (e *Engine) submitBlock(tok locked, block *types.Block) (bool, bool, error) {
	stx, err := e.store.Begin()
	if err != nil {
		return false, false, types.NewStorageFailure("opening transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			stx.Abort()
		}
	}()

	ok, permanent, err := e.submitBlockTx(tok, stx, block)
	if err != nil || !ok {
		return ok, permanent, err
	}

	if err := stx.Commit(); err != nil {
		return false, false, types.NewStorageFailure("committing block", err)
	}
	committed = true
	return true, false, nil
}

// submitBlockTx implements spec.md §4.5.2 against an already-open storage
// transaction, so reorgChain can resubmit candidate blocks within the same
// transaction as the reorg that required them.
func (e *Engine) submitBlockTx(tok locked, stx storage.Tx, block *types.Block) (bool, bool, error) {
	blockID := block.ID()

	if existing, err := stx.Get(storage.TableBlocks, blockID.String()); err != nil {
		return false, false, types.NewStorageFailure("checking duplicate block", err)
	} else if existing != nil {
		return true, false, nil
	}

	var parentBlock *types.Block
	if !block.PreviousBlockID.IsZero() {
		parentDB, _, err := loadBlockByID(stx, block.PreviousBlockID)
		if err != nil {
			return false, false, err
		}
		if parentDB == nil {
			return false, true, nil
		}
		parentBlock, err = reconstructBlock(stx, parentDB)
		if err != nil {
			return false, false, err
		}
	}

	if e.consensus != nil && parentBlock != nil {
		ok, err := e.consensus.CheckConsensusRules(stx, block, parentBlock)
		if err != nil {
			return false, false, err
		}
		if !ok {
			return false, true, nil
		}
	}
	if e.opts.EnforceTimestampMonotonicity && parentBlock != nil && block.Timestamp < parentBlock.Timestamp {
		return false, true, nil
	}

	tipDB, err := loadTip(stx)
	if err != nil {
		return false, false, err
	}
	var tipBlock *types.Block
	if tipDB != nil {
		tipBlock, err = reconstructBlock(stx, tipDB)
		if err != nil {
			return false, false, err
		}
	}
	if tipBlock != nil && block.PreviousBlockID.IsZero() {
		// A zero previous-block ID marks a genesis submission, which is
		// only accepted while the chain has no tip.
		return false, true, nil
	}

	switch {
	case tipBlock == nil:
		block.Height = 1
		return e.extendChain(tok, stx, block)

	case tipBlock.ID() == block.PreviousBlockID:
		block.Height = tipBlock.Height + 1
		return e.extendChain(tok, stx, block)

	default:
		if e.consensus != nil {
			better, err := e.consensus.IsBlockBetter(stx, block, tipBlock)
			if err != nil {
				return false, false, err
			}
			if better {
				ok, err := e.reorgChainTx(tok, stx, block.PreviousBlockID)
				if err != nil {
					return false, false, err
				}
				if !ok {
					return false, false, nil
				}
				newTipDB, err := loadTip(stx)
				if err != nil {
					return false, false, err
				}
				newTip, err := reconstructBlock(stx, newTipDB)
				if err != nil {
					return false, false, err
				}
				block.Height = newTip.Height + 1
				return e.extendChain(tok, stx, block)
			}
		}

		parentHeight := uint64(0)
		if parentBlock != nil {
			parentHeight = parentBlock.Height
		}
		block.Height = parentHeight + 1
		dbBlock := types.NewDBBlock(block)
		candidateID := block.ID()
		if err := stx.Put(storage.TableCandidates, candidateID.String(), dbBlock.Bytes()); err != nil {
			return false, false, types.NewStorageFailure("storing candidate block", err)
		}
		return true, false, nil
	}
}

// extendChain runs body verification, confirms every transaction, and
// commits the new tip's layout (spec.md §4.5.2 steps 5-6).
func (e *Engine) extendChain(tok locked, stx storage.Tx, block *types.Block) (bool, bool, error) {
	if err := e.verifyBlockBody(stx, block); err != nil {
		if types.IsPermanent(err) {
			return false, true, nil
		}
		return false, false, err
	}

	var fees uint64
	for _, tx := range block.Transactions {
		inputTotal, outputTotal, err := validator.InputOutputTotals(stx, tx)
		if err != nil {
			return false, false, err
		}
		fees += inputTotal - outputTotal
	}

	if block.Coinbase == nil {
		return false, true, nil
	}
	if err := e.kernel.Verify(stx, block.Coinbase); err != nil {
		if types.IsPermanent(err) {
			return false, true, nil
		}
		return false, false, err
	}

	reward := e.opts.BlockReward(block.Height)
	if block.Coinbase.OutputTotal() > fees+reward {
		return false, true, nil
	}

	if e.consensus != nil {
		ok, err := e.consensus.SubmitBlock(stx, block)
		if err != nil {
			return false, false, err
		}
		if !ok {
			return false, true, nil
		}
	}

	if err := e.confirmTransaction(tok, stx, block.Coinbase); err != nil {
		return false, false, err
	}
	for _, tx := range block.Transactions {
		if err := e.confirmTransaction(tok, stx, tx); err != nil {
			return false, false, err
		}
	}

	dbBlock := types.NewDBBlock(block)
	blockID := block.ID()
	if err := stx.Put(storage.TableBlocks, blockID.String(), dbBlock.Bytes()); err != nil {
		return false, false, types.NewStorageFailure("storing block", err)
	}
	if err := stx.Put(storage.TableBlocks, storage.TipKey, dbBlock.Bytes()); err != nil {
		return false, false, types.NewStorageFailure("storing tip", err)
	}
	if err := stx.PutSecondary(storage.TableBlocks, storage.IndexHeightToBlockID, storage.HeightKey(block.Height), []byte(blockID.String())); err != nil {
		return false, false, types.NewStorageFailure("indexing block height", err)
	}
	if err := stx.Erase(storage.TableCandidates, blockID.String()); err != nil {
		return false, false, types.NewStorageFailure("clearing candidate", err)
	}

	e.pool.Rescan(func(tx *types.Transaction) bool {
		return e.kernel.Verify(stx, tx) == nil
	})

	return true, false, nil
}

// verifyBlockBody verifies every non-coinbase transaction in parallel
// goroutines that all read the block's shared storage transaction (nothing
// writes to it during this phase), joined in batches of
// runtime.GOMAXPROCS(0) with a single shared failure flag checked between
// batches, per spec.md §5.
func (e *Engine) verifyBlockBody(stx storage.Tx, block *types.Block) error {
	txs := block.Transactions
	if len(txs) == 0 {
		return nil
	}

	batchSize := runtime.GOMAXPROCS(0)
	if batchSize < 1 {
		batchSize = 1
	}

	var failed atomic.Bool
	var firstErr atomic.Value // stores error

	for start := 0; start < len(txs); start += batchSize {
		if failed.Load() {
			break
		}
		end := start + batchSize
		if end > len(txs) {
			end = len(txs)
		}

		var wg sync.WaitGroup
		for _, tx := range txs[start:end] {
			wg.Add(1)
			go func(tx *types.Transaction) {
				defer wg.Done()
				if err := e.kernel.Verify(stx, tx); err != nil {
					failed.Store(true)
					firstErr.CompareAndSwap(nil, err)
				}
			}(tx)
		}
		wg.Wait()
	}

	if v := firstErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}
