package chain

import (
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// GetBlock returns the block with the given ID, or a NotFound error.
func (e *Engine) GetBlock(id types.Hash) (*types.Block, error) {
	var block *types.Block
	err := e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		if err != nil {
			return types.NewStorageFailure("opening transaction", err)
		}
		defer stx.Abort()

		dbBlock, _, err := loadBlockByID(stx, id)
		if err != nil {
			return err
		}
		if dbBlock == nil {
			return types.NewNotFound("block not found")
		}
		block, err = reconstructBlock(stx, dbBlock)
		return err
	})
	return block, err
}

// GetBlockByHeight returns the main-chain block at height, or a NotFound
// error if the main chain has not reached that height.
func (e *Engine) GetBlockByHeight(height uint64) (*types.Block, error) {
	var block *types.Block
	err := e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		if err != nil {
			return types.NewStorageFailure("opening transaction", err)
		}
		defer stx.Abort()

		idRaw, err := stx.GetSecondary(storage.TableBlocks, storage.IndexHeightToBlockID, storage.HeightKey(height))
		if err != nil {
			return types.NewStorageFailure("looking up height index", err)
		}
		if idRaw == nil {
			return types.NewNotFound("no block at that height")
		}
		blockID, parseErr := hashFromHexString(string(idRaw))
		if parseErr != nil {
			return parseErr
		}

		dbBlock, _, err := loadBlockByID(stx, blockID)
		if err != nil {
			return err
		}
		if dbBlock == nil {
			return types.NewNotFound("block not found")
		}
		block, err = reconstructBlock(stx, dbBlock)
		return err
	})
	return block, err
}

// GetTransaction returns the confirmed transaction with the given ID, or a
// NotFound error.
func (e *Engine) GetTransaction(id types.Hash) (*types.Transaction, error) {
	var tx *types.Transaction
	err := e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		if err != nil {
			return types.NewStorageFailure("opening transaction", err)
		}
		defer stx.Abort()

		tx, err = reconstructTransaction(stx, id)
		return err
	})
	return tx, err
}

// GetOutput returns the output with the given ID, searching utxos then
// stxos, or a NotFound error.
func (e *Engine) GetOutput(id types.Hash) (*types.Output, error) {
	var out *types.Output
	err := e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		if err != nil {
			return types.NewStorageFailure("opening transaction", err)
		}
		defer stx.Abort()

		out, err = lookupOutput(stx, id)
		return err
	})
	return out, err
}

// GetUnspentOutputs returns every output currently unspent and locked to
// publicKey.
func (e *Engine) GetUnspentOutputs(publicKey []byte) ([]*types.Output, error) {
	return e.getOwnedOutputs(storage.TableUTXOs, storage.IndexUTXOByOwner, publicKey)
}

// GetSpentOutputs returns every output ever spent that was locked to
// publicKey.
func (e *Engine) GetSpentOutputs(publicKey []byte) ([]*types.Output, error) {
	return e.getOwnedOutputs(storage.TableSTXOs, storage.IndexSTXOByOwner, publicKey)
}

func (e *Engine) getOwnedOutputs(table string, index int, publicKey []byte) ([]*types.Output, error) {
	var outs []*types.Output
	err := e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		if err != nil {
			return types.NewStorageFailure("opening transaction", err)
		}
		defer stx.Abort()

		ids, err := stx.IndexList(table, index, string(publicKey))
		if err != nil {
			return types.NewStorageFailure("listing owned outputs", err)
		}
		outs = make([]*types.Output, 0, len(ids))
		for _, idStr := range ids {
			raw, err := stx.Get(table, idStr)
			if err != nil {
				return types.NewStorageFailure("loading owned output", err)
			}
			if raw == nil {
				continue
			}
			dbOut, err := types.DecodeDBOutput(raw)
			if err != nil {
				return types.NewStorageFailure("decoding owned output", err)
			}
			outs = append(outs, dbOut.Output())
		}
		return nil
	})
	return outs, err
}

// GetUnconfirmedTransactions returns every transaction currently pooled
// awaiting confirmation.
func (e *Engine) GetUnconfirmedTransactions() []*types.Transaction {
	var out []*types.Transaction
	e.withLock(func(tok locked) error {
		out = e.pool.All()
		return nil
	})
	return out
}

// MempoolCount returns the number of pooled transactions.
func (e *Engine) MempoolCount() int {
	var n int
	e.withLock(func(tok locked) error {
		n = e.pool.Count()
		return nil
	})
	return n
}

// MempoolSize returns the pool's cumulative transaction byte size.
func (e *Engine) MempoolSize() int {
	var n int
	e.withLock(func(tok locked) error {
		n = e.pool.Size()
		return nil
	})
	return n
}
