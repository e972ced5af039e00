package chain

import (
	"encoding/hex"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// hashFromHexString parses the hex encoding produced by Hash.String back
// into a Hash, the form block IDs are stored under in the height index.
func hashFromHexString(s string) (types.Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return types.Hash{}, types.NewStorageFailure("decoding stored hash", err)
	}
	h, ok := types.HashFromBytes(b)
	if !ok {
		return types.Hash{}, types.NewStorageFailure("malformed stored hash", nil)
	}
	return h, nil
}

// reconstructTransaction rebuilds a full Transaction from the normalized
// dbTransaction/dbInput/dbOutput projections in tx. Outputs are looked up
// in utxos first, falling back to stxos, since a confirmed transaction's
// outputs may since have been spent.
func reconstructTransaction(tx storage.Tx, id types.Hash) (*types.Transaction, error) {
	raw, err := tx.Get(storage.TableTransactions, id.String())
	if err != nil {
		return nil, types.NewStorageFailure("loading transaction", err)
	}
	if raw == nil {
		return nil, types.NewNotFound("transaction not found")
	}
	dbTx, err := types.DecodeDBTransaction(raw)
	if err != nil {
		return nil, types.NewStorageFailure("decoding transaction", err)
	}

	inputs := make([]*types.Input, 0, len(dbTx.InputIDs))
	for _, iid := range dbTx.InputIDs {
		inRaw, err := tx.Get(storage.TableInputs, iid.String())
		if err != nil {
			return nil, types.NewStorageFailure("loading input", err)
		}
		if inRaw == nil {
			return nil, types.NewNotFound("input not found")
		}
		dbIn, err := types.DecodeDBInput(inRaw)
		if err != nil {
			return nil, types.NewStorageFailure("decoding input", err)
		}
		inputs = append(inputs, dbIn.Input())
	}

	outputs := make([]*types.Output, 0, len(dbTx.OutputIDs))
	for _, oid := range dbTx.OutputIDs {
		out, err := lookupOutput(tx, oid)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	return &types.Transaction{
		Inputs:    inputs,
		Outputs:   outputs,
		Timestamp: dbTx.Timestamp,
		Coinbase:  dbTx.Coinbase,
	}, nil
}

// lookupOutput resolves an output ID against utxos then stxos.
func lookupOutput(tx storage.Tx, id types.Hash) (*types.Output, error) {
	raw, err := tx.Get(storage.TableUTXOs, id.String())
	if err != nil {
		return nil, types.NewStorageFailure("loading utxo", err)
	}
	if raw == nil {
		raw, err = tx.Get(storage.TableSTXOs, id.String())
		if err != nil {
			return nil, types.NewStorageFailure("loading stxo", err)
		}
	}
	if raw == nil {
		return nil, types.NewNotFound("output not found")
	}
	dbOut, err := types.DecodeDBOutput(raw)
	if err != nil {
		return nil, types.NewStorageFailure("decoding output", err)
	}
	return dbOut.Output(), nil
}

// reconstructBlock rebuilds a full Block from its dbBlock projection.
func reconstructBlock(tx storage.Tx, dbBlock *types.DBBlock) (*types.Block, error) {
	coinbase, err := reconstructTransaction(tx, dbBlock.CoinbaseID)
	if err != nil {
		return nil, err
	}
	txs := make([]*types.Transaction, 0, len(dbBlock.TxIDs))
	for _, tid := range dbBlock.TxIDs {
		t, err := reconstructTransaction(tx, tid)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return &types.Block{
		Coinbase:        coinbase,
		Transactions:    txs,
		PreviousBlockID: dbBlock.PreviousBlockID,
		Timestamp:       dbBlock.Timestamp,
		ConsensusData:   dbBlock.ConsensusData,
		Height:          dbBlock.Height,
	}, nil
}

// loadBlockByID looks a block up in blocks then candidates, returning its
// dbBlock form and which table it was found in ("" if not found).
func loadBlockByID(tx storage.Tx, id types.Hash) (*types.DBBlock, string, error) {
	raw, err := tx.Get(storage.TableBlocks, id.String())
	if err != nil {
		return nil, "", types.NewStorageFailure("loading block", err)
	}
	if raw != nil {
		db, err := types.DecodeDBBlock(raw)
		if err != nil {
			return nil, "", types.NewStorageFailure("decoding block", err)
		}
		return db, storage.TableBlocks, nil
	}
	raw, err = tx.Get(storage.TableCandidates, id.String())
	if err != nil {
		return nil, "", types.NewStorageFailure("loading candidate block", err)
	}
	if raw != nil {
		db, err := types.DecodeDBBlock(raw)
		if err != nil {
			return nil, "", types.NewStorageFailure("decoding candidate block", err)
		}
		return db, storage.TableCandidates, nil
	}
	return nil, "", nil
}

// loadTip returns the current chain tip, or (nil, nil) if none exists yet.
func loadTip(tx storage.Tx) (*types.DBBlock, error) {
	raw, err := tx.Get(storage.TableBlocks, storage.TipKey)
	if err != nil {
		return nil, types.NewStorageFailure("loading tip", err)
	}
	if raw == nil {
		return nil, nil
	}
	return types.DecodeDBBlock(raw)
}
