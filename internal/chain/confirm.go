package chain

import (
	"go.uber.org/zap"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// confirmTransaction applies tx's effects to the utxos/stxos/inputs/
// transactions tables and removes it from the mempool, per spec step
// 4.5.3. The consensus adapter's ConfirmTransaction is advisory: its
// failure is logged, and only aborts the enclosing commit when
// StrictConsensusConfirm is set.
func (e *Engine) confirmTransaction(_ locked, stx storage.Tx, tx *types.Transaction) error {
	if e.consensus != nil {
		ok, err := e.consensus.ConfirmTransaction(stx, tx)
		if err != nil || !ok {
			e.logger.Warn("consensus ConfirmTransaction failed",
				zap.String("tx_id", tx.ID().String()), zap.Error(err))
			if e.opts.StrictConsensusConfirm {
				return types.NewPermanent("consensus confirm rejected transaction", err)
			}
		}
	}

	for _, in := range tx.Inputs {
		out, err := lookupOutput(stx, in.OutputID)
		if err != nil {
			return err
		}
		dbOut := types.NewDBOutput(out)

		if err := moveUTXOToSTXO(stx, dbOut); err != nil {
			return err
		}

		dbIn := types.NewDBInput(in)
		if err := stx.Put(storage.TableInputs, dbIn.ID.String(), dbIn.Bytes()); err != nil {
			return types.NewStorageFailure("storing input", err)
		}
	}

	for _, out := range tx.Outputs {
		dbOut := types.NewDBOutput(out)
		if err := stx.Put(storage.TableUTXOs, dbOut.ID.String(), dbOut.Bytes()); err != nil {
			return types.NewStorageFailure("storing utxo", err)
		}
		if publicKey, ok := dbOut.PublicKey(); ok {
			if err := stx.IndexAdd(storage.TableUTXOs, storage.IndexUTXOByOwner, string(publicKey), dbOut.ID.String()); err != nil {
				return types.NewStorageFailure("indexing utxo by owner", err)
			}
		}
	}

	dbTx := types.NewDBTransaction(tx)
	if err := stx.Put(storage.TableTransactions, dbTx.ID.String(), dbTx.Bytes()); err != nil {
		return types.NewStorageFailure("storing transaction", err)
	}

	e.pool.Remove(tx.ID())
	return nil
}

// moveUTXOToSTXO removes dbOut from the utxos table/index and records it
// in stxos, both primary and owner-indexed, per spec step 4.5.3.2.
func moveUTXOToSTXO(stx storage.Tx, dbOut *types.DBOutput) error {
	if err := stx.Put(storage.TableSTXOs, dbOut.ID.String(), dbOut.Bytes()); err != nil {
		return types.NewStorageFailure("storing stxo", err)
	}
	if publicKey, ok := dbOut.PublicKey(); ok {
		if err := stx.IndexAdd(storage.TableSTXOs, storage.IndexSTXOByOwner, string(publicKey), dbOut.ID.String()); err != nil {
			return types.NewStorageFailure("indexing stxo by owner", err)
		}
	}

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

// moveSTXOToUTXO is the inverse of moveUTXOToSTXO, used by reverseBlock.
func moveSTXOToUTXO(stx storage.Tx, dbOut *types.DBOutput) error {
	if err := stx.Put(storage.TableUTXOs, dbOut.ID.String(), dbOut.Bytes()); err != nil {
		return types.NewStorageFailure("restoring utxo", err)
	}
	if publicKey, ok := dbOut.PublicKey(); ok {
		if err := stx.IndexAdd(storage.TableUTXOs, storage.IndexUTXOByOwner, string(publicKey), dbOut.ID.String()); err != nil {
			return types.NewStorageFailure("restoring utxo owner index", err)
		}
	}

	if err := stx.Erase(storage.TableSTXOs, dbOut.ID.String()); err != nil {
		return types.NewStorageFailure("removing stxo", err)
	}
	if publicKey, ok := dbOut.PublicKey(); ok {
		if err := stx.IndexRemove(storage.TableSTXOs, storage.IndexSTXOByOwner, string(publicKey), dbOut.ID.String()); err != nil {
			return types.NewStorageFailure("removing stxo owner index", err)
		}
	}
	return nil
}
