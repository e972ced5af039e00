package validator

import (
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// ReplayGuardHook rejects a transaction whose ID is already confirmed on
// chain, preventing a previously-confirmed transaction from being
// resubmitted and reconfirmed.
type ReplayGuardHook struct{}

func (h *ReplayGuardHook) Name() string { return "replay_guard" }

func (h *ReplayGuardHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	id := transaction.ID()
	existing, err := tx.Get(storage.TableTransactions, id.String())
	if err != nil {
		return types.NewStorageFailure("looking up transaction", err)
	}
	if existing != nil {
		return types.NewTransient("transaction already confirmed", nil)
	}
	return nil
}

// OutputNoveltyHook rejects a transaction that would mint an output whose
// ID already exists in the UTXO or STXO sets. Output IDs are content
// addressed, so a collision means the transaction is either a byte-for-byte
// replay of an output already on chain or a hash coincidence; either way it
// cannot be admitted as new.
type OutputNoveltyHook struct{}

func (h *OutputNoveltyHook) Name() string { return "output_novelty" }

func (h *OutputNoveltyHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	for _, out := range transaction.Outputs {
		id := out.ID()
		if v, err := tx.Get(storage.TableUTXOs, id.String()); err != nil {
			return types.NewStorageFailure("checking utxo novelty", err)
		} else if v != nil {
			return types.NewPermanent("output already exists as an unspent output", nil)
		}
		if v, err := tx.Get(storage.TableSTXOs, id.String()); err != nil {
			return types.NewStorageFailure("checking stxo novelty", err)
		} else if v != nil {
			return types.NewPermanent("output already exists as a spent output", nil)
		}
	}
	return nil
}

// InputResolutionHook resolves every input's referenced output and
// rejects the transaction if any input references an output that is not
// currently unspent, or spends the same output twice within the
// transaction itself.
type InputResolutionHook struct{}

func (h *InputResolutionHook) Name() string { return "input_resolution" }

func (h *InputResolutionHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	if transaction.Coinbase {
		if len(transaction.Inputs) != 0 {
			return types.NewPermanent("coinbase transaction must have no inputs", nil)
		}
		return nil
	}
	if len(transaction.Inputs) == 0 {
		return types.NewPermanent("non-coinbase transaction must have at least one input", nil)
	}

	seen := make(map[types.Hash]struct{}, len(transaction.Inputs))
	for _, in := range transaction.Inputs {
		if _, dup := seen[in.OutputID]; dup {
			return types.NewPermanent("transaction spends the same output twice", nil)
		}
		seen[in.OutputID] = struct{}{}

		raw, err := tx.Get(storage.TableUTXOs, in.OutputID.String())
		if err != nil {
			return types.NewStorageFailure("resolving input", err)
		}
		if raw == nil {
			return types.NewPermanent("input references a non-unspent output", nil)
		}
	}
	return nil
}

// resolveOutput is a helper other hooks use to fetch and decode the UTXO an
// input references. It assumes InputResolutionHook already ran.
func resolveOutput(tx storage.Tx, outputID types.Hash) (*types.DBOutput, error) {
	raw, err := tx.Get(storage.TableUTXOs, outputID.String())
	if err != nil {
		return nil, types.NewStorageFailure("resolving output", err)
	}
	if raw == nil {
		return nil, types.NewPermanent("input references a non-unspent output", nil)
	}
	out, err := types.DecodeDBOutput(raw)
	if err != nil {
		return nil, types.NewStorageFailure("decoding stored output", err)
	}
	return out, nil
}
