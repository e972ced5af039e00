package validator

import (
	"github.com/utxoledger/engine/pkg/interfaces/consensus"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// ConsensusHook runs last, giving the pluggable consensus module the final
// say over a transaction that has already passed every engine-native
// check.
type ConsensusHook struct {
	Adapter consensus.Adapter
}

func (h *ConsensusHook) Name() string { return "consensus" }

func (h *ConsensusHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	if h.Adapter == nil {
		return nil
	}
	ok, err := h.Adapter.VerifyTransaction(tx, transaction)
	if err != nil {
		return types.NewPermanent("consensus verification failed", err)
	}
	if !ok {
		return types.NewPermanent("consensus module rejected transaction", nil)
	}
	return nil
}
