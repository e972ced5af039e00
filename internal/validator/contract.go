package validator

import (
	"github.com/utxoledger/engine/pkg/interfaces/contract"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// ContractHook defers to the configured contract interpreter whenever the
// transaction touches a contract-bearing output, either as a spend
// authorization (an input's SpendData "contract" field) or as a new
// contract-locked output.
type ContractHook struct {
	Interpreter contract.Interpreter
}

func (h *ContractHook) Name() string { return "contract" }

func (h *ContractHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	if !h.touchesContract(tx, transaction) {
		return nil
	}
	if h.Interpreter == nil {
		return types.NewPermanent("transaction touches a contract but no interpreter is configured", nil)
	}

	ok, err := h.Interpreter.EvaluateValid(tx, transaction)
	if err != nil {
		return types.NewPermanent("contract evaluation failed", err)
	}
	if !ok {
		return types.NewPermanent("contract rejected transaction", nil)
	}
	return nil
}

func (h *ContractHook) touchesContract(tx storage.Tx, transaction *types.Transaction) bool {
	for _, out := range transaction.Outputs {
		if _, ok := out.Contract(); ok {
			return true
		}
	}
	for _, in := range transaction.Inputs {
		if _, ok := in.Contract(); ok {
			return true
		}
		if out, err := resolveOutput(tx, in.OutputID); err == nil {
			if _, ok := out.Data[types.DataContractKey]; ok {
				return true
			}
		}
	}
	return false
}
