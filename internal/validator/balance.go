package validator

import (
	"github.com/utxoledger/engine/internal/config"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// BalanceHook enforces that a non-coinbase transaction never creates value:
// the sum of its resolved input values must be at least the sum of its
// output values.
type BalanceHook struct{}

func (h *BalanceHook) Name() string { return "balance" }

func (h *BalanceHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	if transaction.Coinbase {
		return nil
	}

	inputTotal, outputTotal, err := InputOutputTotals(tx, transaction)
	if err != nil {
		return err
	}
	if inputTotal < outputTotal {
		return types.NewPermanent("inputs sum to less than outputs", nil)
	}
	return nil
}

// InputOutputTotals resolves transaction's input values against tx and sums
// them alongside its declared output total. Exported so the chain engine
// can compute the same fee arithmetic outside the validator's hook chain
// (block templating, fee accounting during confirmation).
func InputOutputTotals(tx storage.Tx, transaction *types.Transaction) (inputTotal, outputTotal uint64, err error) {
	for _, in := range transaction.Inputs {
		out, resolveErr := resolveOutput(tx, in.OutputID)
		if resolveErr != nil {
			return 0, 0, resolveErr
		}
		inputTotal += out.Value
	}
	outputTotal = transaction.OutputTotal()
	return inputTotal, outputTotal, nil
}

// FeeFloorHook enforces a minimum fee rate on the transaction's opaque-data
// footprint, proportional to config.MinFeeRate, so a transaction can't
// carry arbitrarily large spend-data/output-data payloads for a token fee.
type FeeFloorHook struct{}

func (h *FeeFloorHook) Name() string { return "fee_floor" }

func (h *FeeFloorHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	if transaction.Coinbase {
		return nil
	}

	inputTotal, outputTotal, err := InputOutputTotals(tx, transaction)
	if err != nil {
		return err
	}
	fee := inputTotal - outputTotal // BalanceHook already guarantees this doesn't underflow

	dataBytes := uint64(transaction.InputDataBytes() + transaction.OutputDataBytes())
	minFee := dataBytes * config.MinFeeRate * config.FeeFloorNumerator / config.FeeFloorDenominator
	if fee < minFee {
		return types.NewPermanent("fee below the minimum fee floor", nil)
	}
	return nil
}
