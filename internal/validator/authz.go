package validator

import (
	"github.com/utxoledger/engine/pkg/interfaces/signer"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// AuthorizationHook verifies every input's spend authorization against the
// output it references: a plain publicKey-locked output needs a valid
// signature over the transaction's OutputSetID; a contract-locked output
// defers entirely to ContractHook and is skipped here.
type AuthorizationHook struct {
	Verifier signer.Verifier
}

func (h *AuthorizationHook) Name() string { return "authorization" }

func (h *AuthorizationHook) Verify(tx storage.Tx, transaction *types.Transaction) error {
	if transaction.Coinbase {
		return nil
	}

	message := transaction.OutputSetID().Bytes()
	for _, in := range transaction.Inputs {
		out, err := resolveOutput(tx, in.OutputID)
		if err != nil {
			return err
		}

		if _, hasContract := out.Data[types.DataContractKey]; hasContract {
			// Contract-gated spend authorization is ContractHook's concern.
			continue
		}

		publicKey, ok := out.PublicKey()
		if !ok {
			return types.NewPermanent("output has no publicKey or contract lock", nil)
		}

		signature, ok := in.Signature()
		if !ok {
			return types.NewPermanent("input missing signature for publicKey-locked output", nil)
		}

		if h.Verifier == nil {
			return types.NewPermanent("no signature verifier configured", nil)
		}
		if !h.Verifier.Verify(publicKey, message, signature) {
			return types.NewPermanent("signature verification failed", nil)
		}
	}
	return nil
}
