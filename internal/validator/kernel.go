// Package validator is the transaction verification microkernel: a fixed,
// short-circuiting chain of hooks the chain engine runs every submitted
// transaction through, in order, before it is ever pooled or confirmed.
package validator

import (
	"errors"
	"fmt"

	"github.com/utxoledger/engine/pkg/interfaces/consensus"
	"github.com/utxoledger/engine/pkg/interfaces/contract"
	"github.com/utxoledger/engine/pkg/interfaces/signer"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// Hook is one verification step in the kernel's fixed chain. A hook never
// mutates storage; it only reads tx to decide admissibility.
type Hook interface {
	Name() string
	Verify(tx storage.Tx, transaction *types.Transaction) error
}

// Kernel runs a transaction through its hooks in registration order,
// stopping at the first failure. The order mirrors spec.md §4.4: replay,
// output novelty, input resolution, authorization, balance, fee floor,
// contract, consensus.
type Kernel struct {
	hooks []Hook
}

// NewKernel builds the engine's standard hook chain.
func NewKernel(verifier signer.Verifier, interpreter contract.Interpreter, adapter consensus.Adapter) *Kernel {
	return &Kernel{
		hooks: []Hook{
			&ReplayGuardHook{},
			&OutputNoveltyHook{},
			&InputResolutionHook{},
			&AuthorizationHook{Verifier: verifier},
			&BalanceHook{},
			&FeeFloorHook{},
			&ContractHook{Interpreter: interpreter},
			&ConsensusHook{Adapter: adapter},
		},
	}
}

// Verify runs tx through every hook in order, stopping at the first
// rejection. A nil return means tx is admissible.
func (k *Kernel) Verify(tx storage.Tx, transaction *types.Transaction) error {
	for _, h := range k.hooks {
		if err := h.Verify(tx, transaction); err != nil {
			return fmt.Errorf("%s: %w", h.Name(), err)
		}
	}
	return nil
}

// VerifyBatch verifies each transaction independently, returning one error
// slot per transaction (nil meaning admissible). A storage failure on any
// one transaction aborts the whole batch, since it signals the underlying
// transaction view can no longer be trusted.
func (k *Kernel) VerifyBatch(tx storage.Tx, txs []*types.Transaction) ([]error, error) {
	results := make([]error, len(txs))
	for i, t := range txs {
		err := k.Verify(tx, t)
		var ee *types.EngineError
		if errors.As(err, &ee) && ee.Kind == types.KindStorageFailure {
			return results, err
		}
		results[i] = err
	}
	return results, nil
}
