// Package contract defines the contract-interpreter hook the validator
// consults for contract-bearing outputs. The interpreter itself (a WASM
// runtime, a native VM, anything) lives entirely outside the engine.
package contract

import (
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// Interpreter evaluates the contract-bearing outputs referenced by a
// transaction and reports whether the transaction is admissible under
// their embedded logic.
type Interpreter interface {
	// EvaluateValid runs the interpreter over transaction's contract
	// fields (on both its inputs' spend data and its outputs' data bags)
	// and returns true only if every contract-bearing party accepts the
	// transaction.
	EvaluateValid(tx storage.Tx, transaction *types.Transaction) (bool, error)
}
