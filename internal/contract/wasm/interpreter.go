// Package wasm is a reference contract.Interpreter backed by
// github.com/tetratelabs/wazero. It is grounded on the teacher's
// internal/core/ispc/engines/wasm/runtime package (compiled-module
// caching via sync.Map, WASI instantiation, exported-function
// invocation), simplified to the single "evaluate" export this engine's
// contract convention calls.
package wasm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

// Interpreter evaluates contract-bearing transactions by instantiating
// their embedded WASM module and calling its "evaluate" export.
type Interpreter struct {
	runtime wazero.Runtime
	logger  *zap.Logger

	mu      sync.Mutex
	modules map[types.Hash]wazero.CompiledModule
}

// New constructs an Interpreter with a fresh wazero runtime in compiler
// mode. Call Close when the interpreter is no longer needed.
func New(logger *zap.Logger) (*Interpreter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCompilationCache(wazero.NewCompilationCache()))
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiating WASI: %w", err)
	}
	return &Interpreter{
		runtime: rt,
		logger:  logger,
		modules: make(map[types.Hash]wazero.CompiledModule),
	}, nil
}

// Close releases the underlying wazero runtime and every compiled
// module cached within it.
func (i *Interpreter) Close() error {
	return i.runtime.Close(context.Background())
}

// EvaluateValid runs every contract module touched by transaction's
// inputs and outputs, accepting only if all of them return non-zero
// from their "evaluate" export.
func (i *Interpreter) EvaluateValid(tx storage.Tx, transaction *types.Transaction) (bool, error) {
	ctx := context.Background()
	for _, out := range transaction.Outputs {
		code, ok := out.Data[types.DataContractKey]
		if !ok {
			continue
		}
		ok, err := i.evaluate(ctx, code, transaction.Bytes())
		if err != nil {
			return false, fmt.Errorf("wasm: evaluating output contract: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	for _, in := range transaction.Inputs {
		code, ok := in.SpendData[types.SpendDataContractKey]
		if !ok {
			continue
		}
		ok, err := i.evaluate(ctx, code, transaction.Bytes())
		if err != nil {
			return false, fmt.Errorf("wasm: evaluating input contract: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evaluate compiles (or reuses a cached compilation of) code, runs its
// "evaluate" export against message, and reports whether it returned
// non-zero.
func (i *Interpreter) evaluate(ctx context.Context, code, message []byte) (bool, error) {
	id := types.SumHash(code)

	compiled, err := i.compiledModule(ctx, id, code)
	if err != nil {
		return false, err
	}

	moduleConfig := wazero.NewModuleConfig().WithName(id.String())
	mod, err := i.runtime.InstantiateModule(ctx, compiled, moduleConfig)
	if err != nil {
		return false, fmt.Errorf("instantiating module: %w", err)
	}
	defer mod.Close(ctx)

	evaluateFn := mod.ExportedFunction("evaluate")
	if evaluateFn == nil {
		return false, fmt.Errorf("module %s has no evaluate export", id)
	}

	mem := mod.Memory()
	if mem == nil {
		return false, fmt.Errorf("module %s declares no memory", id)
	}
	const inputOffset = 0
	if !mem.Write(inputOffset, message) {
		return false, fmt.Errorf("module %s memory too small for input", id)
	}

	results, err := evaluateFn.Call(ctx, uint64(inputOffset), uint64(len(message)))
	if err != nil {
		return false, fmt.Errorf("calling evaluate: %w", err)
	}
	if len(results) != 1 {
		return false, fmt.Errorf("evaluate returned %d results, want 1", len(results))
	}
	return results[0] != 0, nil
}

func (i *Interpreter) compiledModule(ctx context.Context, id types.Hash, code []byte) (wazero.CompiledModule, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if compiled, ok := i.modules[id]; ok {
		return compiled, nil
	}
	compiled, err := i.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("compiling module: %w", err)
	}
	i.modules[id] = compiled
	return compiled, nil
}
