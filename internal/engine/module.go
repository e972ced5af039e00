// Package engine assembles the ledger engine's concrete components —
// storage backend, mempool, validator kernel, consensus adapter,
// contract interpreter, signature verifier, and chain engine — into one
// fx.Module, grounded on the teacher's per-component module.go files
// (internal/core/infrastructure/log/module.go,
// internal/core/infrastructure/writegate/module.go): an fx.In-tagged
// params struct, an fx.Out-tagged output struct, and a Provide/Invoke
// pair wiring construction and lifecycle hooks.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/utxoledger/engine/internal/chain"
	"github.com/utxoledger/engine/internal/config"
	"github.com/utxoledger/engine/internal/consensus/pow"
	"github.com/utxoledger/engine/internal/contract/wasm"
	"github.com/utxoledger/engine/internal/crypto/secp256k1signer"
	"github.com/utxoledger/engine/internal/storage/badgerstore"
	"github.com/utxoledger/engine/internal/validator"
	"github.com/utxoledger/engine/pkg/interfaces/consensus"
	"github.com/utxoledger/engine/pkg/interfaces/contract"
	"github.com/utxoledger/engine/pkg/interfaces/signer"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
)

// Settings configures the assembled engine. Zero values select an
// in-memory Badger store, proof-of-work consensus with DifficultyBits 0
// (every block ID meets the target), no contract interpreter, and
// config.DefaultOptions. The secp256k1 verifier is always used.
type Settings struct {
	DataDir           string
	DifficultyBits    uint
	EnableContracts   bool
	CoinbasePublicKey []byte
	EngineOptions     *config.EngineOptions
}

// Params is the set of dependencies Module draws from the fx graph.
type Params struct {
	fx.In

	Logger   *zap.Logger `optional:"true"`
	Settings Settings
}

// Output is the set of components Module provides back into the fx
// graph: the storage backend, the assembled chain engine, and the
// individual pluggable adapters, each independently injectable.
type Output struct {
	fx.Out

	Store       storage.Store
	Verifier    signer.Verifier
	Consensus   consensus.Adapter
	Interpreter contract.Interpreter
	Engine      *chain.Engine
}

// Module returns the fx.Option wiring the ledger engine's components
// together.
func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(Provide),
		fx.Invoke(registerLifecycle),
	)
}

// Provide constructs the engine's components from Params, the way the
// teacher's log.ProvideServices and writegate.ProvideWriteGate build
// their modules' outputs from an fx.In params struct.
func Provide(p Params) (Output, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := badgerstore.Open(badgerstore.Options{
		Dir:      p.Settings.DataDir,
		InMemory: p.Settings.DataDir == "",
		Logger:   logger,
	})
	if err != nil {
		return Output{}, fmt.Errorf("engine: opening storage: %w", err)
	}

	verifier := secp256k1signer.New()
	consensusAdapter := pow.New(p.Settings.DifficultyBits, logger)

	var interpreter contract.Interpreter
	if p.Settings.EnableContracts {
		wasmInterpreter, err := wasm.New(logger)
		if err != nil {
			return Output{}, fmt.Errorf("engine: starting contract interpreter: %w", err)
		}
		interpreter = wasmInterpreter
	}

	opts := p.Settings.EngineOptions
	if opts == nil {
		opts = config.DefaultOptions()
	}

	kernel := validator.NewKernel(verifier, interpreter, consensusAdapter)
	eng := chain.New(store, kernel, consensusAdapter, opts, logger)

	return Output{
		Store:       store,
		Verifier:    verifier,
		Consensus:   consensusAdapter,
		Interpreter: interpreter,
		Engine:      eng,
	}, nil
}

// lifecycleParams is the set of dependencies registerLifecycle draws from
// the fx graph. The contract interpreter is optional: it is only present
// when Settings.EnableContracts was set.
type lifecycleParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Engine      *chain.Engine
	Store       storage.Store
	Interpreter contract.Interpreter `optional:"true"`
	Settings    Settings
	Logger      *zap.Logger `optional:"true"`
}

// registerLifecycle hooks the assembled engine's bootstrap and storage
// teardown into the fx application lifecycle.
func registerLifecycle(p lifecycleParams) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Engine.Bootstrap(p.Settings.CoinbasePublicKey); err != nil {
				return fmt.Errorf("engine: bootstrapping chain: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if interp, ok := p.Interpreter.(*wasm.Interpreter); ok {
				if err := interp.Close(); err != nil {
					logger.Warn("closing contract interpreter", zap.Error(err))
				}
			}
			return p.Store.Close()
		},
	})
}
