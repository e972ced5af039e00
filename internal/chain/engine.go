// Package chain is the ledger's control plane: it owns the mempool, runs
// every transaction and block through the validator and consensus adapter,
// and is the only thing that ever writes to the storage backend's tables.
package chain

import (
	"sync"

	"go.uber.org/zap"

	"github.com/utxoledger/engine/internal/config"
	"github.com/utxoledger/engine/internal/mempool"
	"github.com/utxoledger/engine/internal/validator"
	"github.com/utxoledger/engine/pkg/interfaces/consensus"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
)

// locked is an unexported proof-of-possession token for the engine's chain
// lock. Only Engine's exported methods acquire the lock (via withLock);
// every internal method that needs the lock already held takes a locked
// value as its first argument instead of re-acquiring a recursive mutex.
// This gives structured reentrance over the engine's plain,
// non-reentrant sync.Mutex, with no hand-rolled recursive lock.
type locked struct{}

// Engine is the chain engine: the single point of entry for mutating or
// reading ledger state.
type Engine struct {
	mu sync.Mutex

	store     storage.Store
	pool      *mempool.Pool
	kernel    *validator.Kernel
	consensus consensus.Adapter
	opts      *config.EngineOptions
	logger    *zap.Logger
}

// New builds a chain engine over store, using kernel for transaction
// verification, consensus as the pluggable policy adapter, and opts for
// the engine's configuration knobs.
func New(store storage.Store, kernel *validator.Kernel, consensusAdapter consensus.Adapter, opts *config.EngineOptions, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:     store,
		pool:      mempool.New(logger),
		kernel:    kernel,
		consensus: consensusAdapter,
		opts:      opts,
		logger:    logger,
	}
}

func (e *Engine) withLock(fn func(locked) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(locked{})
}
