// Package mempool holds unconfirmed transactions awaiting inclusion in a
// block. It tracks input and output conflicts so a double-spend or a
// duplicate output can be rejected in O(1), and it bounds getTransactions
// to a byte budget so a generated block never grows past it.
package mempool

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/utxoledger/engine/internal/config"
	"github.com/utxoledger/engine/pkg/types"
)

// Pool is a thread-safe, in-memory index of unconfirmed transactions.
type Pool struct {
	mu sync.RWMutex

	txs map[types.Hash]*types.Transaction

	// inputIndex maps the ID of every output a pooled transaction spends,
	// and outputIndex the ID of every output it creates, to that
	// transaction's ID, so a conflicting submission is rejected without
	// scanning every pooled transaction.
	inputIndex  map[types.Hash]types.Hash
	outputIndex map[types.Hash]types.Hash

	byteSize int

	logger *zap.Logger
}

// New creates an empty pool.
func New(logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		txs:         make(map[types.Hash]*types.Transaction),
		inputIndex:  make(map[types.Hash]types.Hash),
		outputIndex: make(map[types.Hash]types.Hash),
		logger:      logger,
	}
}

// Has reports whether id is already pooled.
func (p *Pool) Has(id types.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.txs[id]
	return ok
}

// Get returns the pooled transaction with the given ID, if present.
func (p *Pool) Get(id types.Hash) (*types.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tx, ok := p.txs[id]
	return tx, ok
}

// Conflicts reports the ID of a pooled transaction that already spends one
// of tx's inputs or already produced one of tx's outputs, if any. Two
// transactions with colliding outputs can arise from duplicate submission
// of (near-)identical transactions; both are conflicts the pool rejects.
func (p *Pool) Conflicts(tx *types.Transaction) (types.Hash, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conflictsLocked(tx)
}

func (p *Pool) conflictsLocked(tx *types.Transaction) (types.Hash, bool) {
	for _, in := range tx.Inputs {
		if conflictID, ok := p.inputIndex[in.OutputID]; ok {
			return conflictID, true
		}
	}
	for _, out := range tx.Outputs {
		if conflictID, ok := p.outputIndex[out.ID()]; ok {
			return conflictID, true
		}
	}
	return types.Hash{}, false
}

// Insert adds tx to the pool. It fails if tx is already pooled or conflicts
// with a pooled transaction's inputs or outputs; callers are expected to
// have already run full validation (see internal/validator) before
// calling Insert.
func (p *Pool) Insert(tx *types.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := tx.ID()
	if _, ok := p.txs[id]; ok {
		return types.NewTransient("transaction already pooled", nil)
	}
	if conflictID, ok := p.conflictsLocked(tx); ok {
		return types.NewTransient(
			fmt.Sprintf("conflicts with pooled transaction %s", conflictID), nil)
	}

	p.txs[id] = tx
	for _, in := range tx.Inputs {
		p.inputIndex[in.OutputID] = id
	}
	for _, out := range tx.Outputs {
		p.outputIndex[out.ID()] = id
	}
	p.byteSize += tx.Size()

	p.logger.Debug("mempool: inserted transaction",
		zap.String("id", id.String()), zap.Int("size", tx.Size()))
	return nil
}

// Remove evicts a transaction from the pool, e.g. because it confirmed in a
// block or because reorg invalidated it. Removing an unpooled ID is a
// no-op.
func (p *Pool) Remove(id types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(id)
}

func (p *Pool) removeLocked(id types.Hash) {
	tx, ok := p.txs[id]
	if !ok {
		return
	}
	delete(p.txs, id)
	for _, in := range tx.Inputs {
		if p.inputIndex[in.OutputID] == id {
			delete(p.inputIndex, in.OutputID)
		}
	}
	for _, out := range tx.Outputs {
		outID := out.ID()
		if p.outputIndex[outID] == id {
			delete(p.outputIndex, outID)
		}
	}
	p.byteSize -= tx.Size()
}

// Rescan removes every pooled transaction for which keep returns false.
// Transactions are gathered first and removed second, so keep's decision
// for one transaction is never skewed by another transaction's removal
// happening mid-scan.
func (p *Pool) Rescan(keep func(tx *types.Transaction) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var toRemove []types.Hash
	for id, tx := range p.txs {
		if !keep(tx) {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		p.removeLocked(id)
	}
}

// All returns every pooled transaction, unordered and without the byte-cap
// GetTransactions applies — for callers that want the whole mempool
// contents rather than a block-template-sized prefix.
func (p *Pool) All() []*types.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.Transaction, 0, len(p.txs))
	for _, tx := range p.txs {
		out = append(out, tx)
	}
	return out
}

// Count returns the number of pooled transactions.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

// Size returns the pool's cumulative transaction byte size.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byteSize
}

// GetTransactions returns pooled transactions ordered by descending
// fee-per-byte (feeRate requires knowing each transaction's fee, supplied
// via feeOf), taking a prefix that stays strictly under
// config.MempoolByteCap bytes. Selection stops at the first transaction
// that would bring the total to or over the cap: neither it nor any
// transaction ordered after it is returned, even one that would fit.
func (p *Pool) GetTransactions(feeOf func(tx *types.Transaction) (uint64, error)) ([]*types.Transaction, error) {
	p.mu.RLock()
	all := make([]*types.Transaction, 0, len(p.txs))
	for _, tx := range p.txs {
		all = append(all, tx)
	}
	p.mu.RUnlock()

	type scored struct {
		tx      *types.Transaction
		feeRate float64
	}
	scoredTxs := make([]scored, 0, len(all))
	for _, tx := range all {
		fee, err := feeOf(tx)
		if err != nil {
			return nil, err
		}
		size := tx.Size()
		rate := 0.0
		if size > 0 {
			rate = float64(fee) / float64(size)
		}
		scoredTxs = append(scoredTxs, scored{tx: tx, feeRate: rate})
	}
	sort.Slice(scoredTxs, func(i, j int) bool {
		if scoredTxs[i].feeRate != scoredTxs[j].feeRate {
			return scoredTxs[i].feeRate > scoredTxs[j].feeRate
		}
		return scoredTxs[i].tx.ID().Less(scoredTxs[j].tx.ID())
	})

	out := make([]*types.Transaction, 0, len(scoredTxs))
	total := 0
	for _, s := range scoredTxs {
		size := s.tx.Size()
		if total+size >= config.MempoolByteCap {
			break
		}
		out = append(out, s.tx)
		total += size
	}
	return out, nil
}
