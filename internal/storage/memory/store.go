// Package memory provides an in-process, transactional key-value store
// satisfying pkg/interfaces/storage. It exists for tests and for
// ephemeral/embedded use; its transaction state machine mirrors the
// atomic-CompareAndSwap discipline used by the BadgerDB-backed store in
// internal/storage/badgerstore.
package memory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
)

type table struct {
	primary   map[string][]byte
	secondary map[int]map[string][]byte
	sets      map[int]map[string]map[string]struct{}
}

func newTable() *table {
	return &table{
		primary:   make(map[string][]byte),
		secondary: make(map[int]map[string][]byte),
		sets:      make(map[int]map[string]map[string]struct{}),
	}
}

func (t *table) clone() *table {
	nt := newTable()
	for k, v := range t.primary {
		nt.primary[k] = append([]byte(nil), v...)
	}
	for idx, m := range t.secondary {
		nm := make(map[string][]byte, len(m))
		for k, v := range m {
			nm[k] = append([]byte(nil), v...)
		}
		nt.secondary[idx] = nm
	}
	for idx, m := range t.sets {
		nm := make(map[string]map[string]struct{}, len(m))
		for k, members := range m {
			nmembers := make(map[string]struct{}, len(members))
			for member := range members {
				nmembers[member] = struct{}{}
			}
			nm[k] = nmembers
		}
		nt.sets[idx] = nm
	}
	return nt
}

// Store is an in-memory Store. It serializes writers with a single mutex:
// Begin blocks until any prior transaction commits or aborts, matching the
// "writes are serialized" clause of the storage contract.
type Store struct {
	mu     sync.Mutex
	tables map[string]*table
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

func (s *Store) tableFor(name string) *table {
	t, ok := s.tables[name]
	if !ok {
		t = newTable()
		s.tables[name] = t
	}
	return t
}

// Begin opens a transaction holding the store's single writer lock for its
// duration; the transaction reads and writes a private clone of each table
// it touches, applied back atomically on Commit.
func (s *Store) Begin() (storage.Tx, error) {
	s.mu.Lock()
	return &txn{store: s, overlay: make(map[string]*table)}, nil
}

// Close is a no-op; the in-memory store holds no external resources.
func (s *Store) Close() error { return nil }

type txState int32

const (
	txActive txState = iota
	txCommitted
	txAborted
)

type txn struct {
	store     *Store
	overlayMu sync.Mutex
	overlay   map[string]*table
	state     int32
}

func (t *txn) getState() txState { return txState(atomic.LoadInt32(&t.state)) }

// tableFor returns the transaction's private overlay for name, cloning it
// from the store on first touch. Body verification runs the validator
// concurrently across a block's transactions against one shared tx (see
// chain.verifyBlockBody), so this must be safe for concurrent callers even
// though the transaction itself is single-writer at the Store level.
func (t *txn) tableFor(name string) *table {
	t.overlayMu.Lock()
	defer t.overlayMu.Unlock()
	tb, ok := t.overlay[name]
	if !ok {
		tb = t.store.tableFor(name).clone()
		t.overlay[name] = tb
	}
	return tb
}

func (t *txn) checkActive() error {
	if t.getState() != txActive {
		return fmt.Errorf("transaction is not active")
	}
	return nil
}

func (t *txn) Get(table, key string) ([]byte, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}
	return t.tableFor(table).primary[key], nil
}

func (t *txn) Put(table, key string, value []byte) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	t.tableFor(table).primary[key] = append([]byte(nil), value...)
	return nil
}

func (t *txn) Erase(table, key string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	delete(t.tableFor(table).primary, key)
	return nil
}

func (t *txn) GetSecondary(table string, index int, key string) ([]byte, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}
	m := t.tableFor(table).secondary[index]
	return m[key], nil
}

func (t *txn) PutSecondary(table string, index int, key string, value []byte) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	tb := t.tableFor(table)
	m, ok := tb.secondary[index]
	if !ok {
		m = make(map[string][]byte)
		tb.secondary[index] = m
	}
	m[key] = append([]byte(nil), value...)
	return nil
}

func (t *txn) EraseSecondary(table string, index int, key string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if m, ok := t.tableFor(table).secondary[index]; ok {
		delete(m, key)
	}
	return nil
}

func (t *txn) IndexAdd(table string, index int, indexKey, memberKey string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	tb := t.tableFor(table)
	m, ok := tb.sets[index]
	if !ok {
		m = make(map[string]map[string]struct{})
		tb.sets[index] = m
	}
	members, ok := m[indexKey]
	if !ok {
		members = make(map[string]struct{})
		m[indexKey] = members
	}
	members[memberKey] = struct{}{}
	return nil
}

func (t *txn) IndexRemove(table string, index int, indexKey, memberKey string) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	tb := t.tableFor(table)
	if m, ok := tb.sets[index]; ok {
		if members, ok := m[indexKey]; ok {
			delete(members, memberKey)
		}
	}
	return nil
}

func (t *txn) IndexList(table string, index int, indexKey string) ([]string, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}
	tb := t.tableFor(table)
	members := tb.sets[index][indexKey]
	out := make([]string, 0, len(members))
	for k := range members {
		out = append(out, k)
	}
	return out, nil
}

func (t *txn) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(txActive), int32(txCommitted)) {
		return fmt.Errorf("transaction already closed")
	}
	defer t.store.mu.Unlock()
	for name, tb := range t.overlay {
		t.store.tables[name] = tb
	}
	return nil
}

func (t *txn) Abort() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(txActive), int32(txAborted)) {
		return nil
	}
	t.store.mu.Unlock()
	return nil
}
