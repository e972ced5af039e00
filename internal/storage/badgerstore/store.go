// Package badgerstore is the durable storage.Store backend: a thin
// BadgerDB wrapper that maps the primary/secondary/set-index contract in
// pkg/interfaces/storage onto a single flat BadgerDB keyspace via prefix
// composition (see keys.go).
package badgerstore

import (
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
)

// Options configures the on-disk store. The teacher's badger wrapper tunes
// mmap/value-log sizing off the host's cgroup memory limit; this store
// keeps fixed, conservative defaults instead; a ledger node is expected to
// be memory-provisioned explicitly by its operator rather than auto-sized.
type Options struct {
	// Dir is the data directory, required for an on-disk store; it is left
	// empty when InMemory is set.
	Dir string
	// InMemory runs BadgerDB entirely in memory (useful for tests that
	// still want to exercise the real codec/iterator path).
	InMemory bool
	// Logger receives BadgerDB's internal log lines. Defaults to a no-op.
	Logger *zap.Logger
}

// Store is a BadgerDB-backed storage.Store.
type Store struct {
	db     *badgerdb.DB
	logger *zap.Logger
}

// Open opens or creates a BadgerDB store at opts.Dir.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bopts := badgerdb.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = bopts.WithInMemory(true)
	}
	bopts = bopts.
		WithLogger(&badgerLogAdapter{logger.Sugar()}).
		WithValueLogFileSize(512 << 20)

	db, err := badgerdb.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Begin opens a read-write BadgerDB transaction.
func (s *Store) Begin() (storage.Tx, error) {
	return &tx{txn: s.db.NewTransaction(true)}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badgerstore: close: %w", err)
	}
	return nil
}

// badgerLogAdapter routes BadgerDB's internal logging through zap, mirroring
// the teacher's practice of never letting a dependency log to stdlib log
// directly.
type badgerLogAdapter struct {
	log *zap.SugaredLogger
}

func (a *badgerLogAdapter) Errorf(f string, args ...interface{})   { a.log.Errorf(f, args...) }
func (a *badgerLogAdapter) Warningf(f string, args ...interface{}) { a.log.Warnf(f, args...) }
func (a *badgerLogAdapter) Infof(f string, args ...interface{})    { a.log.Infof(f, args...) }
func (a *badgerLogAdapter) Debugf(f string, args ...interface{})   { a.log.Debugf(f, args...) }
