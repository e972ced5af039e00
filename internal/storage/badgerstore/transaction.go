package badgerstore

import (
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
)

// txState mirrors the teacher's badger/transaction.go TxActive/TxCommitted/
// TxDiscarded state machine, enforced with atomic.CompareAndSwapInt32 so a
// transaction can only ever leave the active state once.
type txState int32

const (
	txActive txState = iota
	txCommitted
	txDiscarded
)

type tx struct {
	txn   *badgerdb.Txn
	state int32
}

func (t *tx) getState() txState { return txState(atomic.LoadInt32(&t.state)) }

func (t *tx) checkActive() error {
	if t.getState() != txActive {
		return fmt.Errorf("badgerstore: transaction is not active")
	}
	return nil
}

func (t *tx) Get(table, key string) ([]byte, error) {
	return t.get(primaryKey(table, key))
}

func (t *tx) Put(table, key string, value []byte) error {
	return t.put(primaryKey(table, key), value)
}

func (t *tx) Erase(table, key string) error {
	return t.erase(primaryKey(table, key))
}

func (t *tx) GetSecondary(table string, index int, key string) ([]byte, error) {
	return t.get(secondaryKey(table, index, key))
}

func (t *tx) PutSecondary(table string, index int, key string, value []byte) error {
	return t.put(secondaryKey(table, index, key), value)
}

func (t *tx) EraseSecondary(table string, index int, key string) error {
	return t.erase(secondaryKey(table, index, key))
}

func (t *tx) IndexAdd(table string, index int, indexKey, memberKey string) error {
	return t.put(setMemberKey(table, index, indexKey, memberKey), []byte{})
}

func (t *tx) IndexRemove(table string, index int, indexKey, memberKey string) error {
	return t.erase(setMemberKey(table, index, indexKey, memberKey))
}

func (t *tx) IndexList(table string, index int, indexKey string) ([]string, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}
	prefix := setPrefix(table, index, indexKey)

	iterOpts := badgerdb.DefaultIteratorOptions
	iterOpts.PrefetchValues = false
	it := t.txn.NewIterator(iterOpts)
	defer it.Close()

	var members []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		members = append(members, memberSuffix(prefix, it.Item().KeyCopy(nil)))
	}
	return members, nil
}

func (t *tx) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(txActive), int32(txCommitted)) {
		return fmt.Errorf("badgerstore: transaction already closed")
	}
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("badgerstore: commit: %w", err)
	}
	return nil
}

func (t *tx) Abort() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(txActive), int32(txDiscarded)) {
		return nil
	}
	t.txn.Discard()
	return nil
}

func (t *tx) get(key []byte) ([]byte, error) {
	if err := t.checkActive(); err != nil {
		return nil, err
	}
	item, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("badgerstore: get: %w", err)
	}
	return item.ValueCopy(nil)
}

func (t *tx) put(key, value []byte) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("badgerstore: put: %w", err)
	}
	return nil
}

func (t *tx) erase(key []byte) error {
	if err := t.checkActive(); err != nil {
		return err
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("badgerstore: erase: %w", err)
	}
	return nil
}
