package badgerstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utxoledger/engine/pkg/interfaces/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestPrimaryPutGetErase(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(storage.TableBlocks, "a", []byte("v1")))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	v, err := tx.Get(storage.TableBlocks, "a")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)
	require.NoError(t, tx.Erase(storage.TableBlocks, "a"))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	v, err = tx.Get(storage.TableBlocks, "a")
	require.NoError(t, err)
	require.Nil(t, v)
	require.NoError(t, tx.Abort())
}

func TestAbortDiscardsWrites(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(storage.TableBlocks, "a", []byte("v1")))
	require.NoError(t, tx.Abort())

	tx, err = s.Begin()
	require.NoError(t, err)
	v, err := tx.Get(storage.TableBlocks, "a")
	require.NoError(t, err)
	require.Nil(t, v)
	require.NoError(t, tx.Abort())
}

func TestSecondaryIndex(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.PutSecondary(storage.TableBlocks, storage.IndexHeightToBlockID, storage.HeightKey(7), []byte("block-7")))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	v, err := tx.GetSecondary(storage.TableBlocks, storage.IndexHeightToBlockID, storage.HeightKey(7))
	require.NoError(t, err)
	require.Equal(t, []byte("block-7"), v)
	require.NoError(t, tx.EraseSecondary(storage.TableBlocks, storage.IndexHeightToBlockID, storage.HeightKey(7)))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	v, err = tx.GetSecondary(storage.TableBlocks, storage.IndexHeightToBlockID, storage.HeightKey(7))
	require.NoError(t, err)
	require.Nil(t, v)
	require.NoError(t, tx.Abort())
}

func TestSetIndexAddListRemove(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.IndexAdd(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA", "output1"))
	require.NoError(t, tx.IndexAdd(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA", "output2"))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	members, err := tx.IndexList(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"output1", "output2"}, members)
	require.NoError(t, tx.IndexRemove(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA", "output1"))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	members, err = tx.IndexList(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"output2"}, members)
	require.NoError(t, tx.Abort())
}

func TestIndexesAreIsolatedPerTable(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.IndexAdd(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA", "output1"))
	require.NoError(t, tx.IndexAdd(storage.TableSTXOs, storage.IndexSTXOByOwner, "pubkeyA", "output1"))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	utxoMembers, err := tx.IndexList(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"output1"}, utxoMembers)
	require.NoError(t, tx.IndexRemove(storage.TableUTXOs, storage.IndexUTXOByOwner, "pubkeyA", "output1"))
	require.NoError(t, tx.Commit())

	tx, err = s.Begin()
	require.NoError(t, err)
	stxoMembers, err := tx.IndexList(storage.TableSTXOs, storage.IndexSTXOByOwner, "pubkeyA")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"output1"}, stxoMembers)
	require.NoError(t, tx.Abort())
}

func TestCommitTwiceFails(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.Error(t, tx.Commit())
}

func TestOperationsAfterAbortFail(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Abort())

	_, err = tx.Get(storage.TableBlocks, "a")
	require.Error(t, err)
}
