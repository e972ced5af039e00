package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utxoledger/engine/internal/config"
	"github.com/utxoledger/engine/pkg/types"
)

func makeTx(value uint64, nonce uint64) *types.Transaction {
	return &types.Transaction{
		Outputs: []*types.Output{
			{Value: value, Nonce: nonce, Data: map[string][]byte{"publicKey": []byte("owner")}},
		},
		Timestamp: 1,
	}
}

func zeroFee(*types.Transaction) (uint64, error) { return 0, nil }

func TestInsertAndGet(t *testing.T) {
	p := New(nil)
	tx := makeTx(10, 1)
	require.NoError(t, p.Insert(tx))
	require.True(t, p.Has(tx.ID()))
	got, ok := p.Get(tx.ID())
	require.True(t, ok)
	require.True(t, got.Equal(tx))
	require.Equal(t, 1, p.Count())
	require.Equal(t, tx.Size(), p.Size())
}

func TestInsertRejectsDuplicate(t *testing.T) {
	p := New(nil)
	tx := makeTx(10, 1)
	require.NoError(t, p.Insert(tx))
	require.Error(t, p.Insert(tx))
}

func TestInsertRejectsDoubleSpend(t *testing.T) {
	p := New(nil)
	spent := types.Hash{0xAA}

	tx1 := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: spent}},
		Outputs:   []*types.Output{{Value: 1, Nonce: 1}},
		Timestamp: 1,
	}
	tx2 := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: spent}},
		Outputs:   []*types.Output{{Value: 2, Nonce: 2}},
		Timestamp: 2,
	}

	require.NoError(t, p.Insert(tx1))
	err := p.Insert(tx2)
	require.Error(t, err)
	require.True(t, types.IsPermanent(err) == false)
}

func TestRemove(t *testing.T) {
	p := New(nil)
	tx := makeTx(10, 1)
	require.NoError(t, p.Insert(tx))
	p.Remove(tx.ID())
	require.False(t, p.Has(tx.ID()))
	require.Equal(t, 0, p.Count())
	require.Equal(t, 0, p.Size())
}

func TestRescanRemovesTransactionsFailingKeep(t *testing.T) {
	p := New(nil)
	keep := makeTx(10, 1)
	drop := makeTx(20, 2)
	require.NoError(t, p.Insert(keep))
	require.NoError(t, p.Insert(drop))

	p.Rescan(func(tx *types.Transaction) bool {
		return tx.ID() == keep.ID()
	})

	require.True(t, p.Has(keep.ID()))
	require.False(t, p.Has(drop.ID()))
}

func TestGetTransactionsRespectsByteCap(t *testing.T) {
	p := New(nil)

	// Build transactions with large opaque data fields so a handful of
	// them already approach the byte cap.
	big := make([]byte, config.MempoolByteCap/2)
	for i := 0; i < 3; i++ {
		tx := &types.Transaction{
			Outputs: []*types.Output{
				{Value: 1, Nonce: uint64(i + 1), Data: map[string][]byte{"publicKey": big}},
			},
			Timestamp: uint64(i + 1),
		}
		require.NoError(t, p.Insert(tx))
	}

	out, err := p.GetTransactions(zeroFee)
	require.NoError(t, err)

	total := 0
	for _, tx := range out {
		total += tx.Size()
	}
	require.Less(t, total, config.MempoolByteCap)
	require.Less(t, len(out), 3)
}

func TestGetTransactionsStopsAtCapRatherThanSkipping(t *testing.T) {
	p := New(nil)

	// big alone is at least as large as the cap, so it can never be
	// returned; it sorts first by fee rate. small alone easily fits. A
	// correct prefix selection stops the moment big overflows the cap and
	// never considers anything behind it, even though small alone fits.
	bigData := make([]byte, config.MempoolByteCap)
	big := &types.Transaction{
		Outputs:   []*types.Output{{Value: 1, Nonce: 1, Data: map[string][]byte{"publicKey": bigData}}},
		Timestamp: 1,
	}
	small := &types.Transaction{
		Outputs:   []*types.Output{{Value: 1, Nonce: 2, Data: map[string][]byte{"publicKey": []byte("small")}}},
		Timestamp: 2,
	}
	require.NoError(t, p.Insert(big))
	require.NoError(t, p.Insert(small))

	fees := map[types.Hash]uint64{
		big.ID():   1_000_000,
		small.ID(): 1,
	}
	out, err := p.GetTransactions(func(tx *types.Transaction) (uint64, error) {
		return fees[tx.ID()], nil
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestGetTransactionsOrdersByFeeRate(t *testing.T) {
	p := New(nil)
	low := makeTx(1, 1)
	high := makeTx(1, 2)
	require.NoError(t, p.Insert(low))
	require.NoError(t, p.Insert(high))

	fees := map[types.Hash]uint64{
		low.ID():  1,
		high.ID(): 1000,
	}
	out, err := p.GetTransactions(func(tx *types.Transaction) (uint64, error) {
		return fees[tx.ID()], nil
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, high.ID(), out[0].ID())
	require.Equal(t, low.ID(), out[1].ID())
}
