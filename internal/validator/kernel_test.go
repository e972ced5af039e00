package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utxoledger/engine/internal/storage/memory"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
	"github.com/utxoledger/engine/pkg/types"
)

type alwaysValidVerifier struct{}

func (alwaysValidVerifier) Verify(publicKey, message, signature []byte) bool { return true }

type alwaysInvalidVerifier struct{}

func (alwaysInvalidVerifier) Verify(publicKey, message, signature []byte) bool { return false }

func putUTXO(t *testing.T, tx storage.Tx, out *types.Output) {
	t.Helper()
	dbOut := types.NewDBOutput(out)
	require.NoError(t, tx.Put(storage.TableUTXOs, dbOut.ID.String(), dbOut.Bytes()))
}

func newTx(t *testing.T) storage.Tx {
	t.Helper()
	s := memory.New()
	txn, err := s.Begin()
	require.NoError(t, err)
	return txn
}

func TestKernelAcceptsWellFormedSpend(t *testing.T) {
	// The 9910 fee clears the fee floor, which scales with the size of the
	// spend data and output data rather than with the amount moved.
	prior := &types.Output{Value: 10000, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: []byte("owner")}}
	stx := newTx(t)
	putUTXO(t, stx, prior)

	spend := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: prior.ID(), SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")}}},
		Outputs:   []*types.Output{{Value: 90, Nonce: 2, Data: map[string][]byte{types.DataPublicKeyKey: []byte("recipient")}}},
		Timestamp: 1,
	}

	k := NewKernel(alwaysValidVerifier{}, nil, nil)
	require.NoError(t, k.Verify(stx, spend))
}

func TestKernelRejectsBadSignature(t *testing.T) {
	prior := &types.Output{Value: 100, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: []byte("owner")}}
	stx := newTx(t)
	putUTXO(t, stx, prior)

	spend := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: prior.ID(), SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")}}},
		Outputs:   []*types.Output{{Value: 90, Nonce: 2}},
		Timestamp: 1,
	}

	k := NewKernel(alwaysInvalidVerifier{}, nil, nil)
	err := k.Verify(stx, spend)
	require.Error(t, err)
	require.True(t, types.IsPermanent(err))
}

func TestKernelRejectsOverspend(t *testing.T) {
	prior := &types.Output{Value: 100, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: []byte("owner")}}
	stx := newTx(t)
	putUTXO(t, stx, prior)

	spend := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: prior.ID(), SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")}}},
		Outputs:   []*types.Output{{Value: 1000, Nonce: 2}},
		Timestamp: 1,
	}

	k := NewKernel(alwaysValidVerifier{}, nil, nil)
	err := k.Verify(stx, spend)
	require.Error(t, err)
	require.True(t, types.IsPermanent(err))
}

func TestKernelRejectsUnresolvedInput(t *testing.T) {
	stx := newTx(t)

	spend := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: types.Hash{0x01}}},
		Outputs:   []*types.Output{{Value: 1, Nonce: 1}},
		Timestamp: 1,
	}

	k := NewKernel(alwaysValidVerifier{}, nil, nil)
	err := k.Verify(stx, spend)
	require.Error(t, err)
}

func TestKernelRejectsDoubleSpendWithinTransaction(t *testing.T) {
	prior := &types.Output{Value: 100, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: []byte("owner")}}
	stx := newTx(t)
	putUTXO(t, stx, prior)

	spend := &types.Transaction{
		Inputs: []*types.Input{
			{OutputID: prior.ID(), SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")}},
			{OutputID: prior.ID(), SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")}},
		},
		Outputs:   []*types.Output{{Value: 1, Nonce: 2}},
		Timestamp: 1,
	}

	k := NewKernel(alwaysValidVerifier{}, nil, nil)
	err := k.Verify(stx, spend)
	require.Error(t, err)
}

func TestKernelAcceptsCoinbaseWithoutInputs(t *testing.T) {
	stx := newTx(t)
	coinbase := &types.Transaction{
		Outputs:   []*types.Output{{Value: 50, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: []byte("miner")}}},
		Timestamp: 1,
		Coinbase:  true,
	}
	k := NewKernel(alwaysValidVerifier{}, nil, nil)
	require.NoError(t, k.Verify(stx, coinbase))
}

func TestKernelRejectsReplayedTransaction(t *testing.T) {
	stx := newTx(t)
	coinbase := &types.Transaction{
		Outputs:   []*types.Output{{Value: 50, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: []byte("miner")}}},
		Timestamp: 1,
		Coinbase:  true,
	}
	dbTx := types.NewDBTransaction(coinbase)
	require.NoError(t, stx.Put(storage.TableTransactions, coinbase.ID().String(), dbTx.Bytes()))

	k := NewKernel(alwaysValidVerifier{}, nil, nil)
	err := k.Verify(stx, coinbase)
	require.Error(t, err)
}
