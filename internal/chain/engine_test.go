package chain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utxoledger/engine/internal/config"
	"github.com/utxoledger/engine/internal/storage/memory"
	"github.com/utxoledger/engine/internal/validator"
	"github.com/utxoledger/engine/pkg/types"
)

type alwaysValidVerifier struct{}

func (alwaysValidVerifier) Verify(publicKey, message, signature []byte) bool { return true }

func newTestEngine(t *testing.T, reward uint64) *Engine {
	t.Helper()
	store := memory.New()
	kernel := validator.NewKernel(alwaysValidVerifier{}, nil, nil)
	opts := config.DefaultOptions()
	opts.BlockReward = func(height uint64) uint64 { return reward }
	return New(store, kernel, nil, opts, nil)
}

func minerKey() []byte { return []byte("miner-key") }

func TestGenesisOnlyChain(t *testing.T) {
	e := newTestEngine(t, 50)
	require.NoError(t, e.Bootstrap(minerKey()))

	tip, err := e.GetBlockByHeight(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), tip.Height)
	require.Len(t, tip.Coinbase.Outputs, 1)
	require.Equal(t, uint64(50), tip.Coinbase.Outputs[0].Value)

	outs, err := e.GetUnspentOutputs(minerKey())
	require.NoError(t, err)
	require.Len(t, outs, 1)
}

func TestSimpleSpendExtendsChain(t *testing.T) {
	// A large reward keeps the fee comfortably above the fee-floor hook's
	// minimum, which is driven by the transaction's opaque-data size, not
	// its value.
	const reward = 100000
	e := newTestEngine(t, reward)
	require.NoError(t, e.Bootstrap(minerKey()))

	genesis, err := e.GetBlockByHeight(1)
	require.NoError(t, err)
	genesisOutput := genesis.Coinbase.Outputs[0]

	recipient := []byte("recipient-key")
	const spendValue = 90000
	spend := &types.Transaction{
		Inputs: []*types.Input{{
			OutputID:  genesisOutput.ID(),
			SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")},
		}},
		Outputs: []*types.Output{{
			Value: spendValue,
			Nonce: 1,
			Data:  map[string][]byte{types.DataPublicKeyKey: recipient},
		}},
		Timestamp: 1,
	}
	fee := reward - spendValue

	accepted, permanent, err := e.SubmitTransaction(spend)
	require.NoError(t, err)
	require.True(t, accepted)
	require.False(t, permanent)
	require.Equal(t, 1, e.MempoolCount())

	coinbase := &types.Transaction{
		Outputs: []*types.Output{{
			Value: uint64(fee + reward),
			Nonce: 2,
			Data:  map[string][]byte{types.DataPublicKeyKey: minerKey()},
		}},
		Timestamp: 2,
		Coinbase:  true,
	}
	block := &types.Block{
		Coinbase:        coinbase,
		Transactions:    []*types.Transaction{spend},
		PreviousBlockID: genesis.ID(),
		Timestamp:       2,
	}

	accepted, permanent, err = e.SubmitBlock(block)
	require.NoError(t, err)
	require.True(t, accepted)
	require.False(t, permanent)

	require.Equal(t, 0, e.MempoolCount())

	recipientOuts, err := e.GetUnspentOutputs(recipient)
	require.NoError(t, err)
	require.Len(t, recipientOuts, 1)
	require.Equal(t, uint64(spendValue), recipientOuts[0].Value)

	spentOuts, err := e.GetSpentOutputs(minerKey())
	require.NoError(t, err)
	require.Len(t, spentOuts, 1)
}

func TestSubmitTransactionRejectsDoubleSpend(t *testing.T) {
	e := newTestEngine(t, 100000)
	require.NoError(t, e.Bootstrap(minerKey()))

	genesis, err := e.GetBlockByHeight(1)
	require.NoError(t, err)
	genesisOutput := genesis.Coinbase.Outputs[0]

	spend1 := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: genesisOutput.ID(), SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")}}},
		Outputs:   []*types.Output{{Value: 10, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: []byte("a")}}},
		Timestamp: 1,
	}
	spend2 := &types.Transaction{
		Inputs:    []*types.Input{{OutputID: genesisOutput.ID(), SpendData: map[string][]byte{types.SpendDataSignatureKey: []byte("sig")}}},
		Outputs:   []*types.Output{{Value: 20, Nonce: 2, Data: map[string][]byte{types.DataPublicKeyKey: []byte("b")}}},
		Timestamp: 1,
	}

	accepted, _, err := e.SubmitTransaction(spend1)
	require.NoError(t, err)
	require.True(t, accepted)

	accepted, _, err = e.SubmitTransaction(spend2)
	require.NoError(t, err)
	require.False(t, accepted)
}

func TestSubmitBlockRejectsUnresolvableParent(t *testing.T) {
	e := newTestEngine(t, 50)
	require.NoError(t, e.Bootstrap(minerKey()))

	orphan := &types.Block{
		Coinbase: &types.Transaction{
			Outputs:  []*types.Output{{Value: 50, Nonce: 1, Data: map[string][]byte{types.DataPublicKeyKey: minerKey()}}},
			Coinbase: true,
		},
		PreviousBlockID: types.Hash{0xFF},
		Timestamp:       1,
	}

	accepted, permanent, err := e.SubmitBlock(orphan)
	require.NoError(t, err)
	require.False(t, accepted)
	require.True(t, permanent)
}

func TestReverseBlockRestoresPriorTip(t *testing.T) {
	e := newTestEngine(t, 50)
	require.NoError(t, e.Bootstrap(minerKey()))

	genesis, err := e.GetBlockByHeight(1)
	require.NoError(t, err)

	coinbase := &types.Transaction{
		Outputs:  []*types.Output{{Value: 50, Nonce: 9, Data: map[string][]byte{types.DataPublicKeyKey: minerKey()}}},
		Timestamp: 2,
		Coinbase:  true,
	}
	block := &types.Block{
		Coinbase:        coinbase,
		PreviousBlockID: genesis.ID(),
		Timestamp:       2,
	}
	accepted, _, err := e.SubmitBlock(block)
	require.NoError(t, err)
	require.True(t, accepted)

	err = e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		require.NoError(t, err)
		defer stx.Abort()
		_, err = e.reverseBlockTx(tok, stx)
		require.NoError(t, err)
		return stx.Commit()
	})
	require.NoError(t, err)

	tip, err := e.GetBlockByHeight(1)
	require.NoError(t, err)
	require.Equal(t, genesis.ID(), tip.ID())
}
