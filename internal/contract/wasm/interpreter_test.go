package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utxoledger/engine/pkg/types"
)

func TestEvaluateValidSkipsTransactionsWithoutContracts(t *testing.T) {
	interp, err := New(nil)
	require.NoError(t, err)
	defer interp.Close()

	tx := &types.Transaction{
		Outputs: []*types.Output{{Value: 10, Data: map[string][]byte{types.DataPublicKeyKey: []byte("k")}}},
	}

	ok, err := interp.EvaluateValid(nil, tx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluateValidFailsOnMalformedContractBytes(t *testing.T) {
	interp, err := New(nil)
	require.NoError(t, err)
	defer interp.Close()

	tx := &types.Transaction{
		Outputs: []*types.Output{{
			Value: 10,
			Data: map[string][]byte{
				types.DataContractKey: []byte("not a wasm module"),
			},
		}},
	}

	_, err = interp.EvaluateValid(nil, tx)
	require.Error(t, err)
}
