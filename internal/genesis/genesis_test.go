package genesis

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utxoledger/engine/pkg/types"
)

func TestGenerateProducesSingleCoinbaseOutput(t *testing.T) {
	block := Generate([]byte("miner-key"), 50, 1234)

	require.True(t, block.PreviousBlockID.IsZero())
	require.Equal(t, uint64(1), block.Height)
	require.NotNil(t, block.Coinbase)
	require.True(t, block.Coinbase.Coinbase)
	require.Len(t, block.Coinbase.Outputs, 1)
	require.Equal(t, uint64(50), block.Coinbase.Outputs[0].Value)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	block := Generate([]byte("miner-key"), 50, 1234)
	path := filepath.Join(t.TempDir(), "genesis.bin")

	require.NoError(t, Save(path, block))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, block.ID(), loaded.ID())
}

func TestLoadMissingFileIsNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
	require.True(t, types.IsNotFound(err))
}
