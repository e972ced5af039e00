package pow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utxoledger/engine/pkg/types"
)

func TestMeetsTargetZeroDifficultyAlwaysPasses(t *testing.T) {
	var h types.Hash
	for i := range h {
		h[i] = 0xFF
	}
	require.True(t, meetsTarget(h, 0))
}

func TestMeetsTargetCountsLeadingZeroBits(t *testing.T) {
	var h types.Hash
	h[0] = 0x00 // 8 leading zero bits
	h[1] = 0x0F // 4 more leading zero bits, then a 1 bit
	for i := 2; i < len(h); i++ {
		h[i] = 0xFF
	}
	require.True(t, meetsTarget(h, 12))
	require.False(t, meetsTarget(h, 13))
}

func TestIsBlockBetterPrefersGreaterHeight(t *testing.T) {
	a := New(0, nil)
	tip := &types.Block{Height: 5}
	candidate := &types.Block{Height: 6}

	better, err := a.IsBlockBetter(nil, candidate, tip)
	require.NoError(t, err)
	require.True(t, better)

	better, err = a.IsBlockBetter(nil, tip, candidate)
	require.NoError(t, err)
	require.False(t, better)
}

func TestIsBlockBetterAcceptsAnyCandidateWhenNoTip(t *testing.T) {
	a := New(0, nil)
	candidate := &types.Block{Height: 0}

	better, err := a.IsBlockBetter(nil, candidate, nil)
	require.NoError(t, err)
	require.True(t, better)
}

func TestCheckConsensusRulesRejectsWrongHeight(t *testing.T) {
	a := New(0, nil)
	parent := &types.Block{Height: 3}
	newBlock := &types.Block{Height: 10}

	ok, err := a.CheckConsensusRules(nil, newBlock, parent)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckConsensusRulesRejectsBelowDifficultyTarget(t *testing.T) {
	a := New(256, nil) // unreachable difficulty for a 32-byte hash
	block := &types.Block{Height: 1}

	ok, err := a.CheckConsensusRules(nil, block, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGenerateConsensusDataFindsNonceAtZeroDifficulty(t *testing.T) {
	a := New(0, nil)
	data, err := a.GenerateConsensusData(nil, types.ZeroHash, []byte("miner"))
	require.NoError(t, err)
	require.Len(t, data, 8)
}
