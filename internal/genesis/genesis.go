// Package genesis bootstraps a chain engine's first block: loading a
// canonical-serialization genesis block from disk if one is configured, or
// synthesizing and persisting a fresh one otherwise.
package genesis

import (
	"os"

	"github.com/utxoledger/engine/pkg/types"
)

// Load reads and decodes a canonical-serialization genesis block from
// path. A missing file is reported as a types.ErrNotFound-classified
// error so callers can fall back to Generate.
func Load(path string) (*types.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewNotFound("genesis file not found")
		}
		return nil, types.NewStorageFailure("reading genesis file", err)
	}
	block, err := types.DecodeBlock(data)
	if err != nil {
		return nil, types.NewStorageFailure("decoding genesis file", err)
	}
	return block, nil
}

// Save writes block's canonical encoding to path.
func Save(path string, block *types.Block) error {
	if err := os.WriteFile(path, block.Bytes(), 0o644); err != nil {
		return types.NewStorageFailure("writing genesis file", err)
	}
	return nil
}

// Generate synthesizes a fresh genesis block: a single coinbase output of
// value reward locked to publicKey, zero previous-block ID, height 1 (the
// chain's first block; height counts from 1, never 0).
func Generate(publicKey []byte, reward uint64, timestamp uint64) *types.Block {
	coinbase := &types.Transaction{
		Outputs: []*types.Output{{
			Value: reward,
			Nonce: 0,
			Data:  map[string][]byte{types.DataPublicKeyKey: publicKey},
		}},
		Timestamp: timestamp,
		Coinbase:  true,
	}
	return &types.Block{
		Coinbase:        coinbase,
		PreviousBlockID: types.ZeroHash,
		Timestamp:       timestamp,
		Height:          1,
	}
}
