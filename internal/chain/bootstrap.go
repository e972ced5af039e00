package chain

import (
	"go.uber.org/zap"

	"github.com/utxoledger/engine/internal/genesis"
	"github.com/utxoledger/engine/pkg/types"
)

// Bootstrap ensures a tip exists: if one is already persisted, it is a
// no-op; otherwise it loads a genesis block from opts.GenesisPath, falling
// back to generating and persisting a fresh one under coinbasePublicKey.
func (e *Engine) Bootstrap(coinbasePublicKey []byte) error {
	var hasTip bool
	err := e.withLock(func(tok locked) error {
		stx, err := e.store.Begin()
		if err != nil {
			return types.NewStorageFailure("opening transaction", err)
		}
		defer stx.Abort()

		tip, err := loadTip(stx)
		if err != nil {
			return err
		}
		hasTip = tip != nil
		return nil
	})
	if err != nil {
		return err
	}
	if hasTip {
		return nil
	}

	var block *types.Block
	if e.opts.GenesisPath != "" {
		var loadErr error
		block, loadErr = genesis.Load(e.opts.GenesisPath)
		if loadErr != nil && !types.IsNotFound(loadErr) {
			return loadErr
		}
	}
	if block == nil {
		block = genesis.Generate(coinbasePublicKey, e.opts.BlockReward(1), 0)
		if e.opts.GenesisPath != "" {
			if err := genesis.Save(e.opts.GenesisPath, block); err != nil {
				e.logger.Warn("failed to persist generated genesis block", zap.Error(err))
			}
		}
	}

	ok, permanent, err := e.SubmitBlock(block)
	if err != nil {
		return err
	}
	if !ok {
		return types.NewPermanent("genesis block rejected", nil)
	}
	_ = permanent
	return nil
}
