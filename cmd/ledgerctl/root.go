// Command ledgerctl is an offline operator CLI over a chain engine
// instance: it opens the configured storage backend directly (no RPC
// transport) and exposes the engine's read surface plus file-based
// transaction/block submission. Grounded on the teacher's cmd/cli
// package (a cobra root command with persistent flags and an
// output formatter), simplified to a single process operating on a
// local data directory rather than a remote node.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/utxoledger/engine/internal/chain"
	"github.com/utxoledger/engine/internal/config"
	"github.com/utxoledger/engine/internal/consensus/pow"
	"github.com/utxoledger/engine/internal/crypto/secp256k1signer"
	"github.com/utxoledger/engine/internal/log"
	"github.com/utxoledger/engine/internal/storage/badgerstore"
	"github.com/utxoledger/engine/internal/validator"
	"github.com/utxoledger/engine/pkg/interfaces/storage"
)

var globalFlags struct {
	DataDir        string
	DifficultyBits uint
	Verbose        bool
}

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operator CLI for a UTXO ledger engine data directory",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.DataDir, "data-dir", "", "Badger data directory (empty for in-memory)")
	rootCmd.PersistentFlags().UintVar(&globalFlags.DifficultyBits, "difficulty-bits", 8, "proof-of-work difficulty, in leading zero bits")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		getBlockCmd,
		getBlockByHeightCmd,
		getTransactionCmd,
		getOutputCmd,
		getUnspentOutputsCmd,
		getSpentOutputsCmd,
		getUnconfirmedTransactionsCmd,
		mempoolStatsCmd,
		submitTransactionCmd,
		submitBlockCmd,
		bootstrapCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openEngine opens the configured storage backend and assembles a chain
// engine over it. The caller must Close the returned store once done.
func openEngine() (*chain.Engine, storage.Store, error) {
	logger, err := log.New(log.Options{Debug: globalFlags.Verbose})
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}

	store, err := badgerstore.Open(badgerstore.Options{
		Dir:      globalFlags.DataDir,
		InMemory: globalFlags.DataDir == "",
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}

	verifier := secp256k1signer.New()
	consensusAdapter := pow.New(globalFlags.DifficultyBits, logger)
	kernel := validator.NewKernel(verifier, nil, consensusAdapter)
	opts := config.DefaultOptions()
	opts.BlockReward = func(height uint64) uint64 {
		if height <= 1 {
			return 0
		}
		return 50
	}

	return chain.New(store, kernel, consensusAdapter, opts, logger), store, nil
}
