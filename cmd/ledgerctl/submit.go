package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/utxoledger/engine/pkg/types"
)

var submitTransactionCmd = &cobra.Command{
	Use:   "submit-transaction <path>",
	Short: "Submit a canonical-encoding transaction file to the mempool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		tx, err := types.DecodeTransaction(data)
		if err != nil {
			return fmt.Errorf("decoding transaction: %w", err)
		}

		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		accepted, permanent, err := eng.SubmitTransaction(tx)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"tx_id":     tx.ID().String(),
			"accepted":  accepted,
			"permanent": permanent,
		})
	},
}

var submitBlockCmd = &cobra.Command{
	Use:   "submit-block <path>",
	Short: "Submit a canonical-encoding block file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		block, err := types.DecodeBlock(data)
		if err != nil {
			return fmt.Errorf("decoding block: %w", err)
		}

		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		accepted, permanent, err := eng.SubmitBlock(block)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"block_id":  block.ID().String(),
			"accepted":  accepted,
			"permanent": permanent,
		})
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap <coinbase-public-key-hex>",
	Short: "Bootstrap a fresh data directory with a genesis block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("invalid public key hex: %w", err)
		}

		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := eng.Bootstrap(key); err != nil {
			return fmt.Errorf("bootstrapping: %w", err)
		}
		fmt.Println("bootstrap complete")
		return nil
	},
}
