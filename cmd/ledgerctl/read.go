package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/utxoledger/engine/pkg/types"
)

var getBlockCmd = &cobra.Command{
	Use:   "get-block <block-id-hex>",
	Short: "Fetch a block by its content-addressed ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseHash(args[0])
		if err != nil {
			return err
		}
		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		block, err := eng.GetBlock(id)
		if err != nil {
			return err
		}
		return printJSON(block)
	},
}

var getBlockByHeightCmd = &cobra.Command{
	Use:   "get-block-by-height <height>",
	Short: "Fetch the main-chain block at a given height",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		height, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid height %q: %w", args[0], err)
		}
		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		block, err := eng.GetBlockByHeight(height)
		if err != nil {
			return err
		}
		return printJSON(block)
	},
}

var getTransactionCmd = &cobra.Command{
	Use:   "get-transaction <tx-id-hex>",
	Short: "Fetch a confirmed transaction by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseHash(args[0])
		if err != nil {
			return err
		}
		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		tx, err := eng.GetTransaction(id)
		if err != nil {
			return err
		}
		return printJSON(tx)
	},
}

var getOutputCmd = &cobra.Command{
	Use:   "get-output <output-id-hex>",
	Short: "Fetch an output (spent or unspent) by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseHash(args[0])
		if err != nil {
			return err
		}
		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		out, err := eng.GetOutput(id)
		if err != nil {
			return err
		}
		return printJSON(out)
	},
}

var getUnspentOutputsCmd = &cobra.Command{
	Use:   "get-unspent-outputs <owner-public-key-hex>",
	Short: "List a public key's unspent outputs",
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

		outs, err := eng.GetUnspentOutputs(key)
		if err != nil {
			return err
		}
		return printJSON(outs)
	},
}

var getSpentOutputsCmd = &cobra.Command{
	Use:   "get-spent-outputs <owner-public-key-hex>",
	Short: "List a public key's spent outputs",
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

		outs, err := eng.GetSpentOutputs(key)
		if err != nil {
			return err
		}
		return printJSON(outs)
	},
}

var getUnconfirmedTransactionsCmd = &cobra.Command{
	Use:   "get-unconfirmed-transactions",
	Short: "List every transaction currently pooled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		return printJSON(eng.GetUnconfirmedTransactions())
	},
}

var mempoolStatsCmd = &cobra.Command{
	Use:   "mempool-stats",
	Short: "Print the mempool's transaction count and byte size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, store, err := openEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		return printJSON(map[string]int{
			"count": eng.MempoolCount(),
			"bytes": eng.MempoolSize(),
		})
	},
}

func parseHash(s string) (types.Hash, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return types.Hash{}, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	h, ok := types.HashFromBytes(raw)
	if !ok {
		return types.Hash{}, fmt.Errorf("hash %q must be %d bytes", s, types.HashSize)
	}
	return h, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
