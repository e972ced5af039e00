package types

import "sort"

// Block groups a coinbase transaction with the rest of the block's
// transactions under a previous-block link, a timestamp, opaque
// consensus data, and a height. Its ID hashes all of those, consensus
// data included, so consensus-specific proof material (e.g. a PoW nonce)
// is part of identity.
type Block struct {
	Coinbase        *Transaction
	Transactions    []*Transaction // non-coinbase transactions
	PreviousBlockID Hash
	Timestamp       uint64
	ConsensusData   []byte
	Height          uint64
}

// sortedTransactions returns the non-coinbase transactions ordered by
// ascending transaction ID.
func (b *Block) sortedTransactions() []*Transaction {
	out := append([]*Transaction(nil), b.Transactions...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })
	return out
}

// AllTransactions returns the coinbase transaction followed by every other
// transaction in ID order — the complete set of transactions in the block.
func (b *Block) AllTransactions() []*Transaction {
	out := make([]*Transaction, 0, len(b.Transactions)+1)
	if b.Coinbase != nil {
		out = append(out, b.Coinbase)
	}
	out = append(out, b.sortedTransactions()...)
	return out
}

// Bytes is the canonical encoding of the block.
func (b *Block) Bytes() []byte {
	e := newEncoder()
	var coinbaseBytes []byte
	if b.Coinbase != nil {
		coinbaseBytes = b.Coinbase.Bytes()
	}
	e.putBytes(coinbaseBytes)

	txs := b.sortedTransactions()
	e.putUint64(uint64(len(txs)))
	for _, tx := range txs {
		e.putBytes(tx.Bytes())
	}

	e.buf.Write(b.PreviousBlockID[:])
	e.putUint64(b.Timestamp)
	e.putBytes(b.ConsensusData)
	e.putUint64(b.Height)
	return e.bytes()
}

// ID is the block's content-addressed identifier.
func (b *Block) ID() Hash {
	return SumHash(b.Bytes())
}

// Equal compares two blocks by ID.
func (b *Block) Equal(other *Block) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.ID() == other.ID()
}

// DecodeBlock parses a canonical block encoding produced by Bytes.
func DecodeBlock(data []byte) (*Block, error) {
	d := newDecoder(data)

	coinbaseRaw, err := d.getBytes()
	if err != nil {
		return nil, err
	}
	var coinbase *Transaction
	if len(coinbaseRaw) > 0 {
		coinbase, err = DecodeTransaction(coinbaseRaw)
		if err != nil {
			return nil, err
		}
	}

	nTx, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	txs := make([]*Transaction, 0, nTx)
	for i := uint64(0); i < nTx; i++ {
		raw, err := d.getBytes()
		if err != nil {
			return nil, err
		}
		tx, err := DecodeTransaction(raw)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	prevRaw, err := ioReadN(d, HashSize)
	if err != nil {
		return nil, err
	}
	var prev Hash
	copy(prev[:], prevRaw)

	timestamp, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	consensusData, err := d.getBytes()
	if err != nil {
		return nil, err
	}
	height, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	if !d.done() {
		return nil, ErrMalformed
	}

	return &Block{
		Coinbase:        coinbase,
		Transactions:    txs,
		PreviousBlockID: prev,
		Timestamp:       timestamp,
		ConsensusData:   consensusData,
		Height:          height,
	}, nil
}
