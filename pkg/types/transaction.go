package types

import "sort"

// Transaction is a set of inputs and outputs with a timestamp and a
// coinbase flag. Its ID hashes the canonical, ID-sorted serialization of
// its inputs and outputs together with the timestamp and coinbase flag, so
// reordering Inputs/Outputs in memory never changes identity.
type Transaction struct {
	Inputs    []*Input
	Outputs   []*Output
	Timestamp uint64
	Coinbase  bool
}

// sortedInputs returns a copy of Inputs ordered by ascending input ID.
func (t *Transaction) sortedInputs() []*Input {
	out := append([]*Input(nil), t.Inputs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })
	return out
}

// sortedOutputs returns a copy of Outputs ordered by ascending output ID.
func (t *Transaction) sortedOutputs() []*Output {
	out := append([]*Output(nil), t.Outputs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })
	return out
}

// OutputSetID is the canonical hash over the transaction's sorted output
// IDs. It is the message bound by a spending signature, tying spend
// authorization to exactly this transaction's outputs.
func (t *Transaction) OutputSetID() Hash {
	ids := make([]Hash, len(t.Outputs))
	for i, o := range t.sortedOutputs() {
		ids[i] = o.ID()
	}
	return SumHash(ConcatHashes(ids))
}

// Bytes is the canonical encoding of the transaction: the full,
// ID-ordered serialization of its inputs and outputs, its timestamp, and
// its coinbase flag. Hashing it produces the transaction's ID; it is also
// a complete, round-trippable serialization of the transaction itself.
func (t *Transaction) Bytes() []byte {
	e := newEncoder()
	ins := t.sortedInputs()
	e.putUint64(uint64(len(ins)))
	for _, in := range ins {
		e.putBytes(in.Bytes())
	}
	outs := t.sortedOutputs()
	e.putUint64(uint64(len(outs)))
	for _, o := range outs {
		e.putBytes(o.Bytes())
	}
	e.putUint64(t.Timestamp)
	e.putBool(t.Coinbase)
	return e.bytes()
}

// ID is the transaction's content-addressed identifier.
func (t *Transaction) ID() Hash {
	return SumHash(t.Bytes())
}

// Equal compares two transactions by ID.
func (t *Transaction) Equal(other *Transaction) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.ID() == other.ID()
}

// Size is the transaction's canonical-encoding byte size, used for mempool
// accounting and the mempool's fee-rate ordering. The fee floor is computed
// from InputDataBytes and OutputDataBytes instead.
func (t *Transaction) Size() int {
	return len(t.Bytes())
}

// InputDataBytes sums the byte length of every input's spend-data fields,
// one term of the minimum-fee calculation.
func (t *Transaction) InputDataBytes() int {
	n := 0
	for _, in := range t.Inputs {
		for _, v := range in.SpendData {
			n += len(v)
		}
	}
	return n
}

// OutputDataBytes sums the byte length of every output's data fields, the
// other term of the minimum-fee calculation.
func (t *Transaction) OutputDataBytes() int {
	n := 0
	for _, o := range t.Outputs {
		for _, v := range o.Data {
			n += len(v)
		}
	}
	return n
}

// OutputTotal sums the transaction's output values.
func (t *Transaction) OutputTotal() uint64 {
	var sum uint64
	for _, o := range t.Outputs {
		sum += o.Value
	}
	return sum
}

// DecodeTransaction parses a canonical transaction encoding produced by
// Bytes, failing closed on truncation.
func DecodeTransaction(data []byte) (*Transaction, error) {
	d := newDecoder(data)

	nIn, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	inputs := make([]*Input, 0, nIn)
	for i := uint64(0); i < nIn; i++ {
		raw, err := d.getBytes()
		if err != nil {
			return nil, err
		}
		in, err := DecodeInput(raw)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}

	nOut, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	outputs := make([]*Output, 0, nOut)
	for i := uint64(0); i < nOut; i++ {
		raw, err := d.getBytes()
		if err != nil {
			return nil, err
		}
		o, err := DecodeOutput(raw)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, o)
	}

	timestamp, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	coinbase, err := d.getBool()
	if err != nil {
		return nil, err
	}
	if !d.done() {
		return nil, ErrMalformed
	}
	return &Transaction{Inputs: inputs, Outputs: outputs, Timestamp: timestamp, Coinbase: coinbase}, nil
}
