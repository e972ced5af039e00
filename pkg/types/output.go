package types

// Output is a transaction output: a value locked under opaque data, most
// commonly a public key and/or a contract reference. Outputs are immutable
// once constructed; their lifecycle (nonexistent -> utxo -> stxo) lives in
// the storage layer, not on the value itself.
type Output struct {
	Value uint64
	Nonce uint64
	// Data is an opaque bag. Recognized keys used elsewhere in the engine:
	// "publicKey" (spend authorization) and "contract" (contract reference).
	Data map[string][]byte
}

// DataPublicKeyKey and DataContractKey are the recognized Output.Data keys.
const (
	DataPublicKeyKey = "publicKey"
	DataContractKey  = "contract"
)

// PublicKey returns the output's publicKey field, if any.
func (o *Output) PublicKey() ([]byte, bool) {
	v, ok := o.Data[DataPublicKeyKey]
	return v, ok
}

// Contract returns the output's contract field, if any.
func (o *Output) Contract() ([]byte, bool) {
	v, ok := o.Data[DataContractKey]
	return v, ok
}

// Bytes is the canonical encoding of the output, hashed to produce its ID.
func (o *Output) Bytes() []byte {
	e := newEncoder()
	e.putUint64(o.Value)
	e.putUint64(o.Nonce)
	e.putDataBag(o.Data)
	return e.bytes()
}

// ID is the output's content-addressed identifier.
func (o *Output) ID() Hash {
	return SumHash(o.Bytes())
}

// Equal compares two outputs by ID.
func (o *Output) Equal(other *Output) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.ID() == other.ID()
}

// DecodeOutput parses a canonical output encoding, failing if the encoding
// is truncated.
func DecodeOutput(data []byte) (*Output, error) {
	d := newDecoder(data)
	value, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	nonce, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	bag, err := d.getDataBag()
	if err != nil {
		return nil, err
	}
	if !d.done() {
		return nil, ErrMalformed
	}
	return &Output{Value: value, Nonce: nonce, Data: bag}, nil
}
