package types

import "io"

// Input references a prior output by ID, carrying whatever opaque spend
// data authorizes consuming it — a signature field for plain spends, or a
// contract field when the referenced output is contract-gated.
type Input struct {
	OutputID Hash
	// SpendData is an opaque bag. Recognized keys: "signature", "contract".
	SpendData map[string][]byte
}

const (
	SpendDataSignatureKey = "signature"
	SpendDataContractKey  = "contract"
)

// Signature returns the input's signature field, if any.
func (i *Input) Signature() ([]byte, bool) {
	v, ok := i.SpendData[SpendDataSignatureKey]
	return v, ok
}

// Contract returns the input's contract field, if any.
func (i *Input) Contract() ([]byte, bool) {
	v, ok := i.SpendData[SpendDataContractKey]
	return v, ok
}

// Bytes is the canonical encoding of the input.
func (i *Input) Bytes() []byte {
	e := newEncoder()
	e.buf.Write(i.OutputID[:])
	e.putDataBag(i.SpendData)
	return e.bytes()
}

// ID is the input's content-addressed identifier.
func (i *Input) ID() Hash {
	return SumHash(i.Bytes())
}

// Equal compares two inputs by ID.
func (i *Input) Equal(other *Input) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.ID() == other.ID()
}

// DecodeInput parses a canonical input encoding.
func DecodeInput(data []byte) (*Input, error) {
	d := newDecoder(data)
	var outputID Hash
	idBytes, err := ioReadN(d, HashSize)
	if err != nil {
		return nil, err
	}
	copy(outputID[:], idBytes)
	bag, err := d.getDataBag()
	if err != nil {
		return nil, err
	}
	if !d.done() {
		return nil, ErrMalformed
	}
	return &Input{OutputID: outputID, SpendData: bag}, nil
}

// ioReadN reads exactly n bytes from the decoder's buffer.
func ioReadN(d *decoder, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(d.buf, b); err != nil {
		return nil, ErrMalformed
	}
	return b, nil
}
