package types

// The dbXxx types are storage-form projections of the entity model: nested
// entities are replaced with ID references so the tables in §3 stay
// normalized. They are what actually gets written to the blocks,
// transactions, utxos, stxos and inputs tables.

// DBOutput is the storage-form projection of an Output.
type DBOutput struct {
	ID    Hash
	Value uint64
	Nonce uint64
	Data  map[string][]byte
}

// NewDBOutput projects an Output into its storage form.
func NewDBOutput(o *Output) *DBOutput {
	return &DBOutput{ID: o.ID(), Value: o.Value, Nonce: o.Nonce, Data: o.Data}
}

// Output reconstructs the full Output from its storage-form projection.
func (d *DBOutput) Output() *Output {
	return &Output{Value: d.Value, Nonce: d.Nonce, Data: d.Data}
}

func (d *DBOutput) PublicKey() ([]byte, bool) {
	v, ok := d.Data[DataPublicKeyKey]
	return v, ok
}

func (d *DBOutput) Bytes() []byte {
	e := newEncoder()
	e.buf.Write(d.ID[:])
	e.putUint64(d.Value)
	e.putUint64(d.Nonce)
	e.putDataBag(d.Data)
	return e.bytes()
}

func DecodeDBOutput(data []byte) (*DBOutput, error) {
	dec := newDecoder(data)
	idRaw, err := ioReadN(dec, HashSize)
	if err != nil {
		return nil, err
	}
	var id Hash
	copy(id[:], idRaw)
	value, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	nonce, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	bag, err := dec.getDataBag()
	if err != nil {
		return nil, err
	}
	if !dec.done() {
		return nil, ErrMalformed
	}
	return &DBOutput{ID: id, Value: value, Nonce: nonce, Data: bag}, nil
}

// DBInput is the storage-form projection of an Input.
type DBInput struct {
	ID        Hash
	OutputID  Hash
	SpendData map[string][]byte
}

// NewDBInput projects an Input into its storage form.
func NewDBInput(i *Input) *DBInput {
	return &DBInput{ID: i.ID(), OutputID: i.OutputID, SpendData: i.SpendData}
}

func (d *DBInput) Input() *Input {
	return &Input{OutputID: d.OutputID, SpendData: d.SpendData}
}

func (d *DBInput) Bytes() []byte {
	e := newEncoder()
	e.buf.Write(d.ID[:])
	e.buf.Write(d.OutputID[:])
	e.putDataBag(d.SpendData)
	return e.bytes()
}

func DecodeDBInput(data []byte) (*DBInput, error) {
	dec := newDecoder(data)
	idRaw, err := ioReadN(dec, HashSize)
	if err != nil {
		return nil, err
	}
	var id Hash
	copy(id[:], idRaw)
	outRaw, err := ioReadN(dec, HashSize)
	if err != nil {
		return nil, err
	}
	var outputID Hash
	copy(outputID[:], outRaw)
	bag, err := dec.getDataBag()
	if err != nil {
		return nil, err
	}
	if !dec.done() {
		return nil, ErrMalformed
	}
	return &DBInput{ID: id, OutputID: outputID, SpendData: bag}, nil
}

// DBTransaction is the storage-form projection of a Transaction: its
// nested inputs/outputs are replaced by ID references.
type DBTransaction struct {
	ID        Hash
	InputIDs  []Hash
	OutputIDs []Hash
	Timestamp uint64
	Coinbase  bool
}

// NewDBTransaction projects a Transaction into its storage form.
func NewDBTransaction(t *Transaction) *DBTransaction {
	inputIDs := make([]Hash, len(t.Inputs))
	for i, in := range t.Inputs {
		inputIDs[i] = in.ID()
	}
	outputIDs := make([]Hash, len(t.Outputs))
	for i, o := range t.Outputs {
		outputIDs[i] = o.ID()
	}
	return &DBTransaction{
		ID:        t.ID(),
		InputIDs:  inputIDs,
		OutputIDs: outputIDs,
		Timestamp: t.Timestamp,
		Coinbase:  t.Coinbase,
	}
}

func (d *DBTransaction) Bytes() []byte {
	e := newEncoder()
	e.buf.Write(d.ID[:])
	e.putUint64(uint64(len(d.InputIDs)))
	e.buf.Write(ConcatHashes(d.InputIDs))
	e.putUint64(uint64(len(d.OutputIDs)))
	e.buf.Write(ConcatHashes(d.OutputIDs))
	e.putUint64(d.Timestamp)
	e.putBool(d.Coinbase)
	return e.bytes()
}

func DecodeDBTransaction(data []byte) (*DBTransaction, error) {
	dec := newDecoder(data)
	idRaw, err := ioReadN(dec, HashSize)
	if err != nil {
		return nil, err
	}
	var id Hash
	copy(id[:], idRaw)

	nIn, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	inputIDs := make([]Hash, nIn)
	for i := range inputIDs {
		raw, err := ioReadN(dec, HashSize)
		if err != nil {
			return nil, err
		}
		copy(inputIDs[i][:], raw)
	}

	nOut, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	outputIDs := make([]Hash, nOut)
	for i := range outputIDs {
		raw, err := ioReadN(dec, HashSize)
		if err != nil {
			return nil, err
		}
		copy(outputIDs[i][:], raw)
	}

	timestamp, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	coinbase, err := dec.getBool()
	if err != nil {
		return nil, err
	}
	if !dec.done() {
		return nil, ErrMalformed
	}
	return &DBTransaction{ID: id, InputIDs: inputIDs, OutputIDs: outputIDs, Timestamp: timestamp, Coinbase: coinbase}, nil
}

// DBBlock is the storage-form projection of a Block: its nested
// transactions are replaced by ID references and the coinbase is
// identified separately.
type DBBlock struct {
	ID              Hash
	CoinbaseID      Hash
	TxIDs           []Hash
	PreviousBlockID Hash
	Timestamp       uint64
	ConsensusData   []byte
	Height          uint64
}

// NewDBBlock projects a Block into its storage form.
func NewDBBlock(b *Block) *DBBlock {
	txIDs := make([]Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		txIDs[i] = tx.ID()
	}
	var coinbaseID Hash
	if b.Coinbase != nil {
		coinbaseID = b.Coinbase.ID()
	}
	return &DBBlock{
		ID:              b.ID(),
		CoinbaseID:      coinbaseID,
		TxIDs:           txIDs,
		PreviousBlockID: b.PreviousBlockID,
		Timestamp:       b.Timestamp,
		ConsensusData:   b.ConsensusData,
		Height:          b.Height,
	}
}

func (d *DBBlock) Bytes() []byte {
	e := newEncoder()
	e.buf.Write(d.ID[:])
	e.buf.Write(d.CoinbaseID[:])
	e.putUint64(uint64(len(d.TxIDs)))
	e.buf.Write(ConcatHashes(d.TxIDs))
	e.buf.Write(d.PreviousBlockID[:])
	e.putUint64(d.Timestamp)
	e.putBytes(d.ConsensusData)
	e.putUint64(d.Height)
	return e.bytes()
}

func DecodeDBBlock(data []byte) (*DBBlock, error) {
	dec := newDecoder(data)
	idRaw, err := ioReadN(dec, HashSize)
	if err != nil {
		return nil, err
	}
	var id Hash
	copy(id[:], idRaw)

	coinbaseRaw, err := ioReadN(dec, HashSize)
	if err != nil {
		return nil, err
	}
	var coinbaseID Hash
	copy(coinbaseID[:], coinbaseRaw)

	nTx, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	txIDs := make([]Hash, nTx)
	for i := range txIDs {
		raw, err := ioReadN(dec, HashSize)
		if err != nil {
			return nil, err
		}
		copy(txIDs[i][:], raw)
	}

	prevRaw, err := ioReadN(dec, HashSize)
	if err != nil {
		return nil, err
	}
	var prev Hash
	copy(prev[:], prevRaw)

	timestamp, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	consensusData, err := dec.getBytes()
	if err != nil {
		return nil, err
	}
	height, err := dec.getUint64()
	if err != nil {
		return nil, err
	}
	if !dec.done() {
		return nil, ErrMalformed
	}
	return &DBBlock{
		ID:              id,
		CoinbaseID:      coinbaseID,
		TxIDs:           txIDs,
		PreviousBlockID: prev,
		Timestamp:       timestamp,
		ConsensusData:   consensusData,
		Height:          height,
	}, nil
}
