package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sort"
)

// ErrMalformed signals that a canonical decode failed: a required field was
// missing or truncated, or bytes were left over after the last field. No
// decoder recomputes an entity's ID or compares it with a stored one.
var ErrMalformed = errors.New("malformed entity encoding")

// encoder builds a canonical, order-preserving byte encoding. The wire
// format is deliberately simple (length-prefixed fields, fixed-width
// integers) rather than JSON, so that Bytes() is stable regardless of map
// iteration order and independent of any external schema evolution.
type encoder struct {
	buf bytes.Buffer
}

func newEncoder() *encoder {
	return &encoder{}
}

func (e *encoder) putUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) putBool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

func (e *encoder) putBytes(v []byte) {
	e.putUint64(uint64(len(v)))
	e.buf.Write(v)
}

// putDataBag encodes an opaque key/value bag in key-sorted order so the
// encoding is independent of map iteration order.
func (e *encoder) putDataBag(bag map[string][]byte) {
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.putUint64(uint64(len(keys)))
	for _, k := range keys {
		e.putBytes([]byte(k))
		e.putBytes(bag[k])
	}
}

func (e *encoder) bytes() []byte {
	return e.buf.Bytes()
}

// decoder reads back the format written by encoder, failing closed on any
// truncation.
type decoder struct {
	buf *bytes.Reader
}

func newDecoder(data []byte) *decoder {
	return &decoder{buf: bytes.NewReader(data)}
}

func (d *decoder) getUint64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(d.buf, b[:]); err != nil {
		return 0, ErrMalformed
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (d *decoder) getBool() (bool, error) {
	b, err := d.buf.ReadByte()
	if err != nil {
		return false, ErrMalformed
	}
	return b != 0, nil
}

func (d *decoder) getBytes() ([]byte, error) {
	n, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(d.buf, out); err != nil {
			return nil, ErrMalformed
		}
	}
	return out, nil
}

func (d *decoder) getDataBag() (map[string][]byte, error) {
	n, err := d.getUint64()
	if err != nil {
		return nil, err
	}
	bag := make(map[string][]byte, n)
	for i := uint64(0); i < n; i++ {
		k, err := d.getBytes()
		if err != nil {
			return nil, err
		}
		v, err := d.getBytes()
		if err != nil {
			return nil, err
		}
		bag[string(k)] = v
	}
	return bag, nil
}

func (d *decoder) done() bool {
	return d.buf.Len() == 0
}
