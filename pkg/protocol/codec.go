package protocol

import (
	"errors"
	"fmt"
)

// MaxVarintLen is the longest encoding of a 64-bit varint.
const MaxVarintLen = 10

// MaxItemSize bounds the length prefix of a single encoded item.
const MaxItemSize = 4 * 1024 * 1024

// Decoding errors.
var (
	ErrTruncated      = errors.New("protocol: truncated input")
	ErrVarintOverflow = errors.New("protocol: varint overflow")
	ErrBadMagic       = errors.New("protocol: bad frame magic")
	ErrItemTooLarge   = errors.New("protocol: item exceeds size limit")
)

// Encoder appends binary values to a growing buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with room for n bytes.
func NewEncoder(n int) *Encoder {
	return &Encoder{buf: make([]byte, 0, n)}
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// Reset empties the buffer, keeping its capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// WriteByte appends b. It never fails.
func (e *Encoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)
	return nil
}

// WriteUvarint appends v as an unsigned varint.
func (e *Encoder) WriteUvarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteSvarint appends v ZigZag encoded.
func (e *Encoder) WriteSvarint(v int64) {
	e.WriteUvarint(uint64(v<<1) ^ uint64(v>>63))
}

// WriteLenBytes appends len(b) as a varint followed by b.
func (e *Encoder) WriteLenBytes(b []byte) {
	e.WriteUvarint(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// Decoder reads binary values written by an Encoder.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// ReadByte reads one byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, ErrTruncated
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadUvarint reads an unsigned varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := DecodeUvarint(d.buf[d.pos:])
	switch n {
	case -1:
		return 0, ErrTruncated
	case -2:
		return 0, ErrVarintOverflow
	}
	d.pos += n
	return v, nil
}

// ReadSvarint reads a ZigZag encoded varint.
func (d *Decoder) ReadSvarint() (int64, error) {
	uv, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return int64(uv>>1) ^ -int64(uv&1), nil
}

// ReadLenBytes reads a length-prefixed byte string. The result aliases the
// decoder's buffer.
func (d *Decoder) ReadLenBytes() ([]byte, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n > MaxItemSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrItemTooLarge, n)
	}
	if uint64(d.Remaining()) < n {
		return nil, ErrTruncated
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

// DecodeUvarint decodes a varint from the start of buf and returns the
// value and the number of bytes read. n is -1 when buf ends mid-varint
// and -2 when the varint is longer than MaxVarintLen.
func DecodeUvarint(buf []byte) (v uint64, n int) {
	var shift uint
	for i, b := range buf {
		if i == MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	if len(buf) >= MaxVarintLen {
		return 0, -2
	}
	return 0, -1
}
