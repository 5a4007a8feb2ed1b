package protocol

import (
	"bytes"
	"fmt"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/repeat"
	"github.com/vmihailenco/msgpack/v5"
)

// Frame header values.
const (
	FrameMagic0  byte = 'I'
	FrameMagic1  byte = 'D'
	FrameVersion byte = 1
)

// MaxFrameOps bounds the operation count accepted by DecodeOperations.
const MaxFrameOps = 1 << 20

// EncodeOperations encodes ops as a binary frame.
func EncodeOperations(ops []Op) ([]byte, error) {
	e := NewEncoder(8 + 16*len(ops))
	e.WriteByte(FrameMagic0)
	e.WriteByte(FrameMagic1)
	e.WriteByte(FrameVersion)
	e.WriteUvarint(uint64(len(ops)))

	for i, op := range ops {
		e.WriteByte(byte(op.Kind))
		e.WriteUvarint(op.ID)
		e.WriteSvarint(int64(op.From))
		e.WriteSvarint(int64(op.To))
		if op.Item == nil {
			e.WriteUvarint(0)
			continue
		}
		item, err := msgpack.Marshal(op.Item)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode op %d item: %w", i, err)
		}
		e.WriteLenBytes(item)
	}
	return e.Bytes(), nil
}

// DecodeOperations decodes a frame produced by EncodeOperations.
func DecodeOperations(data []byte) ([]Op, error) {
	d := NewDecoder(data)
	m0, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	m1, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if m0 != FrameMagic0 || m1 != FrameMagic1 {
		return nil, ErrBadMagic
	}
	version, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != FrameVersion {
		return nil, fmt.Errorf("protocol: unsupported frame version %d", version)
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > MaxFrameOps || count > uint64(d.Remaining()) {
		// Every op takes at least five bytes.
		return nil, fmt.Errorf("%w: %d operations", ErrTruncated, count)
	}

	ops := make([]Op, 0, count)
	for i := uint64(0); i < count; i++ {
		op, err := decodeOp(d)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOp(d *Decoder) (Op, error) {
	var op Op
	kind, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Kind = repeat.PatchOp(kind)
	if op.ID, err = d.ReadUvarint(); err != nil {
		return op, err
	}
	from, err := d.ReadSvarint()
	if err != nil {
		return op, err
	}
	to, err := d.ReadSvarint()
	if err != nil {
		return op, err
	}
	op.From, op.To = int(from), int(to)

	item, err := d.ReadLenBytes()
	if err != nil {
		return op, err
	}
	if len(item) > 0 {
		dec := msgpack.NewDecoder(bytes.NewReader(item))
		if op.Item, err = dec.DecodeInterfaceLoose(); err != nil {
			return op, fmt.Errorf("protocol: decode item: %w", err)
		}
	}
	return op, nil
}
