package bytebuf

import (
	"encoding/binary"

	"github.com/danmuck/antbuffers/internal/buffers"
)

const (
	widthU8  = 1
	widthU16 = 2
	widthU32 = 4
)

// Buffer is a sequential reader/writer over a borrowed byte slice.
//
// The read and write cursors move independently. The slice must outlive the
// Buffer and must not be mutated through other paths while it is in use.
type Buffer struct {
	data     []byte
	writePos int
	readPos  int
}

// New returns a Buffer over data. Capacity is len(data).
func New(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Wrap returns a Buffer over data that already holds len(data) written
// bytes, ready to be read back.
func Wrap(data []byte) *Buffer {
	return &Buffer{data: data, writePos: len(data)}
}

// ResetWrite moves the write cursor back to 0. Bytes are left in place.
func (b *Buffer) ResetWrite() { b.writePos = 0 }

// ResetRead moves the read cursor back to 0 so written bytes can be re-read.
func (b *Buffer) ResetRead() { b.readPos = 0 }

func (b *Buffer) WritePosition() int { return b.writePos }
func (b *Buffer) ReadPosition() int  { return b.readPos }
func (b *Buffer) Capacity() int      { return len(b.data) }

func (b *Buffer) WriteRemaining() int {
	if b.writePos < len(b.data) {
		return len(b.data) - b.writePos
	}
	return 0
}

func (b *Buffer) ReadRemaining() int {
	if b.readPos < b.writePos {
		return b.writePos - b.readPos
	}
	return 0
}

// Bytes returns the written region data[:WritePosition()]. It aliases the
// backing storage.
func (b *Buffer) Bytes() []byte { return b.data[:b.writePos] }

func (b *Buffer) WriteUint8(v uint8) error {
	if b.WriteRemaining() < widthU8 {
		return buffers.ErrOverflow
	}
	b.data[b.writePos] = v
	b.writePos += widthU8
	return nil
}

func (b *Buffer) ReadUint8() (uint8, error) {
	if b.ReadRemaining() < widthU8 {
		return 0, buffers.ErrUnderflow
	}
	v := b.data[b.readPos]
	b.readPos += widthU8
	return v, nil
}

// WriteUint16 encodes v in the given byte order.
func (b *Buffer) WriteUint16(v uint16, order binary.ByteOrder) error {
	if b.WriteRemaining() < widthU16 {
		return buffers.ErrOverflow
	}
	order.PutUint16(b.data[b.writePos:b.writePos+widthU16], v)
	b.writePos += widthU16
	return nil
}

// ReadUint16 decodes two bytes in the given byte order.
func (b *Buffer) ReadUint16(order binary.ByteOrder) (uint16, error) {
	if b.ReadRemaining() < widthU16 {
		return 0, buffers.ErrUnderflow
	}
	v := order.Uint16(b.data[b.readPos : b.readPos+widthU16])
	b.readPos += widthU16
	return v, nil
}

// WriteUint32 encodes v in the given byte order.
func (b *Buffer) WriteUint32(v uint32, order binary.ByteOrder) error {
	if b.WriteRemaining() < widthU32 {
		return buffers.ErrOverflow
	}
	order.PutUint32(b.data[b.writePos:b.writePos+widthU32], v)
	b.writePos += widthU32
	return nil
}

// ReadUint32 decodes four bytes in the given byte order.
func (b *Buffer) ReadUint32(order binary.ByteOrder) (uint32, error) {
	if b.ReadRemaining() < widthU32 {
		return 0, buffers.ErrUnderflow
	}
	v := order.Uint32(b.data[b.readPos : b.readPos+widthU32])
	b.readPos += widthU32
	return v, nil
}

func (b *Buffer) WriteUint16LE(v uint16) error { return b.WriteUint16(v, binary.LittleEndian) }
func (b *Buffer) WriteUint16BE(v uint16) error { return b.WriteUint16(v, binary.BigEndian) }
func (b *Buffer) WriteUint32LE(v uint32) error { return b.WriteUint32(v, binary.LittleEndian) }
func (b *Buffer) WriteUint32BE(v uint32) error { return b.WriteUint32(v, binary.BigEndian) }

func (b *Buffer) ReadUint16LE() (uint16, error) { return b.ReadUint16(binary.LittleEndian) }
func (b *Buffer) ReadUint16BE() (uint16, error) { return b.ReadUint16(binary.BigEndian) }
func (b *Buffer) ReadUint32LE() (uint32, error) { return b.ReadUint32(binary.LittleEndian) }
func (b *Buffer) ReadUint32BE() (uint32, error) { return b.ReadUint32(binary.BigEndian) }
