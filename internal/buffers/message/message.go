package message

import (
	"github.com/danmuck/antbuffers/internal/buffers"
)

const (
	// HeaderLen is the [type][length] prefix of every frame.
	HeaderLen = 2
	// MaxPayloadLen is the largest length the header byte can carry.
	MaxPayloadLen = 255

	typeOffset   = 0
	lengthOffset = 1
)

// State is the session a Buffer is currently in.
type State uint8

const (
	StateIdle State = iota
	StateWriting
	StateFinalized
	StateReading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWriting:
		return "writing"
	case StateFinalized:
		return "finalized"
	case StateReading:
		return "reading"
	default:
		return "unknown"
	}
}

// Buffer builds and parses one [type:1][length:1][payload] frame at a time
// over a borrowed byte slice. Write and read sessions share the storage and
// never overlap: starting one ends the other.
type Buffer struct {
	data        []byte
	writeCursor int
	readCursor  int
	readLimit   int
	state       State
}

// New returns a Buffer over data. Capacity is len(data).
func New(data []byte) *Buffer {
	return &Buffer{data: data}
}

func (m *Buffer) Capacity() int { return len(m.data) }
func (m *Buffer) State() State  { return m.state }

// BeginMessage starts a write session: type goes to byte 0, a zero length
// placeholder to byte 1, and payload appends start at HeaderLen.
func (m *Buffer) BeginMessage(typ uint8) error {
	if len(m.data) < HeaderLen {
		return buffers.ErrOverflow
	}
	m.data[typeOffset] = typ
	m.data[lengthOffset] = 0
	m.writeCursor = HeaderLen
	m.readCursor = 0
	m.readLimit = 0
	m.state = StateWriting
	return nil
}

// WriteByte appends one payload byte.
func (m *Buffer) WriteByte(v byte) error {
	if m.state != StateWriting {
		return buffers.ErrInvalidFraming
	}
	if m.writeCursor >= len(m.data) {
		return buffers.ErrOverflow
	}
	m.data[m.writeCursor] = v
	m.writeCursor++
	return nil
}

// Finalize stores the payload length in the header. Lengths above
// MaxPayloadLen are clamped; Size keeps reporting every byte written.
func (m *Buffer) Finalize() error {
	if m.state != StateWriting && m.state != StateFinalized {
		return buffers.ErrInvalidFraming
	}
	n := m.writeCursor - HeaderLen
	if n > MaxPayloadLen {
		n = MaxPayloadLen
	}
	m.data[lengthOffset] = uint8(n)
	m.state = StateFinalized
	return nil
}

// Size is the frame length in bytes: header plus payload actually written
// during a write session, or the received size during a read session.
func (m *Buffer) Size() int {
	switch m.state {
	case StateWriting, StateFinalized:
		return m.writeCursor
	case StateReading:
		return m.readLimit
	default:
		return 0
	}
}

// Data returns the frame bytes data[:Size()]. It aliases the backing storage.
func (m *Buffer) Data() []byte { return m.data[:m.Size()] }

// BeginRead starts a read session over the first size bytes of storage.
func (m *Buffer) BeginRead(size int) error {
	if size < HeaderLen || size > len(m.data) {
		return buffers.ErrInvalidFraming
	}
	m.readLimit = size
	m.readCursor = HeaderLen
	m.writeCursor = 0
	m.state = StateReading
	return nil
}

func (m *Buffer) MessageType() uint8 {
	if len(m.data) < HeaderLen {
		return 0
	}
	return m.data[typeOffset]
}

// PayloadLength is the declared length byte, not the received size.
func (m *Buffer) PayloadLength() uint8 {
	if len(m.data) < HeaderLen {
		return 0
	}
	return m.data[lengthOffset]
}

// ReadByte returns the next payload byte. It stops at the session size,
// independent of the declared length.
func (m *Buffer) ReadByte() (byte, error) {
	if m.state != StateReading {
		return 0, buffers.ErrInvalidFraming
	}
	if m.readCursor >= m.readLimit {
		return 0, buffers.ErrUnderflow
	}
	v := m.data[m.readCursor]
	m.readCursor++
	return v, nil
}

// ReadRemaining counts unread payload bytes against the declared length.
// A declared length that disagrees with the session size is reported as is.
func (m *Buffer) ReadRemaining() int {
	if m.state != StateReading {
		return 0
	}
	end := HeaderLen + int(m.PayloadLength())
	if m.readCursor < end {
		return end - m.readCursor
	}
	return 0
}
