package message

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/antbuffers/internal/buffers"
)

const fixtureSize = 8

func newFixture() ([]byte, *Buffer) {
	raw := make([]byte, fixtureSize)
	return raw, New(raw)
}

func expectHeader(t *testing.T, raw []byte, typ, length uint8) {
	t.Helper()
	if raw[0] != typ || raw[1] != length {
		t.Fatalf("header: got [%#x %d] want [%#x %d]", raw[0], raw[1], typ, length)
	}
}

func TestInitialState(t *testing.T) {
	raw, m := newFixture()
	if m.Size() != 0 {
		t.Fatalf("size: got %d want 0", m.Size())
	}
	if m.State() != StateIdle {
		t.Fatalf("state: got %s", m.State())
	}
	if m.Capacity() != fixtureSize {
		t.Fatalf("capacity: got %d", m.Capacity())
	}
	for i, b := range raw {
		if b != 0 {
			t.Fatalf("raw[%d] touched: %#x", i, b)
		}
	}
}

func TestBeginAndFinalize(t *testing.T) {
	raw, m := newFixture()
	if err := m.BeginMessage(0x42); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.WriteByte(0xAA); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.WriteByte(0xBB); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.Size() != 4 {
		t.Fatalf("size: got %d want 4", m.Size())
	}
	if !bytes.Equal(m.Data(), []byte{0x42, 0x02, 0xAA, 0xBB}) {
		t.Fatalf("frame: got % x", m.Data())
	}
	expectHeader(t, raw, 0x42, 2)
	if m.State() != StateFinalized {
		t.Fatalf("state: got %s", m.State())
	}
}

func TestEmptyPayload(t *testing.T) {
	raw, m := newFixture()
	raw[1] = 0x55
	if err := m.BeginMessage(0x01); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if raw[1] != 0 {
		t.Fatalf("length placeholder not zeroed: %#x", raw[1])
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.Size() != HeaderLen {
		t.Fatalf("size: got %d", m.Size())
	}
	expectHeader(t, raw, 0x01, 0)
}

func TestOverflowPrevention(t *testing.T) {
	raw, m := newFixture()
	if err := m.BeginMessage(0x99); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for i := 0; i < fixtureSize-HeaderLen; i++ {
		if err := m.WriteByte(uint8(i)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := m.WriteByte(0xFF); !errors.Is(err, buffers.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if m.Size() != fixtureSize {
		t.Fatalf("size moved: %d", m.Size())
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	expectHeader(t, raw, 0x99, 6)
}

func TestBeginMessageNeedsHeaderRoom(t *testing.T) {
	m := New(make([]byte, 1))
	if err := m.BeginMessage(0x01); !errors.Is(err, buffers.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if m.State() != StateIdle {
		t.Fatalf("state changed: %s", m.State())
	}
	if m.MessageType() != 0 || m.PayloadLength() != 0 {
		t.Fatalf("header accessors on short storage must be 0")
	}
}

func TestReadValidMessage(t *testing.T) {
	_, m := newFixture()
	if err := m.BeginMessage(0xAB); err != nil {
		t.Fatalf("begin: %v", err)
	}
	_ = m.WriteByte(0xDE)
	_ = m.WriteByte(0xAD)
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if err := m.BeginRead(m.Size()); err != nil {
		t.Fatalf("begin read: %v", err)
	}
	if m.MessageType() != 0xAB {
		t.Fatalf("type: got %#x", m.MessageType())
	}
	if m.PayloadLength() != 2 {
		t.Fatalf("length: got %d", m.PayloadLength())
	}
	if m.Size() != 4 {
		t.Fatalf("size during read: got %d", m.Size())
	}

	v, err := m.ReadByte()
	if err != nil || v != 0xDE {
		t.Fatalf("read 1: got %#x err=%v", v, err)
	}
	v, err = m.ReadByte()
	if err != nil || v != 0xAD {
		t.Fatalf("read 2: got %#x err=%v", v, err)
	}
	if _, err := m.ReadByte(); !errors.Is(err, buffers.ErrUnderflow) {
		t.Fatalf("expected ErrUnderflow, got %v", err)
	}
}

func TestBeginReadRejectsInvalidSize(t *testing.T) {
	_, m := newFixture()
	for _, size := range []int{0, 1, fixtureSize + 1, -1} {
		if err := m.BeginRead(size); !errors.Is(err, buffers.ErrInvalidFraming) {
			t.Fatalf("size %d: expected ErrInvalidFraming, got %v", size, err)
		}
	}
	if m.State() != StateIdle {
		t.Fatalf("state changed: %s", m.State())
	}
	if err := m.BeginRead(HeaderLen); err != nil {
		t.Fatalf("header-only read: %v", err)
	}
	if err := m.BeginRead(fixtureSize); err != nil {
		t.Fatalf("full read: %v", err)
	}
}

func TestReadRemaining(t *testing.T) {
	_, m := newFixture()
	if err := m.BeginMessage(0x01); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, b := range []byte{0xAA, 0xBB, 0xCC} {
		if err := m.WriteByte(b); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.ReadRemaining() != 0 {
		t.Fatalf("read remaining outside a read session: %d", m.ReadRemaining())
	}
	if err := m.BeginRead(m.Size()); err != nil {
		t.Fatalf("begin read: %v", err)
	}
	for want := 3; want > 0; want-- {
		if m.ReadRemaining() != want {
			t.Fatalf("read remaining: got %d want %d", m.ReadRemaining(), want)
		}
		if _, err := m.ReadByte(); err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if m.ReadRemaining() != 0 {
		t.Fatalf("read remaining: got %d want 0", m.ReadRemaining())
	}
}

func TestDeclaredLengthMismatchIsPreserved(t *testing.T) {
	raw := []byte{0x07, 0x05, 0x01, 0x02, 0x03, 0, 0, 0}
	m := New(raw)
	// Received 4 bytes but the header claims 5 payload bytes.
	if err := m.BeginRead(4); err != nil {
		t.Fatalf("begin read: %v", err)
	}
	if m.ReadRemaining() != 5 {
		t.Fatalf("read remaining follows declared length: got %d", m.ReadRemaining())
	}
	for i := 0; i < 2; i++ {
		if _, err := m.ReadByte(); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	if _, err := m.ReadByte(); !errors.Is(err, buffers.ErrUnderflow) {
		t.Fatalf("read stops at session size, got %v", err)
	}
	if m.ReadRemaining() != 3 {
		t.Fatalf("read remaining: got %d want 3", m.ReadRemaining())
	}

	// Declared shorter than received: ReadByte may run past the payload.
	raw[1] = 0
	if err := m.BeginRead(4); err != nil {
		t.Fatalf("begin read: %v", err)
	}
	if m.ReadRemaining() != 0 {
		t.Fatalf("read remaining: got %d want 0", m.ReadRemaining())
	}
	if v, err := m.ReadByte(); err != nil || v != 0x01 {
		t.Fatalf("read past declared length: got %#x err=%v", v, err)
	}
}

func TestPayloadLengthClampsAt255(t *testing.T) {
	const payload = 300
	raw := make([]byte, HeaderLen+payload)
	m := New(raw)
	if err := m.BeginMessage(0x77); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for i := 0; i < payload; i++ {
		if err := m.WriteByte(0x00); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.PayloadLength() != MaxPayloadLen {
		t.Fatalf("payload length: got %d want 255", m.PayloadLength())
	}
	if m.Size() != HeaderLen+payload {
		t.Fatalf("size: got %d want %d", m.Size(), HeaderLen+payload)
	}
}

func TestSessionStateGuards(t *testing.T) {
	_, m := newFixture()
	if err := m.WriteByte(0x01); !errors.Is(err, buffers.ErrInvalidFraming) {
		t.Fatalf("write while idle: %v", err)
	}
	if err := m.Finalize(); !errors.Is(err, buffers.ErrInvalidFraming) {
		t.Fatalf("finalize while idle: %v", err)
	}
	if _, err := m.ReadByte(); !errors.Is(err, buffers.ErrInvalidFraming) {
		t.Fatalf("read while idle: %v", err)
	}

	if err := m.BeginMessage(0x10); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := m.ReadByte(); !errors.Is(err, buffers.ErrInvalidFraming) {
		t.Fatalf("read while writing: %v", err)
	}
	_ = m.WriteByte(0x01)
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if err := m.WriteByte(0x02); !errors.Is(err, buffers.ErrInvalidFraming) {
		t.Fatalf("write after finalize: %v", err)
	}

	if err := m.BeginRead(m.Size()); err != nil {
		t.Fatalf("begin read: %v", err)
	}
	if err := m.WriteByte(0x03); !errors.Is(err, buffers.ErrInvalidFraming) {
		t.Fatalf("write while reading: %v", err)
	}
	if err := m.Finalize(); !errors.Is(err, buffers.ErrInvalidFraming) {
		t.Fatalf("finalize while reading: %v", err)
	}

	// A new write session ends the read session.
	if err := m.BeginMessage(0x20); err != nil {
		t.Fatalf("begin again: %v", err)
	}
	if m.State() != StateWriting || m.Size() != HeaderLen {
		t.Fatalf("state=%s size=%d", m.State(), m.Size())
	}
}

func TestByteInterfaces(t *testing.T) {
	_, m := newFixture()
	var w io.ByteWriter = m
	var r io.ByteReader = m
	if err := m.BeginMessage(0x03); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := w.WriteByte('x'); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = m.Finalize()
	if err := m.BeginRead(m.Size()); err != nil {
		t.Fatalf("begin read: %v", err)
	}
	if v, err := r.ReadByte(); err != nil || v != 'x' {
		t.Fatalf("read: got %q err=%v", v, err)
	}
}

func TestStateString(t *testing.T) {
	names := map[State]string{
		StateIdle:      "idle",
		StateWriting:   "writing",
		StateFinalized: "finalized",
		StateReading:   "reading",
		State(42):      "unknown",
	}
	for s, want := range names {
		if s.String() != want {
			t.Fatalf("state %d: got %q want %q", s, s.String(), want)
		}
	}
}

func TestCodecDoesNotAllocate(t *testing.T) {
	raw := make([]byte, 32)
	m := New(raw)
	allocs := testing.AllocsPerRun(100, func() {
		_ = m.BeginMessage(0x01)
		for i := 0; i < 8; i++ {
			_ = m.WriteByte(uint8(i))
		}
		_ = m.Finalize()
		_ = m.BeginRead(m.Size())
		for m.ReadRemaining() > 0 {
			_, _ = m.ReadByte()
		}
	})
	if allocs != 0 {
		t.Fatalf("expected zero allocations, got %v", allocs)
	}
}
