package frame

import (
	"errors"
	"io"

	"github.com/danmuck/antbuffers/internal/buffers/message"
)

const (
	HeaderLen  = message.HeaderLen
	MaxPayload = message.MaxPayloadLen
	// MaxFrameLen is the scratch size that fits any valid frame.
	MaxFrameLen = HeaderLen + MaxPayload
)

var (
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrShortScratch    = errors.New("frame: scratch buffer too small")
	ErrTruncated       = errors.New("frame: truncated payload")
	ErrShortHeader     = errors.New("frame: short header")
)

// Frame is one [type][length][payload] message.
type Frame struct {
	Type    uint8
	Payload []byte
}

// Encode builds f into dst and returns the frame size. Unlike
// message.Buffer it refuses payloads the length byte cannot describe.
func Encode(dst []byte, f Frame) (int, error) {
	if len(f.Payload) > MaxPayload {
		return 0, ErrPayloadTooLarge
	}
	if len(dst) < HeaderLen+len(f.Payload) {
		return 0, ErrShortScratch
	}
	m := message.New(dst)
	if err := m.BeginMessage(f.Type); err != nil {
		return 0, err
	}
	for _, b := range f.Payload {
		if err := m.WriteByte(b); err != nil {
			return 0, err
		}
	}
	if err := m.Finalize(); err != nil {
		return 0, err
	}
	return m.Size(), nil
}

// Decode parses one frame from src. The payload aliases src. Bytes past the
// declared length are ignored.
func Decode(src []byte) (Frame, error) {
	m := message.New(src)
	if err := m.BeginRead(len(src)); err != nil {
		return Frame{}, ErrShortHeader
	}
	n := m.ReadRemaining()
	if HeaderLen+n > len(src) {
		return Frame{}, ErrTruncated
	}
	return Frame{
		Type:    m.MessageType(),
		Payload: src[HeaderLen : HeaderLen+n],
	}, nil
}

// ReadFrame reads one frame from r into scratch. The payload aliases scratch
// and is only valid until the next call.
func ReadFrame(r io.Reader, scratch []byte) (Frame, error) {
	if len(scratch) < HeaderLen {
		return Frame{}, ErrShortScratch
	}
	if _, err := io.ReadFull(r, scratch[:HeaderLen]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrShortHeader
		}
		return Frame{}, err
	}
	size := HeaderLen + int(scratch[1])
	if size > len(scratch) {
		return Frame{}, ErrShortScratch
	}
	if _, err := io.ReadFull(r, scratch[HeaderLen:size]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Frame{}, ErrTruncated
		}
		return Frame{}, err
	}
	return Decode(scratch[:size])
}

// WriteFrame encodes f into scratch and writes it to w.
func WriteFrame(w io.Writer, f Frame, scratch []byte) error {
	n, err := Encode(scratch, f)
	if err != nil {
		return err
	}
	_, err = w.Write(scratch[:n])
	return err
}
