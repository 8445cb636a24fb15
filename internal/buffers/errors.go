package buffers

import "errors"

var (
	ErrOverflow       = errors.New("buffers: overflow")
	ErrUnderflow      = errors.New("buffers: underflow")
	ErrInvalidFraming = errors.New("buffers: invalid framing")
)
