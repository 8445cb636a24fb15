package inbox

import (
	"github.com/danmuck/antbuffers/internal/buffers"
	"github.com/danmuck/antbuffers/internal/buffers/ring"
	"github.com/danmuck/antbuffers/internal/observability"
	"github.com/danmuck/antbuffers/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

// Inbox queues decoded frames between a reader and a dispatcher.
// It is not safe for concurrent use.
type Inbox struct {
	name    string
	queue   *ring.Buffer[frame.Frame]
	dropped int
}

// New returns an Inbox holding at most depth frames.
func New(name string, depth int) *Inbox {
	return &Inbox{
		name:  name,
		queue: ring.New[frame.Frame](depth),
	}
}

// Offer copies f into the queue. A full queue drops the frame and returns
// buffers.ErrOverflow.
func (in *Inbox) Offer(f frame.Frame) error {
	if in.queue.Full() {
		in.dropped++
		observability.RecordInboxOffer(in.name, observability.ResultDropped, in.queue.Len())
		log.Warn().
			Str("inbox", in.name).
			Uint8("type", f.Type).
			Int("dropped", in.dropped).
			Msg("inbox full, frame dropped")
		return buffers.ErrOverflow
	}
	owned := frame.Frame{Type: f.Type}
	if len(f.Payload) > 0 {
		owned.Payload = append([]byte(nil), f.Payload...)
	}
	if err := in.queue.Push(owned); err != nil {
		return err
	}
	observability.RecordInboxOffer(in.name, observability.ResultOK, in.queue.Len())
	return nil
}

// Next removes the oldest frame. ok is false when the inbox is empty.
func (in *Inbox) Next() (frame.Frame, bool) {
	f, err := in.queue.Pop()
	if err != nil {
		return frame.Frame{}, false
	}
	observability.RecordInboxDepth(in.name, in.queue.Len())
	return f, true
}

// Drain hands every queued frame to fn in arrival order. It stops at the
// first error and leaves the remaining frames queued.
func (in *Inbox) Drain(fn func(frame.Frame) error) (int, error) {
	n := 0
	for {
		f, ok := in.queue.Peek()
		if !ok {
			return n, nil
		}
		if err := fn(f); err != nil {
			return n, err
		}
		_, _ = in.queue.Pop()
		observability.RecordInboxDepth(in.name, in.queue.Len())
		n++
	}
}

func (in *Inbox) Len() int     { return in.queue.Len() }
func (in *Inbox) Cap() int     { return in.queue.Cap() }
func (in *Inbox) Dropped() int { return in.dropped }

// Reset discards queued frames. The drop counter is kept.
func (in *Inbox) Reset() {
	in.queue.Clear()
	observability.RecordInboxDepth(in.name, 0)
}
