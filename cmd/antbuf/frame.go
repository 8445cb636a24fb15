package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/antbuffers/internal/buffers/message"
	"github.com/danmuck/antbuffers/internal/inbox"
	"github.com/danmuck/antbuffers/internal/observability"
	"github.com/danmuck/antbuffers/internal/protocol/frame"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func frameCmd(a *app) *cobra.Command {
	var (
		typ      uint8
		oversize bool
	)

	cmd := &cobra.Command{
		Use:   "frame [hex payload...]",
		Short: "Build a frame and print it as hex",
		Long: `Build one [type][length][payload] frame in a buffer.capacity sized array.

Payloads over 255 bytes are rejected unless --oversize is set, in which case
the length byte is clamped to 255 and every payload byte is still emitted.

Examples:
  antbuf frame --type 0x42 aabb        # 4202aabb
  antbuf frame -t 1                    # 0100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseHex(args...)
			if err != nil {
				return err
			}
			var out []byte
			if oversize {
				out, err = buildClamped(a.scratch(), typ, payload)
			} else {
				var n int
				scratch := a.scratch()
				n, err = frame.Encode(scratch, frame.Frame{Type: typ, Payload: payload})
				out = scratch[:n]
			}
			observability.RecordCodec("encode", err)
			if err != nil {
				return fmt.Errorf("build frame: %w", err)
			}
			log.Debug().Uint8("type", typ).Int("size", len(out)).Msg("frame built")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%x\n", out)
			return err
		},
	}

	cmd.Flags().Uint8VarP(&typ, "type", "t", 0, "message type byte")
	cmd.Flags().BoolVar(&oversize, "oversize", false, "allow payloads over 255 bytes (length byte clamps)")

	return cmd
}

// buildClamped writes through message.Buffer directly so oversized payloads
// keep the clamped length byte.
func buildClamped(scratch []byte, typ uint8, payload []byte) ([]byte, error) {
	m := message.New(scratch)
	if err := m.BeginMessage(typ); err != nil {
		return nil, err
	}
	for _, b := range payload {
		if err := m.WriteByte(b); err != nil {
			return nil, err
		}
	}
	if err := m.Finalize(); err != nil {
		return nil, err
	}
	return m.Data(), nil
}

func parseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <hex frame...>",
		Short: "Parse a hex frame and print its fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseHex(args...)
			if err != nil {
				return err
			}
			if len(raw) > a.cfg.Buffer.Capacity {
				return fmt.Errorf("frame of %d bytes exceeds buffer.capacity %d", len(raw), a.cfg.Buffer.Capacity)
			}
			scratch := a.scratch()
			copy(scratch, raw)

			m := message.New(scratch)
			err = m.BeginRead(len(raw))
			observability.RecordCodec("decode", err)
			if err != nil {
				return fmt.Errorf("parse frame: %w", err)
			}
			declared := int(m.PayloadLength())
			if received := len(raw) - message.HeaderLen; received != declared {
				log.Warn().
					Int("declared", declared).
					Int("received", received).
					Msg("declared length disagrees with received size")
			}
			payload := make([]byte, 0, declared)
			for m.ReadRemaining() > 0 {
				b, err := m.ReadByte()
				if err != nil {
					break
				}
				payload = append(payload, b)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "type=0x%02x length=%d payload=%x\n",
				m.MessageType(), declared, payload)
			return err
		},
	}
	return cmd
}

func streamCmd(a *app) *cobra.Command {
	var (
		hexInput bool
		stats    bool
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Read back-to-back frames from stdin and dispatch them in order",
		Long: `Read a stream of frames from stdin, queue them in a buffer.queue_depth
inbox and print each one as it is dispatched. The inbox is drained whenever
it fills and once more at end of input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = bufio.NewReader(cmd.InOrStdin())
			if hexInput {
				text, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				raw, err := parseHex(string(text))
				if err != nil {
					return err
				}
				r = bytes.NewReader(raw)
			}
			out := cmd.OutOrStdout()
			n, err := runStream(r, out, a.scratch(), inbox.New("stream", a.cfg.Buffer.QueueDepth))
			log.Info().Int("frames", n).Msg("stream finished")
			if err != nil {
				return err
			}
			if stats {
				return printStats(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hexInput, "hex", false, "stdin is hex text instead of raw bytes")
	cmd.Flags().BoolVar(&stats, "stats", false, "print antbuf metrics after the stream ends")

	return cmd
}

func runStream(r io.Reader, w io.Writer, scratch []byte, in *inbox.Inbox) (int, error) {
	dispatched := 0
	dispatch := func(f frame.Frame) error {
		dispatched++
		_, err := fmt.Fprintf(w, "%d type=0x%02x length=%d payload=%x\n", dispatched, f.Type, len(f.Payload), f.Payload)
		return err
	}
	for {
		f, err := frame.ReadFrame(r, scratch)
		if errors.Is(err, io.EOF) {
			break
		}
		observability.RecordCodec("decode", err)
		if err != nil {
			if _, derr := in.Drain(dispatch); derr != nil {
				return dispatched, derr
			}
			return dispatched, fmt.Errorf("read frame %d: %w", dispatched+in.Len()+1, err)
		}
		if in.Len() == in.Cap() {
			if _, err := in.Drain(dispatch); err != nil {
				return dispatched, err
			}
		}
		if err := in.Offer(f); err != nil {
			return dispatched, err
		}
	}
	_, err := in.Drain(dispatch)
	return dispatched, err
}

func printStats(w io.Writer) error {
	samples, err := observability.Gather()
	if err != nil {
		return err
	}
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, "%s%v %g\n", s.Name, s.Labels, s.Value); err != nil {
			return err
		}
	}
	return nil
}
