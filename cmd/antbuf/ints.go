package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/antbuffers/internal/buffers/bytebuf"
	"github.com/danmuck/antbuffers/internal/observability"
	"github.com/danmuck/antbuffers/internal/protocol/frame"
	"github.com/danmuck/antbuffers/internal/protocol/layout"
	"github.com/spf13/cobra"
)

func encodeCmd(a *app) *cobra.Command {
	var typ uint8

	cmd := &cobra.Command{
		Use:   "encode <kind=value>...",
		Short: "Encode unsigned integers and print the bytes as hex",
		Long: `Encode integers in order into a buffer.capacity sized array.

Kinds: u8, u16le, u16be, u32le, u32be. A bare u16 or u32 uses
buffer.byte_order. With --type the bytes become the payload of a frame.

Examples:
  antbuf encode u16le=0x1234 u32be=0xdeadbeef   # 3412deadbeef
  antbuf encode --type 7 u8=1 u16=2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals := make([]layout.Value, 0, len(args))
			for _, arg := range args {
				v, err := layout.ParseValue(arg, a.order)
				if err != nil {
					return err
				}
				vals = append(vals, v)
			}
			b := bytebuf.New(a.scratch())
			err := layout.Encode(b, vals)
			observability.RecordCodec("encode", err)
			if err != nil {
				return err
			}
			out := b.Bytes()
			if cmd.Flags().Changed("type") {
				scratch := a.scratch()
				n, err := frame.Encode(scratch, frame.Frame{Type: typ, Payload: out})
				if err != nil {
					return fmt.Errorf("build frame: %w", err)
				}
				out = scratch[:n]
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%x\n", out)
			return err
		},
	}

	cmd.Flags().Uint8VarP(&typ, "type", "t", 0, "wrap the bytes in a frame of this type")

	return cmd
}

func decodeCmd(a *app) *cobra.Command {
	var (
		kindList string
		inFrame  bool
	)

	cmd := &cobra.Command{
		Use:   "decode --layout <kinds> <hex>...",
		Short: "Decode unsigned integers from hex bytes",
		Long: `Decode one value per kind in --layout from the given bytes.

With --frame the input is a frame and the layout applies to its payload.

Examples:
  antbuf decode --layout u16le,u32be 3412deadbeef
  antbuf decode --frame --layout u8 07 01 2a`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := layout.ParseKinds(kindList, a.order)
			if err != nil {
				return err
			}
			raw, err := parseHex(args...)
			if err != nil {
				return err
			}
			if inFrame {
				f, err := frame.Decode(raw)
				if err != nil {
					observability.RecordCodec("decode", err)
					return fmt.Errorf("parse frame: %w", err)
				}
				raw = f.Payload
			}
			vals, err := layout.Decode(bytebuf.Wrap(raw), kinds)
			observability.RecordCodec("decode", err)
			if err != nil {
				return err
			}
			parts := make([]string, len(vals))
			for i, v := range vals {
				parts[i] = fmt.Sprintf("%s=%d", v.Kind, v.Value)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
			return err
		},
	}

	cmd.Flags().StringVarP(&kindList, "layout", "l", "", "comma-separated kinds, e.g. u8,u16be,u32le")
	cmd.Flags().BoolVarP(&inFrame, "frame", "f", false, "input is a frame; decode its payload")
	_ = cmd.MarkFlagRequired("layout")

	return cmd
}
