package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/antbuffers/internal/buffers/bytebuf"
)

var ErrBadLayout = errors.New("layout: bad layout")

// Kind is one fixed-width unsigned integer encoding.
type Kind uint8

const (
	KindU8 Kind = iota + 1
	KindU16LE
	KindU16BE
	KindU32LE
	KindU32BE
)

var kindNames = map[string]Kind{
	"u8":    KindU8,
	"u16le": KindU16LE,
	"u16be": KindU16BE,
	"u32le": KindU32LE,
	"u32be": KindU32BE,
}

func (k Kind) String() string {
	for name, v := range kindNames {
		if v == k {
			return name
		}
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Width is the encoded size in bytes.
func (k Kind) Width() int {
	switch k {
	case KindU8:
		return 1
	case KindU16LE, KindU16BE:
		return 2
	case KindU32LE, KindU32BE:
		return 4
	default:
		return 0
	}
}

// Order is nil for KindU8.
func (k Kind) Order() binary.ByteOrder {
	switch k {
	case KindU16LE, KindU32LE:
		return binary.LittleEndian
	case KindU16BE, KindU32BE:
		return binary.BigEndian
	default:
		return nil
	}
}

func (k Kind) max() uint64 {
	return 1<<(8*uint(k.Width())) - 1
}

// Value is one integer tagged with its encoding.
type Value struct {
	Kind  Kind
	Value uint32
}

func (v Value) String() string {
	return fmt.Sprintf("%s=%#x", v.Kind, v.Value)
}

// ParseKind accepts u8, u16le, u16be, u32le, u32be. A bare u16 or u32 takes
// def as its byte order.
func ParseKind(raw string, def binary.ByteOrder) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "u16" || name == "u32" {
		if def == binary.LittleEndian {
			name += "le"
		} else {
			name += "be"
		}
	}
	k, ok := kindNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown kind %q", ErrBadLayout, raw)
	}
	return k, nil
}

// ParseKinds parses a comma-separated list such as "u8,u16be,u32le".
func ParseKinds(raw string, def binary.ByteOrder) ([]Kind, error) {
	parts := strings.Split(raw, ",")
	kinds := make([]Kind, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		k, err := ParseKind(p, def)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrBadLayout)
	}
	return kinds, nil
}

// ParseValue parses "kind=number". Numbers accept 0x, 0o and 0b prefixes.
func ParseValue(raw string, def binary.ByteOrder) (Value, error) {
	name, num, ok := strings.Cut(raw, "=")
	if !ok {
		return Value{}, fmt.Errorf("%w: %q missing '='", ErrBadLayout, raw)
	}
	k, err := ParseKind(name, def)
	if err != nil {
		return Value{}, err
	}
	n, err := strconv.ParseUint(strings.TrimSpace(num), 0, 32)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q: %v", ErrBadLayout, raw, err)
	}
	if n > k.max() {
		return Value{}, fmt.Errorf("%w: %d does not fit %s", ErrBadLayout, n, k)
	}
	return Value{Kind: k, Value: uint32(n)}, nil
}

// Encode writes vals in order. On error the values before the failing one
// remain written.
func Encode(b *bytebuf.Buffer, vals []Value) error {
	for i, v := range vals {
		if err := encodeOne(b, v); err != nil {
			return fmt.Errorf("layout: value %d (%s): %w", i, v, err)
		}
	}
	return nil
}

func encodeOne(b *bytebuf.Buffer, v Value) error {
	switch v.Kind {
	case KindU8:
		return b.WriteUint8(uint8(v.Value))
	case KindU16LE, KindU16BE:
		return b.WriteUint16(uint16(v.Value), v.Kind.Order())
	case KindU32LE, KindU32BE:
		return b.WriteUint32(v.Value, v.Kind.Order())
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrBadLayout, v.Kind)
	}
}

// Decode reads one value per kind from b.
func Decode(b *bytebuf.Buffer, kinds []Kind) ([]Value, error) {
	out := make([]Value, 0, len(kinds))
	for i, k := range kinds {
		var (
			n   uint32
			err error
		)
		switch k {
		case KindU8:
			var v uint8
			v, err = b.ReadUint8()
			n = uint32(v)
		case KindU16LE, KindU16BE:
			var v uint16
			v, err = b.ReadUint16(k.Order())
			n = uint32(v)
		case KindU32LE, KindU32BE:
			n, err = b.ReadUint32(k.Order())
		default:
			err = fmt.Errorf("%w: unknown kind %d", ErrBadLayout, k)
		}
		if err != nil {
			return out, fmt.Errorf("layout: field %d (%s): %w", i, k, err)
		}
		out = append(out, Value{Kind: k, Value: n})
	}
	return out, nil
}

// Size is the total encoded width of kinds.
func Size(kinds []Kind) int {
	total := 0
	for _, k := range kinds {
		total += k.Width()
	}
	return total
}
