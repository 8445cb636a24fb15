package config

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	ByteOrderBig    = "big"
	ByteOrderLittle = "little"

	minCapacity = 2
	maxCapacity = 1 << 16
)

// Config is the antbuf runtime configuration.
type Config struct {
	Buffer BufferConfig
	Log    LogConfig
}

type BufferConfig struct {
	// Capacity sizes the scratch array shared by frame build and parse.
	Capacity int
	// ByteOrder is the default order for 16/32-bit values.
	ByteOrder string
	// QueueDepth is the number of decoded frames the inbox holds.
	QueueDepth int
}

type LogConfig struct {
	Level string
}

// antbuf config.toml key mapping.
type fileConfig struct {
	Buffer struct {
		Capacity   int    `toml:"capacity"`
		ByteOrder  string `toml:"byte_order"`
		QueueDepth int    `toml:"queue_depth"`
	} `toml:"buffer"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Buffer: BufferConfig{
			Capacity:   257,
			ByteOrder:  ByteOrderBig,
			QueueDepth: 16,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load overlays the TOML file at path on DefaultConfig and validates the
// result. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load antbuf config: %w", err)
	}

	if meta.IsDefined("buffer", "capacity") {
		cfg.Buffer.Capacity = raw.Buffer.Capacity
	}
	if meta.IsDefined("buffer", "byte_order") {
		cfg.Buffer.ByteOrder = strings.ToLower(strings.TrimSpace(raw.Buffer.ByteOrder))
	}
	if meta.IsDefined("buffer", "queue_depth") {
		cfg.Buffer.QueueDepth = raw.Buffer.QueueDepth
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("antbuf config: unknown key %q", undecoded[0].String())
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Buffer.Capacity < minCapacity || cfg.Buffer.Capacity > maxCapacity {
		return fmt.Errorf("buffer.capacity must be in [%d,%d], got %d", minCapacity, maxCapacity, cfg.Buffer.Capacity)
	}
	if _, err := ParseByteOrder(cfg.Buffer.ByteOrder); err != nil {
		return fmt.Errorf("buffer.byte_order invalid: %w", err)
	}
	if cfg.Buffer.QueueDepth < 1 {
		return fmt.Errorf("buffer.queue_depth must be at least 1, got %d", cfg.Buffer.QueueDepth)
	}
	return nil
}

// ParseByteOrder maps "big"/"little" (and the be/le shorthands) to an order.
func ParseByteOrder(raw string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ByteOrderBig, "be":
		return binary.BigEndian, nil
	case ByteOrderLittle, "le":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", raw)
	}
}
