package main

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/antbuffers/internal/config"
	"github.com/danmuck/antbuffers/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

// app carries the resolved configuration into each command.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
	order      binary.ByteOrder
}

func main() {
	logging.ConfigureRuntime()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "antbuf: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "antbuf",
		Short: "Build and inspect [type][length][payload] frames",
		Long: `antbuf drives the fixed-storage buffer primitives from the shell.

Frames are [type:1][length:1][payload:0..255]. Integers are unsigned
8, 16 or 32 bits, little- or big-endian.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (trace|debug|info|warn|error|off)")

	rootCmd.AddCommand(
		frameCmd(a),
		parseCmd(a),
		streamCmd(a),
		encodeCmd(a),
		decodeCmd(a),
		configCmd(a),
		versionCmd(),
	)
	return rootCmd
}

func (a *app) load() error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
		log.Debug().Str("path", a.configPath).Msg("loaded antbuf config")
	}
	level := a.cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	if level != "" && !logging.SetLevel(level) {
		return fmt.Errorf("unknown log level %q", level)
	}
	order, err := config.ParseByteOrder(a.cfg.Buffer.ByteOrder)
	if err != nil {
		return err
	}
	a.order = order
	return nil
}

// scratch returns a fresh array sized by buffer.capacity.
func (a *app) scratch() []byte {
	return make([]byte, a.cfg.Buffer.Capacity)
}

// parseHex accepts hex with optional whitespace, ':' or '-' separators and
// an optional 0x prefix.
func parseHex(parts ...string) ([]byte, error) {
	var sb strings.Builder
	for _, p := range parts {
		p = strings.TrimPrefix(strings.TrimSpace(p), "0x")
		for _, r := range p {
			switch r {
			case ' ', '\t', '\n', '\r', ':', '-':
				continue
			}
			sb.WriteRune(r)
		}
	}
	out, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return out, nil
}
