package main

import (
	"fmt"

	"github.com/danmuck/antbuffers/internal/config"
	"github.com/spf13/cobra"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate antbuf config files",
	}
	cmd.AddCommand(configInitCmd(), configValidateCmd(), configShowCmd(a))
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config template with the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote config template to %s\n", output)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "antbuf.toml", "output path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Load and validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "validated %s\n", args[0])
			return err
		},
	}
}

func configShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"buffer.capacity=%d buffer.byte_order=%s buffer.queue_depth=%d log.level=%s\n",
				c.Buffer.Capacity, c.Buffer.ByteOrder, c.Buffer.QueueDepth, c.Log.Level)
			return err
		},
	}
}
