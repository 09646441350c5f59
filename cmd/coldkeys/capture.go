package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCaptureCmd(a *app) *cobra.Command {
	var (
		device  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Print the key identity of the next key press",
		Long: `Waits for the next key press and prints its identity (for example CTRL+KEY_F13)
together with a profile entry skeleton. Devices are read without being grabbed.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closer, err := newLogger(cfg, a.stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			if device == "" && len(cfg.Devices) == 1 {
				device = cfg.Devices[0]
			}
			fmt.Fprintln(a.stderr, "Press a key (modifiers allowed)...")
			identity, path, err := captureKey(cmd.Context(), device, timeout, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "%s (from %s)\n", identity, path)
			fmt.Fprintln(a.stdout, profileEntrySkeleton(identity))
			return nil
		},
	}
	cmd.Flags().StringVarP(&device, "device", "d", "", "Only listen on this device path.")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long to wait for a key press.")
	return cmd
}
