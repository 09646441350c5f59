package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
)

func newListDevicesCmd(a *app) *cobra.Command {
	var groups, all bool
	cmd := &cobra.Command{
		Use:   "list-devices",
		Short: "Print classified input devices",
		Args:  usageArgs(cobra.NoArgs),
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

			devices, err := scanDevices(logger)
			if err != nil {
				return err
			}
			if !all {
				devices = linuxinput.Keyboards(devices)
			}
			if len(devices) == 0 {
				return fmt.Errorf("%w: no keyboards found (try --all, or check permissions on /dev/input)", errNothingToDo)
			}

			if groups {
				printGroups(a.stdout, linuxinput.GroupDevices(devices))
			} else {
				printDevices(a.stdout, devices)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&groups, "groups", false, "Group nodes that belong to the same physical device.")
	cmd.Flags().BoolVar(&all, "all", false, "Include mice, ghost and virtual devices.")
	return cmd
}

func describeDevice(dev linuxinput.ScannedDevice) string {
	c := dev.Classification
	tags := []string{string(c.Kind)}
	if c.Role != linuxinput.RoleNone {
		tags = append(tags, string(c.Role))
	}
	if c.Layout != "" {
		tags = append(tags, string(c.Layout))
	}
	tags = append(tags, fmt.Sprintf("%d keys", c.KeyCount))
	if c.IsMouse() {
		tags = append(tags, fmt.Sprintf("%d buttons", c.Mouse.Buttons))
	}
	if dev.IsVirtual {
		tags = append(tags, "virtual")
	}
	return fmt.Sprintf("%s: %s [%s]", dev.Path, dev.Name, strings.Join(tags, ", "))
}

func printDevices(w io.Writer, devices []linuxinput.ScannedDevice) {
	for _, dev := range devices {
		fmt.Fprintln(w, describeDevice(dev))
	}
}

func printGroups(w io.Writer, groups []linuxinput.DeviceGroup) {
	for _, group := range groups {
		fmt.Fprintf(w, "%s (%d nodes)\n", group.Key, len(group.Members))
		for _, member := range group.Members {
			marker := " "
			if member.Path == group.Primary.Path {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s\n", marker, describeDevice(member))
		}
	}
}
