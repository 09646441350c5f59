package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and validate keymap profiles",
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a profile document against the profile schema",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			profile, err := keymap.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s: profile %q version %d, %d mappings OK\n", args[0], profile.Name, profile.Version, profile.Len())
			return nil
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print the mappings of a profile (default: the active profile)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			name := cfg.Profiles.Active
			if len(args) == 1 {
				name = args[0]
			}

			profile, err := keymap.NewStore(cfg.Profiles.Dir, nopLogger{}).Load(name)
			if err != nil {
				return err
			}
			switch format {
			case "text":
				printProfile(a.stdout, profile)
				return nil
			case "yaml":
				return yaml.NewEncoder(a.stdout).Encode(profileView(profile))
			default:
				return &usageError{err: fmt.Errorf("invalid --output %q (expected text|yaml)", format)}
			}
		},
	}
	showCmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text|yaml.")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the profiles in the profile directory",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			names, err := keymap.NewStore(cfg.Profiles.Dir, nopLogger{}).List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("%w: no profiles in %s", errNothingToDo, cfg.Profiles.Dir)
			}
			for _, name := range names {
				marker := " "
				if name == cfg.Profiles.Active {
					marker = "*"
				}
				fmt.Fprintf(a.stdout, "%s %s\n", marker, name)
			}
			return nil
		},
	}

	cmd.AddCommand(validateCmd, showCmd, listCmd)
	return cmd
}

type mappingView struct {
	Identity    string   `yaml:"identity"`
	Kind        string   `yaml:"kind"`
	Action      string   `yaml:"action"`
	Value       any      `yaml:"value,omitempty"`
	Modifiers   []string `yaml:"modifiers,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

type profileDocView struct {
	Name        string        `yaml:"name"`
	Version     int           `yaml:"version"`
	Description string        `yaml:"description,omitempty"`
	Mappings    []mappingView `yaml:"mappings"`
}

func profileView(p *keymap.Profile) profileDocView {
	view := profileDocView{Name: p.Name, Version: p.Version, Description: p.Description}
	for _, identity := range p.Identities() {
		action, _ := p.Lookup(identity)
		view.Mappings = append(view.Mappings, mappingView{
			Identity:    identity,
			Kind:        string(action.Kind),
			Action:      action.Action,
			Value:       action.Value,
			Modifiers:   action.Modifiers,
			Description: action.Description,
		})
	}
	return view
}

func printProfile(w io.Writer, p *keymap.Profile) {
	fmt.Fprintf(w, "%s (version %d)", p.Name, p.Version)
	if p.Description != "" {
		fmt.Fprintf(w, ": %s", p.Description)
	}
	fmt.Fprintln(w)
	for _, identity := range p.Identities() {
		action, _ := p.Lookup(identity)
		line := fmt.Sprintf("  %-24s %s", identity, action)
		if value, ok := action.StringValue(); ok {
			line += " = " + value
		}
		fmt.Fprintln(w, line)
	}
}

// profileEntrySkeleton renders a keymaps entry for a captured identity.
func profileEntrySkeleton(identity string) string {
	parts := strings.Split(identity, "+")
	key := parts[len(parts)-1]
	mods := make([]string, 0, len(parts)-1)
	for _, mod := range parts[:len(parts)-1] {
		mods = append(mods, fmt.Sprintf("%q", strings.ToLower(mod)))
	}

	entry := fmt.Sprintf(`"%s": {"kind": "command", "action": "execute", "value": "notify-send %s"`, key, identity)
	if len(mods) > 0 {
		entry += `, "modifiers": [` + strings.Join(mods, ", ") + `]`
	}
	return entry + "}"
}
