package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/Mr-Niloy/ColdKeys/internal/adapters/linuxinput"
	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// configuredSelection resolves pre-configured device paths against a scan. Unknown paths
// are logged and skipped.
func configuredSelection(paths []string, devices []linuxinput.ScannedDevice, logger keymap.Logger) []linuxinput.ScannedDevice {
	selected := make([]linuxinput.ScannedDevice, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true
		dev, ok := linuxinput.Find(devices, path)
		if !ok {
			logger.Warn("Configured device not found", "path", path)
			continue
		}
		selected = append(selected, dev)
	}
	return selected
}

// promptSelection lists the keyboards and reads a choice: 1-based numbers separated by
// commas, or a name fragment. An empty answer reuses the remembered selection. Invalid
// answers re-prompt; end of input returns errNothingToDo.
func promptSelection(in io.Reader, out io.Writer, devices []linuxinput.ScannedDevice, remembered []string) ([]linuxinput.ScannedDevice, error) {
	fmt.Fprintln(out, "Available keyboards:")
	for i, dev := range devices {
		fmt.Fprintf(out, "  %d) %s\n", i+1, describeDevice(dev))
	}

	defaults := configuredSelection(remembered, devices, nopLogger{})
	if len(defaults) > 0 {
		fmt.Fprintf(out, "Press Enter to reuse the last selection: %s\n", selectionNumbers(defaults, devices))
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Select keyboards (e.g. 1,3 or part of a name): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: no devices selected", errNothingToDo)
		}

		answer := strings.TrimSpace(scanner.Text())
		if answer == "" && len(defaults) > 0 {
			return defaults, nil
		}
		selected, err := parseSelection(answer, devices)
		if err != nil {
			fmt.Fprintf(out, "  %v\n", err)
			continue
		}
		return selected, nil
	}
}

func parseSelection(answer string, devices []linuxinput.ScannedDevice) ([]linuxinput.ScannedDevice, error) {
	if answer == "" {
		return nil, fmt.Errorf("enter at least one device")
	}

	tokens := strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' })
	numeric := true
	for _, token := range tokens {
		if _, err := strconv.Atoi(token); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		return selectByNumber(tokens, devices)
	}
	return selectByName(answer, devices)
}

func selectByNumber(tokens []string, devices []linuxinput.ScannedDevice) ([]linuxinput.ScannedDevice, error) {
	selected := make([]linuxinput.ScannedDevice, 0, len(tokens))
	seen := make(map[int]bool, len(tokens))
	for _, token := range tokens {
		n, _ := strconv.Atoi(token)
		if n < 1 || n > len(devices) {
			return nil, fmt.Errorf("%d is out of range (1-%d)", n, len(devices))
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		selected = append(selected, devices[n-1])
	}
	return selected, nil
}

// selectByName picks every device tied for the best fuzzy score, so identical units
// attached together are selected as one.
func selectByName(fragment string, devices []linuxinput.ScannedDevice) ([]linuxinput.ScannedDevice, error) {
	names := make([]string, len(devices))
	for i, dev := range devices {
		names[i] = dev.Name
	}

	matches := fuzzy.Find(fragment, names)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no keyboard matches %q", fragment)
	}
	best := matches[0].Score
	var selected []linuxinput.ScannedDevice
	for _, m := range matches {
		if m.Score != best {
			break
		}
		selected = append(selected, devices[m.Index])
	}
	return selected, nil
}

func selectionNumbers(selected, devices []linuxinput.ScannedDevice) string {
	var numbers []string
	for _, sel := range selected {
		for i, dev := range devices {
			if dev.Path == sel.Path {
				numbers = append(numbers, strconv.Itoa(i+1))
				break
			}
		}
	}
	return strings.Join(numbers, ",")
}

func selectionPaths(selected []linuxinput.ScannedDevice) []string {
	paths := make([]string, 0, len(selected))
	for _, dev := range selected {
		paths = append(paths, dev.Path)
	}
	return paths
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
