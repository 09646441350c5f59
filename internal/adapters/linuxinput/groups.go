package linuxinput

import (
	"strings"
)

// DeviceGroup is the set of nodes that belong to one physical unit.
type DeviceGroup struct {
	Key     string
	Members []ScannedDevice
	Primary ScannedDevice
}

var subInterfaceSuffixes = []string{
	"consumer control",
	"system control",
	"wireless radio control",
	"keyboard",
	"mouse",
}

// NormalizeName lowercases a device name and strips sub-interface suffixes.
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for {
		stripped := false
		for _, suffix := range subInterfaceSuffixes {
			if strings.HasSuffix(normalized, " "+suffix) {
				normalized = strings.TrimSpace(strings.TrimSuffix(normalized, suffix))
				stripped = true
			}
		}
		if !stripped {
			return normalized
		}
	}
}

// PhysToken drops the trailing /inputN interface index from a physical location.
func PhysToken(phys string) string {
	phys = strings.TrimSpace(phys)
	idx := strings.LastIndex(phys, "/input")
	if idx < 0 {
		return phys
	}
	suffix := phys[idx+len("/input"):]
	if suffix == "" || strings.Trim(suffix, "0123456789") != "" {
		return phys
	}
	return phys[:idx]
}

// GroupDevices unions devices sharing a normalized name or physical token. Groups are
// returned in order of their first member.
func GroupDevices(devices []ScannedDevice) []DeviceGroup {
	parent := make([]int, len(devices))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	byName := make(map[string]int)
	byPhys := make(map[string]int)
	for i, dev := range devices {
		if name := NormalizeName(dev.Name); name != "" {
			if first, ok := byName[name]; ok {
				union(first, i)
			} else {
				byName[name] = i
			}
		}
		if token := PhysToken(dev.Phys); token != "" {
			if first, ok := byPhys[token]; ok {
				union(first, i)
			} else {
				byPhys[token] = i
			}
		}
	}

	order := make([]int, 0)
	members := make(map[int][]ScannedDevice)
	for i, dev := range devices {
		root := find(i)
		if _, ok := members[root]; !ok {
			order = append(order, root)
		}
		members[root] = append(members[root], dev)
	}

	groups := make([]DeviceGroup, 0, len(order))
	for _, root := range order {
		group := DeviceGroup{Members: members[root]}
		group.Primary = groupPrimary(group.Members)
		group.Key = PhysToken(group.Members[0].Phys)
		if group.Key == "" {
			group.Key = NormalizeName(group.Members[0].Name)
		}
		groups = append(groups, group)
	}
	return groups
}

func groupPrimary(members []ScannedDevice) ScannedDevice {
	for _, m := range members {
		if m.Classification.Role == RolePrimary {
			return m
		}
	}
	for _, m := range members {
		if m.Classification.IsKeyboard() {
			return m
		}
	}
	for _, m := range members {
		if m.Classification.IsMouse() {
			return m
		}
	}
	return members[0]
}
