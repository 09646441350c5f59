package linuxinput

import (
	"sort"

	evdev "github.com/holoplot/go-evdev"
)

// Capabilities is the fixed-shape record of what a device reports, read once at scan time.
type Capabilities struct {
	keys   map[evdev.EvCode]struct{}
	rels   map[evdev.EvCode]struct{}
	leds   map[evdev.EvCode]struct{}
	HasAbs bool
}

func NewCapabilities(keys, rels, leds []evdev.EvCode, hasAbs bool) Capabilities {
	return Capabilities{
		keys:   codeSet(keys),
		rels:   codeSet(rels),
		leds:   codeSet(leds),
		HasAbs: hasAbs,
	}
}

// CapabilitiesOf reads the capability bitmasks of an open device.
func CapabilitiesOf(dev Device) Capabilities {
	return NewCapabilities(
		dev.CapableEvents(evdev.EV_KEY),
		dev.CapableEvents(evdev.EV_REL),
		dev.CapableEvents(evdev.EV_LED),
		len(dev.CapableEvents(evdev.EV_ABS)) > 0,
	)
}

func codeSet(codes []evdev.EvCode) map[evdev.EvCode]struct{} {
	set := make(map[evdev.EvCode]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

func (c Capabilities) HasKey(code evdev.EvCode) bool {
	_, ok := c.keys[code]
	return ok
}

func (c Capabilities) HasAnyKey(codes ...evdev.EvCode) bool {
	for _, code := range codes {
		if c.HasKey(code) {
			return true
		}
	}
	return false
}

func (c Capabilities) HasAllKeys(codes ...evdev.EvCode) bool {
	for _, code := range codes {
		if !c.HasKey(code) {
			return false
		}
	}
	return true
}

func (c Capabilities) KeyCount() int {
	return len(c.keys)
}

func (c Capabilities) HasRel(code evdev.EvCode) bool {
	_, ok := c.rels[code]
	return ok
}

func (c Capabilities) HasLED(code evdev.EvCode) bool {
	_, ok := c.leds[code]
	return ok
}

// Keys returns the key codes in ascending order.
func (c Capabilities) Keys() []evdev.EvCode {
	return sortedCodes(c.keys)
}

func sortedCodes(values map[evdev.EvCode]struct{}) []evdev.EvCode {
	codes := make([]evdev.EvCode, 0, len(values))
	for code := range values {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		return codes[i] < codes[j]
	})
	return codes
}
