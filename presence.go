package skemajson

import "strings"

// Presence is the bit flag collected per decoded value.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Value appeared in the input.
	PresenceWasNull                             // Value was null.
	PresenceDefaultApplied                      // Value came from a default or implicit null.
)

func (p Presence) String() string {
	if p == 0 {
		return "none"
	}
	var parts []string
	if p&PresenceSeen != 0 {
		parts = append(parts, "seen")
	}
	if p&PresenceWasNull != 0 {
		parts = append(parts, "null")
	}
	if p&PresenceDefaultApplied != 0 {
		parts = append(parts, "default")
	}
	return strings.Join(parts, "|")
}

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Has reports whether any of the flags in want are set at path.
func (pm PresenceMap) Has(path string, want Presence) bool { return pm[path]&want != 0 }

type presenceCollector struct {
	opt PresenceOpt
	pm  PresenceMap
}

func (c *presenceCollector) reset() {
	if !c.opt.Collect {
		return
	}
	c.pm = make(PresenceMap)
}

func (c *presenceCollector) mark(path string, p Presence) {
	if c.pm == nil {
		return
	}
	if path == "" {
		path = "/"
	}
	if !c.include(path) {
		return
	}
	c.pm[path] |= p
}

func (c *presenceCollector) include(path string) bool {
	if len(c.opt.Include) > 0 {
		ok := false
		for _, p := range c.opt.Include {
			if strings.HasPrefix(path, p) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, p := range c.opt.Exclude {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}
