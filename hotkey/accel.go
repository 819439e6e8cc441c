package hotkey

import (
	"fmt"
	"strings"
)

type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"option":  ModAlt,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"win":     ModSuper,
	"meta":    ModSuper,
}

var keyAliases = map[string]string{
	"esc":    "escape",
	"return": "enter",
	"spc":    "space",
}

// Keys lists every key name an accelerator may end with.
var Keys = func() []string {
	keys := []string{"space", "escape", "enter", "tab", "up", "down", "left", "right"}
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, string(c))
	}
	for i := 1; i <= 12; i++ {
		keys = append(keys, fmt.Sprintf("f%d", i))
	}
	return keys
}()

func knownKey(name string) bool {
	for _, k := range Keys {
		if k == name {
			return true
		}
	}
	return false
}

// Accelerator is a parsed shortcut such as "ctrl+shift+space".
type Accelerator struct {
	Mods Modifier
	Key  string
}

// ParseAccelerator parses "+"-separated modifier names followed by one key.
// Names are case-insensitive.
func ParseAccelerator(s string) (Accelerator, error) {
	var a Accelerator
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Accelerator{}, fmt.Errorf("accelerator %q: empty component", s)
		}
		if i < len(parts)-1 {
			m, ok := modifierNames[p]
			if !ok {
				return Accelerator{}, fmt.Errorf("accelerator %q: unknown modifier %q", s, p)
			}
			a.Mods |= m
			continue
		}
		if alias, ok := keyAliases[p]; ok {
			p = alias
		}
		if !knownKey(p) {
			return Accelerator{}, fmt.Errorf("accelerator %q: unknown key %q", s, p)
		}
		a.Key = p
	}
	return a, nil
}

func (a Accelerator) String() string {
	var parts []string
	for _, m := range []struct {
		mod  Modifier
		name string
	}{{ModCtrl, "ctrl"}, {ModShift, "shift"}, {ModAlt, "alt"}, {ModSuper, "super"}} {
		if a.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, a.Key), "+")
}
