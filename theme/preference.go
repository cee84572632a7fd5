// Package theme tracks the user's light/dark/system preference and resolves
// it against the operating system's color scheme into a presentation mode.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// StorageKey is the persisted key holding an explicit preference.
const StorageKey = "qrcodeTheme"

// ErrUnknownPreference is returned for anything other than light, dark or
// system.
var ErrUnknownPreference = errors.New("unknown theme preference")

// Preference is the user's durable three-way choice.
type Preference string

const (
	Light  Preference = "light"
	Dark   Preference = "dark"
	System Preference = "system"
)

// ParsePreference accepts "light", "dark" or "system" in any case.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(strings.ToLower(strings.TrimSpace(s))); p {
	case Light, Dark, System:
		return p, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPreference, s)
}

// Mode is the binary presentation mode applied to the page.
type Mode int

const (
	ModeLight Mode = iota
	ModeDark
)

func (m Mode) String() string {
	if m == ModeDark {
		return "dark"
	}
	return "light"
}

// IsDark reports whether m is ModeDark.
func (m Mode) IsDark() bool { return m == ModeDark }

// Resolve returns ModeDark when pref is Dark, or pref is System and the OS
// prefers dark. Every other combination is ModeLight.
func Resolve(pref Preference, osDark bool) Mode {
	if pref == Dark || (pref == System && osDark) {
		return ModeDark
	}
	return ModeLight
}
