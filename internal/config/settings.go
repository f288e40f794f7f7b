package config

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Toggle names as they appear in the settings document
const (
	ToggleAutoStartTimer = "AutoStartTimer"
	ToggleAutoResetTimer = "AutoResetTimer"
	ToggleUndoSplit      = "UndoSplit"
)

// Toggles lists the toggle names in document order
var Toggles = []string{ToggleAutoStartTimer, ToggleAutoResetTimer, ToggleUndoSplit}

const settingsHashSeed uint32 = 0x6546B5C

var (
	hashAutoStartTimer = toggleHash("isAutoStartTimer")
	hashAutoResetTimer = toggleHash("isAutoResetTimer")
	hashUndoSplit      = toggleHash("isUndoSplit")
)

func toggleHash(name string) uint32 {
	return uint32(xxhash.Sum64String(name))
}

// Settings holds the global autosplitter toggles
type Settings struct {
	AutoStartTimer bool // start the timer when the game loop starts
	AutoResetTimer bool // reset the timer when the game restarts
	UndoSplit      bool // undo screen splits the player did not land on
}

// SettingsNode is the persisted form of Settings. Values are kept as text
// so that unparsable entries fall back to false instead of failing the load.
type SettingsNode struct {
	XMLName        xml.Name `xml:"Settings"`
	AutoStartTimer string   `xml:"AutoStartTimer,omitempty"`
	AutoResetTimer string   `xml:"AutoResetTimer,omitempty"`
	UndoSplit      string   `xml:"UndoSplit,omitempty"`
}

// LoadSettings decodes a settings node. A nil node yields all toggles off.
func LoadSettings(node *SettingsNode) Settings {
	if node == nil {
		return Settings{}
	}
	return Settings{
		AutoStartTimer: parseToggle(node.AutoStartTimer),
		AutoResetTimer: parseToggle(node.AutoResetTimer),
		UndoSplit:      parseToggle(node.UndoSplit),
	}
}

func parseToggle(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

func formatToggle(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// Node encodes the settings for persistence
func (s Settings) Node() *SettingsNode {
	return &SettingsNode{
		AutoStartTimer: formatToggle(s.AutoStartTimer),
		AutoResetTimer: formatToggle(s.AutoResetTimer),
		UndoSplit:      formatToggle(s.UndoSplit),
	}
}

// Hash returns the toggles' contribution to the configuration fingerprint
func (s Settings) Hash() uint32 {
	hash := settingsHashSeed
	if s.AutoStartTimer {
		hash ^= hashAutoStartTimer
	}
	if s.AutoResetTimer {
		hash ^= hashAutoResetTimer
	}
	if s.UndoSplit {
		hash ^= hashUndoSplit
	}
	return hash
}

// Set changes a toggle by name
func (s *Settings) Set(name string, value bool) error {
	switch name {
	case ToggleAutoStartTimer:
		s.AutoStartTimer = value
	case ToggleAutoResetTimer:
		s.AutoResetTimer = value
	case ToggleUndoSplit:
		s.UndoSplit = value
	default:
		return fmt.Errorf("unknown setting '%s'", name)
	}
	return nil
}

// Get reads a toggle by name
func (s Settings) Get(name string) (bool, error) {
	switch name {
	case ToggleAutoStartTimer:
		return s.AutoStartTimer, nil
	case ToggleAutoResetTimer:
		return s.AutoResetTimer, nil
	case ToggleUndoSplit:
		return s.UndoSplit, nil
	default:
		return false, fmt.Errorf("unknown setting '%s'", name)
	}
}
