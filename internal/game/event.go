// internal/game/event.go
package game

import (
	"fmt"
	"time"
)

// TicksPerSecond is the rate of the game's fixed update loop
const TicksPerSecond = 60

// EventKind identifies a game-state notification sent by the game adapter
type EventKind int

const (
	EventSeeScreen EventKind = iota
	EventLandOnScreen
	EventAddItems
	EventAchievement
	EventRavenFlee
	EventGameLoopStart
	EventWin
	EventRestart
	EventExitToMenu
	EventGiveUp
	EventUpdateTicks
)

var eventNames = map[EventKind]string{
	EventSeeScreen:     "SeeScreen",
	EventLandOnScreen:  "LandOnScreen",
	EventAddItems:      "AddItems",
	EventAchievement:   "Achievement",
	EventRavenFlee:     "RavenFlee",
	EventGameLoopStart: "GameLoopStart",
	EventWin:           "Win",
	EventRestart:       "Restart",
	EventExitToMenu:    "ExitToMenu",
	EventGiveUp:        "GiveUp",
	EventUpdateTicks:   "UpdateTicks",
}

// String returns the wire name of the event kind
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// ParseEventKind resolves a wire name into an event kind
func ParseEventKind(name string) (EventKind, bool) {
	for kind, n := range eventNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// Event is one observation of the running game. Only the fields relevant
// to Kind are meaningful.
type Event struct {
	Kind   EventKind
	Screen int    // SeeScreen, LandOnScreen
	Item   int    // AddItems
	Count  int    // AddItems
	Code   int    // Achievement
	Raven  string // RavenFlee
	Home   int    // RavenFlee
	Ending int    // Win
	Ticks  int    // GameLoopStart, UpdateTicks
}

// IsNewAttempt reports whether the event begins a fresh attempt, which
// invalidates all accumulated split progress.
func (e Event) IsNewAttempt() bool {
	return e.Kind == EventGameLoopStart || e.Kind == EventRestart
}

// GameTime converts the event's tick counter to a duration
func (e Event) GameTime() time.Duration {
	return time.Duration(e.Ticks) * time.Second / TicksPerSecond
}

// String renders a compact description for logs and the console
func (e Event) String() string {
	switch e.Kind {
	case EventSeeScreen, EventLandOnScreen:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Screen)
	case EventAddItems:
		return fmt.Sprintf("%s(item=%d, count=%d)", e.Kind, e.Item, e.Count)
	case EventAchievement:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Code)
	case EventRavenFlee:
		return fmt.Sprintf("%s(%s, home=%d)", e.Kind, e.Raven, e.Home)
	case EventWin:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Ending)
	case EventGameLoopStart, EventUpdateTicks:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Ticks)
	default:
		return e.Kind.String()
	}
}
