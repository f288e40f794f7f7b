// internal/split/screen.go
package split

import (
	"fmt"

	"github.com/jdharms/jumpking-autosplitter/internal/game"
)

// ScreenSplit fires when the player arrives on the target screen.
//
// Seeing the screen is enough to fire, but a split fired that way is
// speculative: the player may fall back down before landing. In that case
// the split registers itself as the undo candidate and waits for the next
// landing to decide.
type ScreenSplit struct {
	name   string
	target int

	onTarget    bool
	arrived     latch
	confirmed   bool
	speculative bool

	landedSinceSplit bool
	landedScreen     int
}

// NewScreenSplit creates a screen split
func NewScreenSplit(name string, screen int) *ScreenSplit {
	return &ScreenSplit{name: name, target: screen}
}

func parseScreen(n Node) (Condition, error) {
	screen, err := n.requireInt("screen")
	if err != nil {
		return nil, err
	}
	return NewScreenSplit(n.Name, screen), nil
}

func (s *ScreenSplit) Kind() Kind { return KindScreen }

// Target returns the screen index that triggers the split
func (s *ScreenSplit) Target() int { return s.target }

func (s *ScreenSplit) Name() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("Screen %d", s.target)
}

func (s *ScreenSplit) Observe(ev game.Event) {
	if ev.Kind != game.EventSeeScreen && ev.Kind != game.EventLandOnScreen {
		return
	}
	landed := ev.Kind == game.EventLandOnScreen
	if landed {
		s.landedSinceSplit = true
		s.landedScreen = ev.Screen
	}

	if ev.Screen != s.target {
		s.onTarget = false
		s.arrived = latch{}
		s.confirmed = false
		return
	}
	if !s.onTarget {
		s.onTarget = true
		s.arrived.trip()
	}
	if landed {
		s.confirmed = true
	}
}

func (s *ScreenSplit) CheckSplit() bool {
	if !s.arrived.take() {
		return false
	}
	s.speculative = !s.confirmed
	return true
}

func (s *ScreenSplit) OnSplit(previousIndex int, undo UndoRegistrar) {
	s.landedSinceSplit = false
	if s.speculative && undo != nil {
		undo.SetUndoSplit(previousIndex, s)
	}
	s.speculative = false
}

// CheckUndo waits for the next landing. Landing at or above the target
// confirms progress; landing below it means the player fell back.
func (s *ScreenSplit) CheckUndo() UndoResult {
	if !s.landedSinceSplit {
		return UndoSkip
	}
	if s.landedScreen >= s.target {
		return UndoRemove
	}
	return UndoUndo
}

func (s *ScreenSplit) Reset() {
	s.onTarget = false
	s.arrived = latch{}
	s.confirmed = false
	s.speculative = false
	s.landedSinceSplit = false
	s.landedScreen = 0
}

func (s *ScreenSplit) Hash() uint32 {
	return hashOf(KindScreen, uint32(s.target))
}

func (s *ScreenSplit) Node() Node {
	return newNode(KindScreen, s.name).withInt("screen", s.target)
}
