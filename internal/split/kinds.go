// internal/split/kinds.go
package split

import (
	"fmt"

	"github.com/jdharms/jumpking-autosplitter/internal/game"
)

// ManualSplit is a placeholder for a segment the runner splits by hand
type ManualSplit struct {
	name string
}

// NewManualSplit creates a manual split
func NewManualSplit(name string) *ManualSplit {
	return &ManualSplit{name: name}
}

func parseManual(n Node) (Condition, error) {
	return NewManualSplit(n.Name), nil
}

func (s *ManualSplit) Kind() Kind { return KindManual }

func (s *ManualSplit) Name() string {
	if s.name != "" {
		return s.name
	}
	return string(KindManual)
}

func (s *ManualSplit) Observe(game.Event) {}
func (s *ManualSplit) CheckSplit() bool { return false }
func (s *ManualSplit) OnSplit(previousIndex int, _ UndoRegistrar) {}
func (s *ManualSplit) CheckUndo() UndoResult { return UndoRemove }
func (s *ManualSplit) Reset() {}
func (s *ManualSplit) Hash() uint32 { return hashOf(KindManual) }
func (s *ManualSplit) Node() Node { return newNode(KindManual, s.name) }

// ItemSplit fires once the player has collected Count of an item
type ItemSplit struct {
	name      string
	item      int
	count     int
	collected int
	fired     bool
}

// NewItemSplit creates an item split
func NewItemSplit(name string, item, count int) *ItemSplit {
	return &ItemSplit{name: name, item: item, count: count}
}

func parseItem(n Node) (Condition, error) {
	item, err := n.requireInt("item")
	if err != nil {
		return nil, err
	}
	count, err := n.requireInt("count")
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("item split: count must be at least 1, got %d", count)
	}
	return NewItemSplit(n.Name, item, count), nil
}

func (s *ItemSplit) Kind() Kind { return KindItem }

// Collected returns how many matching items have been observed this attempt
func (s *ItemSplit) Collected() int { return s.collected }

func (s *ItemSplit) Name() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("Item %d x%d", s.item, s.count)
}

func (s *ItemSplit) Observe(ev game.Event) {
	if ev.Kind == game.EventAddItems && ev.Item == s.item && ev.Count > 0 {
		s.collected += ev.Count
	}
}

func (s *ItemSplit) CheckSplit() bool {
	if s.fired || s.collected < s.count {
		return false
	}
	s.fired = true
	return true
}

func (s *ItemSplit) OnSplit(previousIndex int, _ UndoRegistrar) {}
func (s *ItemSplit) CheckUndo() UndoResult { return UndoRemove }

func (s *ItemSplit) Reset() {
	s.collected = 0
	s.fired = false
}

func (s *ItemSplit) Hash() uint32 {
	return hashOf(KindItem, uint32(s.item), uint32(s.count))
}

func (s *ItemSplit) Node() Node {
	return newNode(KindItem, s.name).withInt("item", s.item).withInt("count", s.count)
}

// RavenSplit fires when the named raven flees from its home screen
type RavenSplit struct {
	name  string
	raven string
	home  int
	fled  latch
}

// NewRavenSplit creates a raven split
func NewRavenSplit(name, raven string, home int) *RavenSplit {
	return &RavenSplit{name: name, raven: raven, home: home}
}

func parseRaven(n Node) (Condition, error) {
	raven, err := n.requireString("raven")
	if err != nil {
		return nil, err
	}
	home, err := n.requireInt("home")
	if err != nil {
		return nil, err
	}
	return NewRavenSplit(n.Name, raven, home), nil
}

func (s *RavenSplit) Kind() Kind { return KindRaven }

func (s *RavenSplit) Name() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("Raven %s (home %d)", s.raven, s.home)
}

func (s *RavenSplit) Observe(ev game.Event) {
	if ev.Kind == game.EventRavenFlee && ev.Raven == s.raven && ev.Home == s.home {
		s.fled.trip()
	}
}

func (s *RavenSplit) CheckSplit() bool { return s.fled.take() }
func (s *RavenSplit) OnSplit(previousIndex int, _ UndoRegistrar) {}
func (s *RavenSplit) CheckUndo() UndoResult { return UndoRemove }
func (s *RavenSplit) Reset() { s.fled = latch{} }

func (s *RavenSplit) Hash() uint32 {
	return hashOf(KindRaven, hashString(s.raven), uint32(s.home))
}

func (s *RavenSplit) Node() Node {
	return newNode(KindRaven, s.name).with("raven", s.raven).withInt("home", s.home)
}

// AchievementSplit fires when the game unlocks the given achievement code
type AchievementSplit struct {
	name     string
	code     int
	unlocked latch
}

// NewAchievementSplit creates an achievement split
func NewAchievementSplit(name string, code int) *AchievementSplit {
	return &AchievementSplit{name: name, code: code}
}

func parseAchievement(n Node) (Condition, error) {
	code, err := n.requireInt("code")
	if err != nil {
		return nil, err
	}
	return NewAchievementSplit(n.Name, code), nil
}

func (s *AchievementSplit) Kind() Kind { return KindAchievement }

func (s *AchievementSplit) Name() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("Achievement %d", s.code)
}

func (s *AchievementSplit) Observe(ev game.Event) {
	if ev.Kind == game.EventAchievement && ev.Code == s.code {
		s.unlocked.trip()
	}
}

func (s *AchievementSplit) CheckSplit() bool { return s.unlocked.take() }
func (s *AchievementSplit) OnSplit(previousIndex int, _ UndoRegistrar) {}
func (s *AchievementSplit) CheckUndo() UndoResult { return UndoRemove }
func (s *AchievementSplit) Reset() { s.unlocked = latch{} }
func (s *AchievementSplit) Hash() uint32 { return hashOf(KindAchievement, uint32(s.code)) }

func (s *AchievementSplit) Node() Node {
	return newNode(KindAchievement, s.name).withInt("code", s.code)
}

// EndingSplit fires when the player reaches the given ending
type EndingSplit struct {
	name    string
	ending  int
	reached latch
}

// NewEndingSplit creates an ending split
func NewEndingSplit(name string, ending int) *EndingSplit {
	return &EndingSplit{name: name, ending: ending}
}

func parseEnding(n Node) (Condition, error) {
	ending, err := n.requireInt("ending")
	if err != nil {
		return nil, err
	}
	return NewEndingSplit(n.Name, ending), nil
}

func (s *EndingSplit) Kind() Kind { return KindEnding }

func (s *EndingSplit) Name() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("Ending %d", s.ending)
}

func (s *EndingSplit) Observe(ev game.Event) {
	if ev.Kind == game.EventWin && ev.Ending == s.ending {
		s.reached.trip()
	}
}

func (s *EndingSplit) CheckSplit() bool { return s.reached.take() }
func (s *EndingSplit) OnSplit(previousIndex int, _ UndoRegistrar) {}
func (s *EndingSplit) CheckUndo() UndoResult { return UndoRemove }
func (s *EndingSplit) Reset() { s.reached = latch{} }
func (s *EndingSplit) Hash() uint32 { return hashOf(KindEnding, uint32(s.ending)) }

func (s *EndingSplit) Node() Node {
	return newNode(KindEnding, s.name).withInt("ending", s.ending)
}
