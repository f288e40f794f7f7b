package split

import (
	"encoding/xml"
	"testing"

	"github.com/jdharms/jumpking-autosplitter/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedUndo struct {
	index     int
	condition Condition
}

func recorder(calls *[]recordedUndo) UndoRegistrar {
	return UndoRegistrarFunc(func(index int, c Condition) {
		*calls = append(*calls, recordedUndo{index: index, condition: c})
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		kind    Kind
		display string
		wantErr error
	}{
		{name: "manual", xml: `<Split type="Manual" offset="0"/>`, kind: KindManual, display: "Manual"},
		{name: "screen", xml: `<Split type="Screen" offset="1" screen="12"/>`, kind: KindScreen, display: "Screen 12"},
		{name: "named screen", xml: `<Split type="Screen" offset="1" screen="12" name="Bargainburg"/>`, kind: KindScreen, display: "Bargainburg"},
		{name: "item", xml: `<Split type="Item" offset="2" item="7" count="2"/>`, kind: KindItem, display: "Item 7 x2"},
		{name: "raven", xml: `<Split type="Raven" offset="3" raven="Tower" home="20"/>`, kind: KindRaven, display: "Raven Tower (home 20)"},
		{name: "achievement", xml: `<Split type="Achievement" offset="4" code="5"/>`, kind: KindAchievement, display: "Achievement 5"},
		{name: "ending", xml: `<Split type="Ending" offset="5" ending="1"/>`, kind: KindEnding, display: "Ending 1"},
		{name: "missing type", xml: `<Split offset="0" screen="1"/>`, wantErr: ErrUnknownKind},
		{name: "unknown type", xml: `<Split type="Teleport" offset="0"/>`, wantErr: ErrUnknownKind},
		{name: "missing screen", xml: `<Split type="Screen" offset="0"/>`, wantErr: ErrMissingAttribute},
		{name: "missing raven name", xml: `<Split type="Raven" offset="0" home="2"/>`, wantErr: ErrMissingAttribute},
		{name: "missing item count", xml: `<Split type="Item" offset="0" item="3"/>`, wantErr: ErrMissingAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node Node
			require.NoError(t, xml.Unmarshal([]byte(tt.xml), &node))

			c, err := Parse(node)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, c.Kind())
			assert.Equal(t, tt.display, c.Name())
		})
	}
}

func TestParseRejectsInvalidNumbers(t *testing.T) {
	for _, raw := range []string{
		`<Split type="Screen" screen="abc"/>`,
		`<Split type="Item" item="1" count="0"/>`,
		`<Split type="Ending" ending="1.5"/>`,
	} {
		var node Node
		require.NoError(t, xml.Unmarshal([]byte(raw), &node))
		_, err := Parse(node)
		assert.Error(t, err, raw)
	}
}

func TestScreenSplitLanding(t *testing.T) {
	s := NewScreenSplit("", 3)
	var undo []recordedUndo

	s.Observe(game.Event{Kind: game.EventLandOnScreen, Screen: 2})
	assert.False(t, s.CheckSplit())

	s.Observe(game.Event{Kind: game.EventLandOnScreen, Screen: 3})
	assert.True(t, s.CheckSplit())
	assert.False(t, s.CheckSplit(), "arrival is consumed")

	s.OnSplit(0, recorder(&undo))
	assert.Empty(t, undo, "a confirmed landing never registers an undo candidate")
}

func TestScreenSplitSpeculativeUndo(t *testing.T) {
	s := NewScreenSplit("", 3)
	var undo []recordedUndo

	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
	require.True(t, s.CheckSplit())
	s.OnSplit(4, recorder(&undo))

	require.Len(t, undo, 1)
	assert.Equal(t, 4, undo[0].index)
	assert.Same(t, s, undo[0].condition)

	assert.Equal(t, UndoSkip, s.CheckUndo(), "no landing yet")

	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 2})
	assert.Equal(t, UndoSkip, s.CheckUndo(), "seeing a screen is not a landing")

	s.Observe(game.Event{Kind: game.EventLandOnScreen, Screen: 2})
	assert.Equal(t, UndoUndo, s.CheckUndo())
}

func TestScreenSplitSpeculativeConfirmed(t *testing.T) {
	for _, landed := range []int{3, 4} {
		s := NewScreenSplit("", 3)
		var undo []recordedUndo

		s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
		require.True(t, s.CheckSplit())
		s.OnSplit(0, recorder(&undo))
		require.Len(t, undo, 1)

		s.Observe(game.Event{Kind: game.EventLandOnScreen, Screen: landed})
		assert.Equal(t, UndoRemove, s.CheckUndo(), "landed on %d", landed)
	}
}

func TestScreenSplitRearmsAfterLeaving(t *testing.T) {
	s := NewScreenSplit("", 3)

	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
	assert.True(t, s.CheckSplit())
	assert.False(t, s.CheckSplit())

	s.Observe(game.Event{Kind: game.EventLandOnScreen, Screen: 2})
	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
	assert.True(t, s.CheckSplit())

	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
	s.Reset()
	assert.False(t, s.CheckSplit())
}

func TestScreenSplitDisarmedWhenLeftBeforeCheck(t *testing.T) {
	s := NewScreenSplit("", 3)

	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 2})
	assert.False(t, s.CheckSplit())

	s.Observe(game.Event{Kind: game.EventSeeScreen, Screen: 3})
	assert.True(t, s.CheckSplit())
}

func TestItemSplitAccumulates(t *testing.T) {
	s := NewItemSplit("", 7, 3)

	s.Observe(game.Event{Kind: game.EventAddItems, Item: 7, Count: 1})
	s.Observe(game.Event{Kind: game.EventAddItems, Item: 8, Count: 5})
	assert.False(t, s.CheckSplit())

	s.Observe(game.Event{Kind: game.EventAddItems, Item: 7, Count: 2})
	assert.Equal(t, 3, s.Collected())
	assert.True(t, s.CheckSplit())
	assert.False(t, s.CheckSplit(), "fires once")

	s.Reset()
	assert.Equal(t, 0, s.Collected())
	s.Observe(game.Event{Kind: game.EventAddItems, Item: 7, Count: 3})
	assert.True(t, s.CheckSplit())
}

func TestLatchedSplits(t *testing.T) {
	tests := []struct {
		name  string
		split Condition
		hit   game.Event
		miss  game.Event
	}{
		{
			name:  "raven",
			split: NewRavenSplit("", "Tower", 20),
			hit:   game.Event{Kind: game.EventRavenFlee, Raven: "Tower", Home: 20},
			miss:  game.Event{Kind: game.EventRavenFlee, Raven: "Tower", Home: 21},
		},
		{
			name:  "achievement",
			split: NewAchievementSplit("", 5),
			hit:   game.Event{Kind: game.EventAchievement, Code: 5},
			miss:  game.Event{Kind: game.EventAchievement, Code: 6},
		},
		{
			name:  "ending",
			split: NewEndingSplit("", 1),
			hit:   game.Event{Kind: game.EventWin, Ending: 1},
			miss:  game.Event{Kind: game.EventWin, Ending: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.split.Observe(tt.miss)
			assert.False(t, tt.split.CheckSplit())

			tt.split.Observe(tt.hit)
			assert.True(t, tt.split.CheckSplit())
			assert.False(t, tt.split.CheckSplit())

			tt.split.Observe(tt.hit)
			tt.split.Reset()
			assert.False(t, tt.split.CheckSplit())
			assert.Equal(t, UndoRemove, tt.split.CheckUndo())
		})
	}
}

func TestManualSplitNeverFires(t *testing.T) {
	s := NewManualSplit("Boss")
	s.Observe(game.Event{Kind: game.EventWin, Ending: 1})
	assert.False(t, s.CheckSplit())
	assert.Equal(t, "Boss", s.Name())
}

func TestConditionHashIgnoresNameAndProgress(t *testing.T) {
	a := NewItemSplit("first", 7, 2)
	b := NewItemSplit("second", 7, 2)
	assert.Equal(t, a.Hash(), b.Hash())

	b.Observe(game.Event{Kind: game.EventAddItems, Item: 7, Count: 1})
	assert.Equal(t, a.Hash(), b.Hash())

	assert.NotEqual(t, a.Hash(), NewItemSplit("", 7, 3).Hash())
	assert.NotEqual(t, a.Hash(), NewItemSplit("", 8, 2).Hash())
	assert.NotEqual(t, NewScreenSplit("", 3).Hash(), NewAchievementSplit("", 3).Hash())
	assert.NotEqual(t, NewRavenSplit("", "A", 1).Hash(), NewRavenSplit("", "B", 1).Hash())
}
