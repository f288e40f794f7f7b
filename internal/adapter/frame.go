// internal/adapter/frame.go
package adapter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jdharms/jumpking-autosplitter/internal/game"
)

var (
	// ErrUnknownEvent is returned for frames naming an event that does not exist
	ErrUnknownEvent = errors.New("unknown event")
	// ErrMissingField is returned when a frame lacks a field its event requires
	ErrMissingField = errors.New("missing field")
)

// Frame is the JSON text message the game mod sends for every notification
type Frame struct {
	Event  string  `json:"event"`
	Index  *int    `json:"index,omitempty"`
	Item   *int    `json:"item,omitempty"`
	Count  *int    `json:"count,omitempty"`
	Code   *int    `json:"code,omitempty"`
	Raven  *string `json:"raven,omitempty"`
	Home   *int    `json:"home,omitempty"`
	Ending *int    `json:"ending,omitempty"`
	Ticks  *int    `json:"ticks,omitempty"`
}

// DecodeFrame parses a frame into a game event
func DecodeFrame(data []byte) (game.Event, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return game.Event{}, fmt.Errorf("failed to parse frame: %w", err)
	}

	kind, ok := game.ParseEventKind(f.Event)
	if !ok {
		return game.Event{}, fmt.Errorf("%w '%s'", ErrUnknownEvent, f.Event)
	}

	ev := game.Event{Kind: kind}
	var err error
	switch kind {
	case game.EventSeeScreen, game.EventLandOnScreen:
		ev.Screen, err = requireField(f.Event, "index", f.Index)
	case game.EventAddItems:
		if ev.Item, err = requireField(f.Event, "item", f.Item); err == nil {
			ev.Count, err = requireField(f.Event, "count", f.Count)
		}
	case game.EventAchievement:
		ev.Code, err = requireField(f.Event, "code", f.Code)
	case game.EventRavenFlee:
		if f.Raven == nil {
			err = fmt.Errorf("%s: %w 'raven'", f.Event, ErrMissingField)
		} else {
			ev.Raven = *f.Raven
			ev.Home, err = requireField(f.Event, "home", f.Home)
		}
	case game.EventWin:
		ev.Ending, err = requireField(f.Event, "ending", f.Ending)
	case game.EventGameLoopStart, game.EventUpdateTicks:
		ev.Ticks, err = requireField(f.Event, "ticks", f.Ticks)
	}
	if err != nil {
		return game.Event{}, err
	}
	return ev, nil
}

func requireField(event, field string, v *int) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%s: %w '%s'", event, ErrMissingField, field)
	}
	return *v, nil
}

// EncodeFrame renders a game event in the wire format
func EncodeFrame(ev game.Event) ([]byte, error) {
	f := Frame{Event: ev.Kind.String()}
	switch ev.Kind {
	case game.EventSeeScreen, game.EventLandOnScreen:
		f.Index = &ev.Screen
	case game.EventAddItems:
		f.Item, f.Count = &ev.Item, &ev.Count
	case game.EventAchievement:
		f.Code = &ev.Code
	case game.EventRavenFlee:
		f.Raven, f.Home = &ev.Raven, &ev.Home
	case game.EventWin:
		f.Ending = &ev.Ending
	case game.EventGameLoopStart, game.EventUpdateTicks:
		f.Ticks = &ev.Ticks
	}
	return json.Marshal(f)
}
