// internal/split/condition.go
package split

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/jdharms/jumpking-autosplitter/internal/game"
)

// Kind is the tag stored in the "type" attribute of a split node
type Kind string

const (
	KindManual      Kind = "Manual"
	KindScreen      Kind = "Screen"
	KindItem        Kind = "Item"
	KindRaven       Kind = "Raven"
	KindAchievement Kind = "Achievement"
	KindEnding      Kind = "Ending"
)

// Kinds lists every supported kind in display order
var Kinds = []Kind{KindManual, KindScreen, KindItem, KindRaven, KindAchievement, KindEnding}

// UndoResult is the verdict of a pending undo candidate
type UndoResult int

const (
	// UndoSkip keeps waiting for more information
	UndoSkip UndoResult = iota
	// UndoUndo reverts the timer to the candidate's index
	UndoUndo
	// UndoRemove drops the candidate without touching the timer
	UndoRemove
)

// String returns the string representation of the undo result
func (r UndoResult) String() string {
	switch r {
	case UndoSkip:
		return "Skip"
	case UndoUndo:
		return "Undo"
	case UndoRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// UndoRegistrar accepts undo candidates raised by a condition in OnSplit
type UndoRegistrar interface {
	SetUndoSplit(index int, condition Condition)
}

// UndoRegistrarFunc adapts a function to UndoRegistrar
type UndoRegistrarFunc func(index int, condition Condition)

// SetUndoSplit calls f(index, condition)
func (f UndoRegistrarFunc) SetUndoSplit(index int, condition Condition) {
	f(index, condition)
}

// Condition is one trigger rule of the split list.
//
// Observe feeds game notifications into the condition's progress. CheckSplit
// reports whether the target is satisfied and may consume that progress.
// OnSplit runs once the engine has advanced past the condition's index and
// CheckUndo is only consulted while the condition is the undo candidate.
// None of these methods may block or fail.
type Condition interface {
	Kind() Kind
	Name() string
	Observe(ev game.Event)
	CheckSplit() bool
	OnSplit(previousIndex int, undo UndoRegistrar)
	CheckUndo() UndoResult
	Reset()
	Hash() uint32
	Node() Node
}

var (
	// ErrUnknownKind is returned for nodes whose type is missing or unsupported
	ErrUnknownKind = errors.New("unknown split type")
	// ErrMissingAttribute is returned when a required target attribute is absent
	ErrMissingAttribute = errors.New("missing required attribute")
)

// Node is the persisted form of a single split. Offset is written from the
// split's position and never interpreted on load.
type Node struct {
	XMLName xml.Name   `xml:"Split"`
	Type    string     `xml:"type,attr"`
	Offset  string     `xml:"offset,attr"`
	Name    string     `xml:"name,attr,omitempty"`
	Attrs   []xml.Attr `xml:",any,attr"`
}

func newNode(kind Kind, name string) Node {
	return Node{Type: string(kind), Name: name}
}

func (n Node) with(key string, value string) Node {
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: key}, Value: value})
	return n
}

func (n Node) withInt(key string, value int) Node {
	return n.with(key, strconv.Itoa(value))
}

// Attr returns the value of a kind-specific attribute
func (n Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == key {
			return a.Value, true
		}
	}
	return "", false
}

func (n Node) requireString(key string) (string, error) {
	v, ok := n.Attr(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%s split: %w '%s'", n.Type, ErrMissingAttribute, key)
	}
	return v, nil
}

func (n Node) requireInt(key string) (int, error) {
	v, err := n.requireString(key)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s split: invalid '%s' value '%s': %w", n.Type, key, v, err)
	}
	return i, nil
}

var parsers = map[Kind]func(Node) (Condition, error){
	KindManual:      parseManual,
	KindScreen:      parseScreen,
	KindItem:        parseItem,
	KindRaven:       parseRaven,
	KindAchievement: parseAchievement,
	KindEnding:      parseEnding,
}

// Parse builds the condition described by a node
func Parse(n Node) (Condition, error) {
	parse, ok := parsers[Kind(n.Type)]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownKind, n.Type)
	}
	return parse(n)
}

func hashString(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}

// hashOf folds target data into the hash of the kind tag
func hashOf(kind Kind, fields ...uint32) uint32 {
	h := hashString(string(kind))
	for _, f := range fields {
		h = h*31 + f
	}
	return h
}

// latch remembers that an event happened until it is taken
type latch struct {
	set bool
}

func (l *latch) trip() { l.set = true }

func (l *latch) take() bool {
	v := l.set
	l.set = false
	return v
}
