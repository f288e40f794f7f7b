// internal/split/list.go
package split

import (
	"encoding/xml"
	"math/bits"
	"strconv"

	"github.com/jdharms/jumpking-autosplitter/internal/game"
	"github.com/sirupsen/logrus"
)

// Splits is the persisted container of split nodes
type Splits struct {
	XMLName xml.Name `xml:"Splits"`
	Nodes   []Node   `xml:"Split"`
}

// List is the ordered split configuration. Position i is the condition
// that ends timer segment i. List is not safe for concurrent use; the
// engine guards it.
type List struct {
	conditions []Condition
}

// NewList creates a list holding the given conditions in order
func NewList(conditions ...Condition) *List {
	l := &List{}
	l.AddSplits(conditions...)
	return l
}

// Clear removes every condition
func (l *List) Clear() {
	l.conditions = nil
}

// AddSplits appends conditions, preserving their order
func (l *List) AddSplits(conditions ...Condition) {
	for _, c := range conditions {
		if c != nil {
			l.conditions = append(l.conditions, c)
		}
	}
}

// Len returns the number of conditions
func (l *List) Len() int {
	return len(l.conditions)
}

// At returns the condition at index i, or nil when out of range
func (l *List) At(i int) Condition {
	if i < 0 || i >= len(l.conditions) {
		return nil
	}
	return l.conditions[i]
}

// Conditions returns a copy of the ordered conditions
func (l *List) Conditions() []Condition {
	out := make([]Condition, len(l.conditions))
	copy(out, l.conditions)
	return out
}

// Load replaces the list with the conditions parsed from splits. Entries
// that cannot be parsed are logged and skipped. It returns how many were
// skipped.
func (l *List) Load(logger logrus.FieldLogger, splits *Splits) int {
	l.Clear()
	if splits == nil {
		return 0
	}

	skipped := 0
	for i, node := range splits.Nodes {
		condition, err := Parse(node)
		if err != nil {
			skipped++
			if logger != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"position": i,
					"type":     node.Type,
				}).Warn("Skipping malformed split entry")
			}
			continue
		}
		l.conditions = append(l.conditions, condition)
	}
	return skipped
}

// Splits serializes the list in order, tagging every node with its offset
func (l *List) Splits() *Splits {
	splits := &Splits{Nodes: make([]Node, 0, len(l.conditions))}
	for offset, c := range l.conditions {
		node := c.Node()
		node.Offset = strconv.Itoa(offset)
		splits.Nodes = append(splits.Nodes, node)
	}
	return splits
}

// Observe feeds a game event to every condition
func (l *List) Observe(ev game.Event) {
	for _, c := range l.conditions {
		c.Observe(ev)
	}
}

// Reset clears the progress of every condition
func (l *List) Reset() {
	for _, c := range l.conditions {
		c.Reset()
	}
}

// Hash returns an order-sensitive fingerprint of the list. Each condition's
// hash plus a carry is rotated left by its position; the carry grows every
// time the rotation wraps around 32 bits.
func (l *List) Hash() uint32 {
	const wordBits = 32
	var hash, carry uint32
	shift := 0
	for _, c := range l.conditions {
		h := c.Hash() + carry
		hash ^= bits.RotateLeft32(h, shift)
		shift++
		if shift >= wordBits {
			shift -= wordBits
			carry++
		}
	}
	return hash
}
