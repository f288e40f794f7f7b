// internal/engine/events.go
package engine

import (
	"context"
	"time"
)

// SplitAction represents the type of split action
type SplitAction int

const (
	SplitActionSplit SplitAction = iota
	SplitActionSkip
	SplitActionUndo
)

// String returns the string representation of the split action
func (sa SplitAction) String() string {
	switch sa {
	case SplitActionSplit:
		return "Split"
	case SplitActionSkip:
		return "Skip"
	case SplitActionUndo:
		return "Undo"
	default:
		return "Unknown"
	}
}

// SplitEvent represents a timer command issued by the engine. For split
// and skip, SplitIndex is the segment that was ended; for undo it is the
// segment that became current again.
type SplitEvent struct {
	Action     SplitAction
	SplitName  string
	SplitIndex int
	Timestamp  time.Time
}

// EngineStats contains statistics about the engine state
type EngineStats struct {
	CurrentIndex     int       `json:"current_index"`
	SegmentCount     int       `json:"segment_count"`
	TotalSplits      int       `json:"total_splits"`
	CurrentSplitName string    `json:"current_split_name"`
	Fingerprint      uint32    `json:"fingerprint"`
	UndoPending      bool      `json:"undo_pending"`
	UndoIndex        int       `json:"undo_index"`
	AutoStartTimer   bool      `json:"auto_start_timer"`
	AutoResetTimer   bool      `json:"auto_reset_timer"`
	UndoSplit        bool      `json:"undo_split"`
	Cycles           uint64    `json:"cycles"`
	LastEvent        time.Time `json:"last_event"`
}

// RegisterSplitChannel registers a new split event subscriber. The channel
// is closed when ctx is done or the engine is closed.
func (se *SplittingEngine) RegisterSplitChannel(ctx context.Context) <-chan SplitEvent {
	se.subscriberMu.Lock()
	defer se.subscriberMu.Unlock()

	ch := make(chan SplitEvent, se.bufferSize)
	if se.closed {
		close(ch)
		return ch
	}
	se.splitSubscribers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		se.subscriberMu.Lock()
		if _, ok := se.splitSubscribers[ch]; ok {
			delete(se.splitSubscribers, ch)
			close(ch)
		}
		se.subscriberMu.Unlock()
	}()

	return ch
}

// Close closes every subscriber channel. Later registrations receive an
// already closed channel.
func (se *SplittingEngine) Close() {
	se.subscriberMu.Lock()
	defer se.subscriberMu.Unlock()

	se.closed = true
	for ch := range se.splitSubscribers {
		close(ch)
		delete(se.splitSubscribers, ch)
	}
}

// publishSplitEvent publishes a split event to all subscribers
func (se *SplittingEngine) publishSplitEvent(action SplitAction, name string, index int) {
	event := SplitEvent{
		Action:     action,
		SplitName:  name,
		SplitIndex: index,
		Timestamp:  time.Now(),
	}

	se.logger.WithFields(map[string]any{
		"split_name":  name,
		"split_index": index,
	}).Info(action.String() + " issued")

	// Fan out to all subscribers
	se.subscriberMu.RLock()
	for ch := range se.splitSubscribers {
		select {
		case ch <- event:
		default:
			se.logger.Warn("Split event subscriber channel is full")
		}
	}
	se.subscriberMu.RUnlock()
}

// GetStats returns current engine statistics
func (se *SplittingEngine) GetStats() EngineStats {
	se.mu.Lock()
	defer se.mu.Unlock()

	stats := EngineStats{
		CurrentIndex:   se.timer.CurrentIndex(),
		SegmentCount:   se.timer.SegmentCount(),
		TotalSplits:    se.list.Len(),
		Fingerprint:    se.fingerprint(),
		AutoStartTimer: se.settings.AutoStartTimer,
		AutoResetTimer: se.settings.AutoResetTimer,
		UndoSplit:      se.settings.UndoSplit,
		Cycles:         se.cycles,
		LastEvent:      se.lastEvent,
	}
	if c := se.list.At(stats.CurrentIndex); c != nil {
		stats.CurrentSplitName = c.Name()
	}
	if se.undo != nil {
		stats.UndoPending = true
		stats.UndoIndex = se.undo.index
	}
	return stats
}
