// internal/engine/engine.go
package engine

import (
	"sync"
	"time"

	"github.com/jdharms/jumpking-autosplitter/internal/config"
	"github.com/jdharms/jumpking-autosplitter/internal/game"
	"github.com/jdharms/jumpking-autosplitter/internal/split"
	"github.com/sirupsen/logrus"
)

// Timer is the run timer the engine drives. CurrentIndex is the segment
// being timed: -1 before the run starts and SegmentCount once it ends.
// Each command is expected to move CurrentIndex by one step; a command that
// leaves it unchanged is treated as no progress.
type Timer interface {
	CurrentIndex() int
	SegmentCount() int
	Split()
	SkipSplit()
	UndoSplit()
}

// RunControl is implemented by timers that can also be started, reset and
// fed game time
type RunControl interface {
	IsRunning() bool
	Start()
	Reset()
	SetGameTime(d time.Duration)
}

type undoCandidate struct {
	index     int
	condition split.Condition
}

// SplittingEngine evaluates the split list against game events and issues
// split, skip and undo commands to the timer. All methods are safe to call
// from any goroutine; evaluation cycles never run concurrently.
type SplittingEngine struct {
	logger *logrus.Logger
	timer  Timer

	mu        sync.Mutex
	list      *split.List
	settings  config.Settings
	undo      *undoCandidate
	registrar split.UndoRegistrar
	cycles    uint64
	lastEvent time.Time

	bufferSize       int
	subscriberMu     sync.RWMutex
	splitSubscribers map[chan SplitEvent]struct{}
	closed           bool
}

// HandleEvent is the entry point for game notifications. The conditions
// observe the event, run lifecycle actions are applied and a full
// evaluation cycle runs before it returns.
func (se *SplittingEngine) HandleEvent(ev game.Event) {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.logger.WithField("event", ev.String()).Debug("Game event received")
	se.lastEvent = time.Now()

	if ev.IsNewAttempt() {
		se.list.Reset()
		if se.undo != nil {
			se.logger.Debug("New attempt - dropping pending undo split")
			se.undo = nil
		}
	}

	se.list.Observe(ev)
	se.handleRunControl(ev)
	se.update()
}

// Update runs one evaluation cycle without a new event
func (se *SplittingEngine) Update() {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.update()
}

// update advances through every satisfied split, then resolves the pending
// undo candidate. The first split of a cycle is a real split; further
// splits satisfied in the same cycle are skipped, except the final
// segment which always splits so the run ends.
func (se *SplittingEngine) update() {
	se.cycles++

	splitIssued := false
	for {
		index := se.timer.CurrentIndex()
		if index < 0 || index >= se.list.Len() {
			break
		}

		condition := se.list.At(index)
		if !condition.CheckSplit() {
			break
		}

		action := SplitActionSkip
		if !splitIssued || index == se.timer.SegmentCount()-1 {
			splitIssued = true
			action = SplitActionSplit
			se.timer.Split()
		} else {
			se.timer.SkipSplit()
		}

		if se.timer.CurrentIndex() == index {
			se.logger.WithFields(logrus.Fields{
				"split_name":  condition.Name(),
				"split_index": index,
				"action":      action.String(),
			}).Warn("Timer did not advance - stopping split evaluation")
			break
		}

		se.publishSplitEvent(action, condition.Name(), index)
		condition.OnSplit(index, se.registrar)
	}

	se.resolveUndo()
}

func (se *SplittingEngine) resolveUndo() {
	if se.undo == nil {
		return
	}
	candidate := *se.undo

	result := candidate.condition.CheckUndo()
	switch result {
	case split.UndoSkip:
		return
	case split.UndoRemove:
		se.removeUndoSplit()
	case split.UndoUndo:
		se.logger.WithFields(logrus.Fields{
			"split_name":  candidate.condition.Name(),
			"split_index": candidate.index,
			"from_index":  se.timer.CurrentIndex(),
		}).Info("Undoing speculative split")

		for se.timer.CurrentIndex() > candidate.index {
			last := se.timer.CurrentIndex()
			se.timer.UndoSplit()
			current := se.timer.CurrentIndex()
			if current >= last {
				se.logger.WithField("index", last).Warn("Timer did not undo - stopping undo")
				break
			}
			name := ""
			if c := se.list.At(current); c != nil {
				name = c.Name()
			}
			se.publishSplitEvent(SplitActionUndo, name, current)
		}

		// An index below the target means the run was reset underneath us
		if se.timer.CurrentIndex() <= candidate.index {
			se.removeUndoSplit()
		}
	}
}

// SetUndoSplit registers an undo candidate. It is ignored while the undo
// feature is disabled or another candidate is pending.
func (se *SplittingEngine) SetUndoSplit(index int, condition split.Condition) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.setUndoSplit(index, condition)
}

func (se *SplittingEngine) setUndoSplit(index int, condition split.Condition) {
	if !se.settings.UndoSplit || condition == nil {
		return
	}

	fields := logrus.Fields{
		"split_type":  string(condition.Kind()),
		"split_index": index,
	}
	if se.undo != nil {
		se.logger.WithFields(fields).Debug("Undo split already pending - ignoring")
		return
	}

	se.logger.WithFields(fields).Debug("Add undo split")
	se.undo = &undoCandidate{index: index, condition: condition}
}

// RemoveUndoSplit clears the pending undo candidate
func (se *SplittingEngine) RemoveUndoSplit() {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.removeUndoSplit()
}

func (se *SplittingEngine) removeUndoSplit() {
	se.logger.Debug("Remove undo split")
	se.undo = nil
}

// UndoCandidate returns the pending undo candidate, if any
func (se *SplittingEngine) UndoCandidate() (index int, condition split.Condition, ok bool) {
	se.mu.Lock()
	defer se.mu.Unlock()

	if se.undo == nil {
		return 0, nil, false
	}
	return se.undo.index, se.undo.condition, true
}
