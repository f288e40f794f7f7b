// internal/engine/manual_controls.go
package engine

import (
	"fmt"
)

// ManualSplit manually triggers a split of the current segment
func (se *SplittingEngine) ManualSplit() error {
	se.mu.Lock()
	defer se.mu.Unlock()

	index := se.timer.CurrentIndex()
	if index < 0 || index >= se.timer.SegmentCount() {
		return fmt.Errorf("cannot split at segment index %d", index)
	}

	se.logger.Info("Manual split triggered")
	se.timer.Split()
	if se.timer.CurrentIndex() == index {
		return fmt.Errorf("timer did not advance from segment %d", index)
	}
	se.publishSplitEvent(SplitActionSplit, se.nameAt(index), index)
	return nil
}

// ManualSkipSplit manually skips the current segment
func (se *SplittingEngine) ManualSkipSplit() error {
	se.mu.Lock()
	defer se.mu.Unlock()

	index := se.timer.CurrentIndex()
	if index < 0 || index >= se.timer.SegmentCount()-1 {
		return fmt.Errorf("cannot skip split at segment index %d (likely on final split)", index)
	}

	se.logger.Info("Manual skip split triggered")
	se.timer.SkipSplit()
	if se.timer.CurrentIndex() == index {
		return fmt.Errorf("timer did not advance from segment %d", index)
	}
	se.publishSplitEvent(SplitActionSkip, se.nameAt(index), index)
	return nil
}

// ManualUndoSplit manually undoes the last split
func (se *SplittingEngine) ManualUndoSplit() error {
	se.mu.Lock()
	defer se.mu.Unlock()

	index := se.timer.CurrentIndex()
	if index <= 0 {
		return fmt.Errorf("cannot undo split at segment index %d", index)
	}

	se.logger.Info("Manual undo split triggered")
	se.timer.UndoSplit()
	current := se.timer.CurrentIndex()
	if current >= index {
		return fmt.Errorf("timer did not undo from segment %d", index)
	}
	se.publishSplitEvent(SplitActionUndo, se.nameAt(current), current)
	return nil
}

// ManualReset resets the timer and all split progress
func (se *SplittingEngine) ManualReset() error {
	se.mu.Lock()
	defer se.mu.Unlock()

	rc, ok := se.timer.(RunControl)
	if !ok {
		return fmt.Errorf("timer does not support reset")
	}

	se.logger.Info("Manual reset triggered")
	rc.Reset()
	se.list.Reset()
	se.undo = nil
	return nil
}

func (se *SplittingEngine) nameAt(index int) string {
	if c := se.list.At(index); c != nil {
		return c.Name()
	}
	return fmt.Sprintf("Segment %d", index+1)
}
