// internal/livesplit/timer.go
package livesplit

import (
	"fmt"
	"sync"
	"time"
)

// Timer mirrors the run state of the connected LiveSplit One clients and
// broadcasts every change to them. The index is -1 before the run starts,
// 0..N-1 while a segment is running and N once the run has ended.
type Timer struct {
	server *Server

	mu       sync.Mutex
	index    int
	segments int
}

// NewTimer creates a timer with the given number of segments that
// broadcasts through server. The server's reset notifications reset the
// mirror before onReset runs.
func NewTimer(server *Server, segments int, onReset func()) *Timer {
	t := &Timer{server: server, index: -1, segments: segments}
	server.OnReset(func() {
		t.mu.Lock()
		t.index = -1
		t.mu.Unlock()
		if onReset != nil {
			onReset()
		}
	})
	return t
}

// SetSegmentCount changes the number of segments in the run
func (t *Timer) SetSegmentCount(segments int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments = segments
	if t.index > segments {
		t.index = segments
	}
}

// CurrentIndex returns the index of the running segment
func (t *Timer) CurrentIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

// SegmentCount returns the number of segments in the run
func (t *Timer) SegmentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.segments
}

// Phase returns the current timer phase
func (t *Timer) Phase() TimerPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.index < 0:
		return TimerPhaseNotRunning
	case t.index >= t.segments:
		return TimerPhaseEnded
	default:
		return TimerPhaseRunning
	}
}

// Split ends the current segment. Splitting the last segment ends the run.
func (t *Timer) Split() {
	t.mu.Lock()
	if t.index < 0 || t.index >= t.segments {
		t.mu.Unlock()
		return
	}
	t.index++
	t.mu.Unlock()
	t.server.sendCommand(Command{Command: CommandSplit}, CommandSplit)
}

// SkipSplit advances past the current segment without a time. The last
// segment cannot be skipped.
func (t *Timer) SkipSplit() {
	t.mu.Lock()
	if t.index < 0 || t.index >= t.segments-1 {
		t.mu.Unlock()
		return
	}
	t.index++
	t.mu.Unlock()
	t.server.sendCommand(Command{Command: CommandSkipSplit}, CommandSkipSplit)
}

// UndoSplit returns to the previous segment
func (t *Timer) UndoSplit() {
	t.mu.Lock()
	if t.index <= 0 {
		t.mu.Unlock()
		return
	}
	t.index--
	t.mu.Unlock()
	t.server.sendCommand(Command{Command: CommandUndoSplit}, CommandUndoSplit)
}

// IsRunning reports whether a run has been started and not reset
func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index >= 0
}

// Start begins a run and switches the clients to game time
func (t *Timer) Start() {
	t.mu.Lock()
	if t.index >= 0 {
		t.mu.Unlock()
		return
	}
	t.index = 0
	t.mu.Unlock()
	t.server.sendCommand(Command{Command: CommandStart}, CommandStart)
	t.server.sendCommand(Command{Command: CommandInitializeGameTime}, CommandInitializeGameTime)
}

// Reset abandons the run
func (t *Timer) Reset() {
	t.mu.Lock()
	t.index = -1
	t.mu.Unlock()
	t.server.sendCommand(Command{Command: CommandReset}, CommandReset)
}

// SetGameTime sets the game time shown by the clients
func (t *Timer) SetGameTime(d time.Duration) {
	t.server.sendCommand(SetGameTimeCommand{
		Command: CommandSetGameTime,
		Time:    FormatGameTime(d),
	}, CommandSetGameTime)
}

// FormatGameTime renders d as h:mm:ss.fff
func FormatGameTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d:%02d.%03d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}
