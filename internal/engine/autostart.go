// internal/engine/autostart.go
package engine

import (
	"github.com/jdharms/jumpking-autosplitter/internal/game"
	"github.com/sirupsen/logrus"
)

// handleRunControl applies the auto start, auto reset and game time
// behaviour for run lifecycle events. Timers without RunControl only ever
// receive split commands.
func (se *SplittingEngine) handleRunControl(ev game.Event) {
	rc, ok := se.timer.(RunControl)
	if !ok {
		return
	}

	switch ev.Kind {
	case game.EventGameLoopStart:
		if se.settings.AutoStartTimer && !rc.IsRunning() {
			se.logger.WithField("ticks", ev.Ticks).Info("Game loop started - starting timer")
			rc.Start()
		}
		if rc.IsRunning() {
			rc.SetGameTime(ev.GameTime())
		}

	case game.EventRestart:
		if se.settings.AutoResetTimer {
			se.logger.Info("Game restarted - resetting timer")
			rc.Reset()
		}

	case game.EventUpdateTicks:
		if rc.IsRunning() {
			rc.SetGameTime(ev.GameTime())
		}

	case game.EventWin, game.EventExitToMenu, game.EventGiveUp:
		se.logger.WithFields(logrus.Fields{
			"event":   ev.String(),
			"running": rc.IsRunning(),
		}).Info("Run lifecycle event")
	}
}
