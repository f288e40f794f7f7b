// internal/engine/config.go
package engine

import (
	"github.com/jdharms/jumpking-autosplitter/internal/split"
	"github.com/sirupsen/logrus"
)

// EngineConfig contains configuration for the splitting engine
type EngineConfig struct {
	BufferSize int // capacity of each split event subscriber channel
}

// DefaultEngineConfig returns the default engine configuration
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		BufferSize: 100,
	}
}

// NewSplittingEngine creates a new splitting engine driving timer. The
// split list starts empty and all toggles off.
func NewSplittingEngine(logger *logrus.Logger, timer Timer, config *EngineConfig) *SplittingEngine {
	if config == nil {
		config = DefaultEngineConfig()
	}

	engine := &SplittingEngine{
		logger:           logger,
		timer:            timer,
		list:             &split.List{},
		bufferSize:       config.BufferSize,
		splitSubscribers: make(map[chan SplitEvent]struct{}),
	}
	engine.registrar = split.UndoRegistrarFunc(engine.setUndoSplit)

	return engine
}
