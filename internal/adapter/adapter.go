// internal/adapter/adapter.go
package adapter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jdharms/jumpking-autosplitter/internal/game"
	"github.com/sirupsen/logrus"
)

// State is the adapter's connection lifecycle state
type State int

const (
	StateStopped State = iota
	StateConnecting
	StateConnected
	StateShuttingDown
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}

// Handler receives every decoded game event, in arrival order, on the
// adapter's read goroutine
type Handler func(ev game.Event)

// Config contains configuration for the game adapter
type Config struct {
	URL              string
	RetryDelay       time.Duration // first reconnect delay
	MaxRetryDelay    time.Duration // reconnect delay cap
	HandshakeTimeout time.Duration
}

// DefaultConfig returns the default adapter configuration for url
func DefaultConfig(url string) *Config {
	return &Config{
		URL:              url,
		RetryDelay:       time.Second * 2,
		MaxRetryDelay:    time.Second * 30,
		HandshakeTimeout: time.Second * 10,
	}
}

// Stats contains counters about the adapter
type Stats struct {
	State          State
	ConnectionID   string
	Connections    uint64
	FramesReceived uint64
	FramesDropped  uint64
}

// Adapter connects to the game mod's WebSocket endpoint and forwards its
// notifications to a handler. It reconnects with exponential backoff until
// stopped.
type Adapter struct {
	logger  *logrus.Logger
	config  Config
	handler Handler
	dialer  *websocket.Dialer

	mu           sync.Mutex
	state        State
	cancel       context.CancelFunc
	done         chan struct{}
	conn         *websocket.Conn
	connectionID string
	listeners    []func(State)

	connections    atomic.Uint64
	framesReceived atomic.Uint64
	framesDropped  atomic.Uint64
}

// NewAdapter creates a stopped adapter
func NewAdapter(logger *logrus.Logger, config *Config, handler Handler) *Adapter {
	if config == nil {
		config = DefaultConfig("")
	}
	return &Adapter{
		logger:  logger,
		config:  *config,
		handler: handler,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
		state: StateStopped,
	}
}

// OnStateChange registers a listener called after every state transition
func (a *Adapter) OnStateChange(listener func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, listener)
}

// State returns the current lifecycle state
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Start begins connecting. It is a no-op unless the adapter is stopped.
func (a *Adapter) Start(ctx context.Context) {
	a.mu.Lock()
	switch a.state {
	case StateShuttingDown:
		a.mu.Unlock()
		a.logger.Info("Adapter is shutting down - ignoring start")
		return
	case StateConnecting, StateConnected:
		a.mu.Unlock()
		a.logger.Debug("Adapter is already running")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	notify := a.setStateLocked(StateConnecting)
	go a.run(runCtx, a.done)
	a.mu.Unlock()

	notify()
	a.logger.WithField("url", a.config.URL).Info("Game adapter started")
}

// Stop disconnects and waits for the read loop to exit. It is a no-op
// unless the adapter is running.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if a.state != StateConnecting && a.state != StateConnected {
		a.mu.Unlock()
		a.logger.Debug("Adapter is not running")
		return
	}
	done := a.halt()
	notify := a.setStateLocked(StateStopped)
	a.mu.Unlock()

	<-done
	notify()
	a.logger.Info("Game adapter stopped")
}

// Shutdown stops the adapter for good; later Start calls are ignored
func (a *Adapter) Shutdown() {
	a.mu.Lock()
	if a.state == StateShuttingDown {
		a.mu.Unlock()
		return
	}
	var done <-chan struct{}
	if a.state != StateStopped {
		done = a.halt()
	}
	notify := a.setStateLocked(StateShuttingDown)
	a.mu.Unlock()

	if done != nil {
		<-done
	}
	notify()
	a.logger.Info("Game adapter shut down")
}

// TryReconnect starts the adapter if it is stopped
func (a *Adapter) TryReconnect(ctx context.Context) {
	if a.State() == StateStopped {
		a.Start(ctx)
	}
}

// ForceReconnect drops the current connection and connects again
func (a *Adapter) ForceReconnect(ctx context.Context) {
	a.Stop()
	a.Start(ctx)
}

// GetStats returns current adapter statistics
func (a *Adapter) GetStats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		State:          a.state,
		ConnectionID:   a.connectionID,
		Connections:    a.connections.Load(),
		FramesReceived: a.framesReceived.Load(),
		FramesDropped:  a.framesDropped.Load(),
	}
}

// halt cancels the run loop and closes the connection. Callers hold mu.
func (a *Adapter) halt() <-chan struct{} {
	a.cancel()
	if a.conn != nil {
		a.conn.Close()
	}
	return a.done
}

// setStateLocked changes the state and returns a function that notifies
// listeners. Callers hold mu and call the result after releasing it.
func (a *Adapter) setStateLocked(s State) func() {
	if a.state == s {
		return func() {}
	}
	a.state = s
	listeners := append([]func(State){}, a.listeners...)
	return func() {
		for _, l := range listeners {
			l(s)
		}
	}
}

// transition changes the state unless the run loop has been cancelled
func (a *Adapter) transition(ctx context.Context, s State) {
	a.mu.Lock()
	if ctx.Err() != nil {
		a.mu.Unlock()
		return
	}
	notify := a.setStateLocked(s)
	a.mu.Unlock()
	notify()
}

func (a *Adapter) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	delay := a.config.RetryDelay
	for attempt := 1; ; attempt++ {
		a.transition(ctx, StateConnecting)

		a.logger.WithFields(logrus.Fields{
			"url":     a.config.URL,
			"attempt": attempt,
		}).Info("Attempting to connect to game")

		conn, err := a.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.logger.WithError(err).WithField("attempt", attempt).Warn("Game connection attempt failed")
			if !a.wait(ctx, delay) {
				return
			}

			// Exponential backoff
			delay = time.Duration(float64(delay) * 1.5)
			if delay > a.config.MaxRetryDelay {
				delay = a.config.MaxRetryDelay
			}
			continue
		}

		delay = a.config.RetryDelay
		attempt = 0
		err = a.readLoop(conn)
		a.disconnect(conn)
		if ctx.Err() != nil {
			return
		}
		a.logger.WithError(err).Warn("Lost connection to game")
		a.transition(ctx, StateConnecting)
		if !a.wait(ctx, delay) {
			return
		}
	}
}

// wait sleeps for delay and reports false if ctx ends first
func (a *Adapter) wait(ctx context.Context, delay time.Duration) bool {
	a.logger.WithField("delay", delay).Info("Waiting before retry")
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func (a *Adapter) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := a.dialer.DialContext(ctx, a.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to game at %s: %w", a.config.URL, err)
	}

	a.mu.Lock()
	if ctx.Err() != nil {
		a.mu.Unlock()
		conn.Close()
		return nil, ctx.Err()
	}
	a.conn = conn
	a.connectionID = uuid.New().String()
	id := a.connectionID
	notify := a.setStateLocked(StateConnected)
	a.mu.Unlock()

	a.connections.Add(1)
	notify()
	a.logger.WithField("connection_id", id).Info("Successfully connected to game")
	return conn, nil
}

func (a *Adapter) disconnect(conn *websocket.Conn) {
	conn.Close()
	a.mu.Lock()
	if a.conn == conn {
		a.conn = nil
		a.connectionID = ""
	}
	a.mu.Unlock()
}

func (a *Adapter) readLoop(conn *websocket.Conn) error {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		a.framesReceived.Add(1)

		ev, err := DecodeFrame(message)
		if err != nil {
			a.framesDropped.Add(1)
			a.logger.WithError(err).WithField("frame", string(message)).Warn("Dropping game frame")
			continue
		}

		if a.handler != nil {
			a.handler(ev)
		}
	}
}
