// internal/livesplit/types.go
package livesplit

import "time"

// Command represents a basic LiveSplit One command
type Command struct {
	Command string `json:"command"`
}

// SetGameTimeCommand represents a setGameTime command
type SetGameTimeCommand struct {
	Command string `json:"command"`
	Time    string `json:"time"`
}

// Incoming represents a message sent from LiveSplit One. Clients send
// either a command they want the autosplitter to honour or an event
// describing a change made on their side.
type Incoming struct {
	Command string `json:"command,omitempty"`
	Event   string `json:"event,omitempty"`
}

// TimerPhase represents the current phase of the timer
type TimerPhase string

const (
	TimerPhaseNotRunning TimerPhase = "NotRunning"
	TimerPhaseRunning    TimerPhase = "Running"
	TimerPhaseEnded      TimerPhase = "Ended"
)

// LiveSplitOneEvents contains the event types handled from clients
const (
	EventReset = "Reset"
)

// LiveSplitOneCommands contains the command types that can be sent
const (
	CommandStart              = "start"
	CommandSplit              = "split"
	CommandReset              = "reset"
	CommandUndoSplit          = "undoSplit"
	CommandSkipSplit          = "skipSplit"
	CommandInitializeGameTime = "initializeGameTime"
	CommandSetGameTime        = "setGameTime"
)

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ID            string    `json:"id"`
	RemoteAddr    string    `json:"remote_addr"`
	ConnectedAt   time.Time `json:"connected_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	MessageCount  int       `json:"message_count"`
}

// ServerStats contains statistics about the LiveSplit server
type ServerStats struct {
	Running          bool         `json:"running"`
	ClientCount      int          `json:"client_count"`
	Address          string       `json:"address"`
	StartTime        time.Time    `json:"start_time,omitempty"`
	TotalConnections int          `json:"total_connections"`
	MessagesSent     int          `json:"messages_sent"`
	MessagesReceived int          `json:"messages_received"`
	Clients          []ClientInfo `json:"clients"`
}
