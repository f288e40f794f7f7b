// internal/livesplit/server.go
package livesplit

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server manages the LiveSplit One WebSocket server
type Server struct {
	logger   *logrus.Logger
	upgrader websocket.Upgrader
	clients  map[*Client]bool
	mu       sync.RWMutex

	// Server configuration
	host string
	port int

	// State
	running   bool
	server    *http.Server
	startTime time.Time
	onReset   func()

	totalConnections int
	messagesSent     int
	messagesReceived int
}

// Client represents a connected LiveSplit One client
type Client struct {
	id     string
	conn   *websocket.Conn
	server *Server
	send   chan []byte
	logger *logrus.Entry

	connectedAt   time.Time
	lastMessageAt time.Time
	messageCount  int
}

// NewServer creates a new LiveSplit One WebSocket server
func NewServer(logger *logrus.Logger, host string, port int) *Server {
	return &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for LiveSplit One compatibility
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*Client]bool),
		host:    host,
		port:    port,
	}
}

// OnReset registers the function called when a client resets its timer
func (s *Server) OnReset(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReset = fn
}

// Handler returns the HTTP handler that upgrades LiveSplit One connections
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebSocket)
	return mux
}

// Start starts the WebSocket server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	s.running = true
	s.startTime = time.Now()

	// Start server in goroutine
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("WebSocket server error")
		}
	}()

	s.logger.WithField("addr", addr).Info("LiveSplit One WebSocket server started")
	return nil
}

// Stop stops the WebSocket server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info("Stopping LiveSplit One WebSocket server")

	// Close all client connections
	for client := range s.clients {
		client.close()
	}

	// Stop HTTP server
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Error("Error shutting down WebSocket server")
			return err
		}
	}

	s.running = false
	s.logger.Info("LiveSplit One WebSocket server stopped")
	return nil
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetClientCount returns the number of connected clients
func (s *Server) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// GetStats returns current server statistics
func (s *Server) GetStats() ServerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ServerStats{
		Running:          s.running,
		ClientCount:      len(s.clients),
		Address:          net.JoinHostPort(s.host, fmt.Sprint(s.port)),
		StartTime:        s.startTime,
		TotalConnections: s.totalConnections,
		MessagesSent:     s.messagesSent,
		MessagesReceived: s.messagesReceived,
		Clients:          make([]ClientInfo, 0, len(s.clients)),
	}
	for client := range s.clients {
		stats.Clients = append(stats.Clients, ClientInfo{
			ID:            client.id,
			RemoteAddr:    client.conn.RemoteAddr().String(),
			ConnectedAt:   client.connectedAt,
			LastMessageAt: client.lastMessageAt,
			MessageCount:  client.messageCount,
		})
	}
	return stats
}

// handleWebSocket handles WebSocket connection upgrades
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	id := uuid.New().String()
	client := &Client{
		id:          id,
		conn:        conn,
		server:      s,
		send:        make(chan []byte, 256),
		connectedAt: time.Now(),
		logger: s.logger.WithFields(logrus.Fields{
			"client":    conn.RemoteAddr().String(),
			"client_id": id,
		}),
	}

	s.registerClient(client)

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// registerClient registers a new client
func (s *Server) registerClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[client] = true
	s.totalConnections++
	client.logger.Info("LiveSplit One client connected")
}

// unregisterClient unregisters a client
func (s *Server) unregisterClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		client.logger.Info("LiveSplit One client disconnected")
	}
}

// broadcast sends a message to all connected clients. Clients that cannot
// keep up are dropped.
func (s *Server) broadcast(message []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		select {
		case client.send <- message:
			s.messagesSent++
		default:
			close(client.send)
			delete(s.clients, client)
			client.logger.Warn("LiveSplit One client is not keeping up - dropping")
		}
	}
}

// sendCommand sends a command to all connected clients
func (s *Server) sendCommand(cmd any, name string) {
	data, err := json.Marshal(cmd)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal command")
		return
	}

	s.broadcast(data)
	s.logger.WithField("command", name).Debug("Command sent to LiveSplit clients")
}

// Client methods

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Error("WebSocket read error")
			}
			break
		}

		c.server.mu.Lock()
		c.server.messagesReceived++
		c.messageCount++
		c.lastMessageAt = time.Now()
		c.server.mu.Unlock()

		// Handle incoming commands from LiveSplit One
		c.handleIncomingMessage(message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WithError(err).Error("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage handles messages received from LiveSplit One
func (c *Client) handleIncomingMessage(message []byte) {
	c.logger.WithField("message", string(message)).Debug("Received message from LiveSplit client")

	var in Incoming
	if err := json.Unmarshal(message, &in); err != nil {
		c.logger.WithError(err).Error("Failed to parse incoming message")
		return
	}

	switch {
	case in.Command == CommandReset, in.Event == EventReset:
		c.handleReset()
	default:
		c.logger.WithFields(logrus.Fields{
			"command": in.Command,
			"event":   in.Event,
		}).Debug("Unhandled message from LiveSplit client")
	}
}

// handleReset handles a reset performed on a LiveSplit One client
func (c *Client) handleReset() {
	c.server.mu.RLock()
	onReset := c.server.onReset
	c.server.mu.RUnlock()

	if onReset != nil {
		onReset()
		c.logger.Info("Run reset by LiveSplit client")
	}
}

// close closes the client connection
func (c *Client) close() {
	c.conn.Close()
}
