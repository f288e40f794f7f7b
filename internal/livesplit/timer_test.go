package livesplit

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	server := NewServer(logger, "localhost", 0)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return server.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)
	return server, conn
}

func readCommand(t *testing.T, conn *websocket.Conn) map[string]string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var cmd map[string]string
	require.NoError(t, json.Unmarshal(data, &cmd))
	return cmd
}

func TestTimerMirrorsIndex(t *testing.T) {
	logger, _ := test.NewNullLogger()
	timer := NewTimer(NewServer(logger, "localhost", 0), 3, nil)

	assert.Equal(t, -1, timer.CurrentIndex())
	assert.Equal(t, TimerPhaseNotRunning, timer.Phase())
	assert.False(t, timer.IsRunning())

	timer.Split()
	assert.Equal(t, -1, timer.CurrentIndex(), "split before start is ignored")

	timer.Start()
	assert.Equal(t, 0, timer.CurrentIndex())
	assert.True(t, timer.IsRunning())

	timer.SkipSplit()
	timer.SkipSplit()
	assert.Equal(t, 2, timer.CurrentIndex())
	timer.SkipSplit()
	assert.Equal(t, 2, timer.CurrentIndex(), "last segment cannot be skipped")

	timer.Split()
	assert.Equal(t, 3, timer.CurrentIndex())
	assert.Equal(t, TimerPhaseEnded, timer.Phase())
	timer.Split()
	assert.Equal(t, 3, timer.CurrentIndex())

	timer.UndoSplit()
	assert.Equal(t, 2, timer.CurrentIndex())

	timer.Reset()
	assert.Equal(t, -1, timer.CurrentIndex())
	timer.UndoSplit()
	assert.Equal(t, -1, timer.CurrentIndex())
}

func TestTimerBroadcastsCommands(t *testing.T) {
	server, conn := setupTestServer(t)
	timer := NewTimer(server, 2, nil)

	timer.Start()
	timer.SetGameTime(90*time.Minute + 1500*time.Millisecond)
	timer.Split()
	timer.UndoSplit()
	timer.SkipSplit()
	timer.Reset()

	assert.Equal(t, map[string]string{"command": "start"}, readCommand(t, conn))
	assert.Equal(t, map[string]string{"command": "initializeGameTime"}, readCommand(t, conn))
	assert.Equal(t, map[string]string{"command": "setGameTime", "time": "1:30:01.500"}, readCommand(t, conn))
	assert.Equal(t, map[string]string{"command": "split"}, readCommand(t, conn))
	assert.Equal(t, map[string]string{"command": "undoSplit"}, readCommand(t, conn))
	assert.Equal(t, map[string]string{"command": "skipSplit"}, readCommand(t, conn))
	assert.Equal(t, map[string]string{"command": "reset"}, readCommand(t, conn))

	stats := server.GetStats()
	assert.Equal(t, 1, stats.ClientCount)
	assert.Equal(t, 7, stats.MessagesSent)
	require.Len(t, stats.Clients, 1)
	assert.NotEmpty(t, stats.Clients[0].ID)
}

func TestTimerResetByClient(t *testing.T) {
	server, conn := setupTestServer(t)

	var resets atomic.Int32
	timer := NewTimer(server, 2, func() { resets.Add(1) })
	timer.Start()
	timer.Split()
	require.Equal(t, 1, timer.CurrentIndex())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"Reset"}`)))
	require.Eventually(t, func() bool { return resets.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, -1, timer.CurrentIndex())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"Splitted"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"command":"reset"}`)))
	require.Eventually(t, func() bool { return resets.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestFormatGameTime(t *testing.T) {
	assert.Equal(t, "0:00:00.000", FormatGameTime(0))
	assert.Equal(t, "0:00:00.000", FormatGameTime(-time.Second))
	assert.Equal(t, "0:01:02.034", FormatGameTime(62*time.Second+34*time.Millisecond))
	assert.Equal(t, "12:00:00.000", FormatGameTime(12*time.Hour))
}
