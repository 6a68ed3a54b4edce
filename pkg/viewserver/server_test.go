package viewserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framestretch/pkg/framestretch"
)

func testServer() *Server {
	renderer := framestretch.NewRenderer(framestretch.DefaultStretchSettings())
	return New(renderer, framestretch.NewNotifier())
}

func testFrame() *framestretch.RawFrame {
	pix := make([]uint16, 8*8)
	for i := range pix {
		pix[i] = uint16(i * 100)
	}
	return &framestretch.RawFrame{
		Pixels:   pix,
		Width:    8,
		Height:   8,
		BitDepth: 16,
	}
}

func TestHandleHealth(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandleStatus(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var status struct {
		WSClients int                          `json:"ws_clients"`
		HasFrame  bool                         `json:"has_frame"`
		Settings  framestretch.StretchSettings `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0, status.WSClients)
	assert.False(t, status.HasFrame)
	assert.Equal(t, "linear", status.Settings.Method)

	s.SetFrame(testFrame())
	rec = httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.HasFrame)
}

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(s.handleWS))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebsocketInitialState(t *testing.T) {
	s := testServer()
	s.SetFrame(testFrame())
	conn := dialWS(t, s)

	// A fresh client receives the settings, then the current frame.
	msg := readJSON(t, conn)
	assert.Equal(t, "settings", msg["type"])

	msg = readJSON(t, conn)
	assert.Equal(t, "frame", msg["type"])
	assert.Equal(t, 8.0, msg["width"])
	assert.Equal(t, 8.0, msg["height"])
	assert.NotEmpty(t, msg["png"])
	assert.Len(t, msg["histogram"], framestretch.DisplayBuckets)
}

func TestWebsocketRefresh(t *testing.T) {
	s := testServer()
	s.SetFrame(testFrame())
	conn := dialWS(t, s)

	readJSON(t, conn) // settings
	readJSON(t, conn) // initial frame

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "refresh"}))
	msg := readJSON(t, conn)
	assert.Equal(t, "frame", msg["type"])
}

func TestWebsocketSettingsUpdate(t *testing.T) {
	s := testServer()
	conn := dialWS(t, s)
	readJSON(t, conn) // settings

	next := framestretch.DefaultStretchSettings()
	next.Method = "log"
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":     "settings",
		"settings": next,
	}))

	require.Eventually(t, func() bool {
		return s.renderer.Settings().Method == "log"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWebsocketSettingsRejected(t *testing.T) {
	s := testServer()
	conn := dialWS(t, s)
	readJSON(t, conn) // settings

	bad := framestretch.DefaultStretchSettings()
	bad.RobustPercentile = 50
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":     "settings",
		"settings": bad,
	}))

	msg := readJSON(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, 98.0, s.renderer.Settings().RobustPercentile)
}
