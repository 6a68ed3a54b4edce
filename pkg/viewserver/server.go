// Package viewserver pushes rendered frames and histograms to browser
// clients over a websocket, and accepts stretch-setting changes back from
// the page.
package viewserver

import (
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"framestretch/pkg/framestretch"
)

//go:embed web/*
var webFS embed.FS

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

// Server owns the websocket clients and re-renders the current frame
// whenever settings change or the notifier fires.
type Server struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]*sync.Mutex
	mu       sync.Mutex

	renderer *framestretch.Renderer
	notifier *framestretch.Notifier

	frameMu sync.RWMutex
	frame   *framestretch.RawFrame
}

func New(renderer *framestretch.Renderer, notifier *framestretch.Notifier) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		renderer: renderer,
		notifier: notifier,
	}
}

// SetFrame replaces the current frame and broadcasts a refresh.
func (s *Server) SetFrame(frame *framestretch.RawFrame) {
	s.frameMu.Lock()
	s.frame = frame
	s.frameMu.Unlock()
	s.notifier.Broadcast()
}

// Run serves the embedded UI and websocket endpoint until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		return errors.Wrap(err, "embedded web assets")
	}
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(sub)))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	cancel := s.notifier.Subscribe(func() { s.broadcastFrame() })
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.mu.Lock()
	writeMu := &sync.Mutex{}
	s.clients[conn] = writeMu
	s.mu.Unlock()

	// Initial state: current settings, then the current frame if any.
	_ = s.writeJSON(conn, writeMu, map[string]any{
		"type":     "settings",
		"settings": s.renderer.Settings(),
	})
	if payload := s.frameMessage(); payload != nil {
		_ = s.writeJSON(conn, writeMu, payload)
	}

	go func() {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(pingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := s.writeMessage(conn, writeMu, websocket.PingMessage, nil); err != nil {
						_ = conn.Close()
						return
					}
				}
			}
		}()
		defer close(done)
		defer s.removeClient(conn)
		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			var request struct {
				Type     string                        `json:"type"`
				Settings *framestretch.StretchSettings `json:"settings"`
			}
			if err := json.Unmarshal(payload, &request); err != nil {
				continue
			}
			switch request.Type {
			case "settings":
				if request.Settings == nil {
					continue
				}
				if err := s.renderer.SetSettings(*request.Settings); err != nil {
					_ = s.writeJSON(conn, writeMu, map[string]any{
						"type":  "error",
						"error": err.Error(),
					})
					continue
				}
				s.notifier.Broadcast()
			case "refresh":
				if payload := s.frameMessage(); payload != nil {
					_ = s.writeJSON(conn, writeMu, payload)
				}
			}
		}
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.frameMu.RLock()
	hasFrame := s.frame != nil
	s.frameMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ws_clients": s.clientCount(),
		"has_frame":  hasFrame,
		"settings":   s.renderer.Settings(),
	})
}

// frameMessage renders the current frame into a broadcast payload, or nil
// when there is no frame or the render fails.
func (s *Server) frameMessage() map[string]any {
	s.frameMu.RLock()
	frame := s.frame
	s.frameMu.RUnlock()
	if frame == nil {
		return nil
	}

	display, err := s.renderer.Render(frame)
	if err != nil || display == nil {
		return nil
	}
	img, err := framestretch.ToRGBAImage(display.RGBA, display.Width, display.Height)
	if err != nil {
		return nil
	}
	pngBytes, err := framestretch.EncodePNGBytes(img)
	if err != nil {
		return nil
	}

	return map[string]any{
		"type":      "frame",
		"width":     display.Width,
		"height":    display.Height,
		"channels":  display.Channels,
		"min":       display.Min,
		"max":       display.Max,
		"histogram": display.Histogram,
		"png":       base64.StdEncoding.EncodeToString(pngBytes),
	}
}

func (s *Server) broadcastFrame() {
	payload := s.frameMessage()
	if payload == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}

	var stale []*websocket.Conn
	s.mu.Lock()
	for conn, writeMu := range s.clients {
		if err := s.writeMessage(conn, writeMu, websocket.TextMessage, raw); err != nil {
			stale = append(stale, conn)
		}
	}
	s.mu.Unlock()
	for _, conn := range stale {
		s.removeClient(conn)
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, payload any) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(payload)
}

func (s *Server) writeMessage(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
