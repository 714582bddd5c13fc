// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/shake_dice/internal/dice"
	"github.com/relabs-tech/shake_dice/internal/game"
)

const (
	writeWait = time.Second

	// clientBacklog frames may wait for a slow browser before new ones are
	// dropped for it.
	clientBacklog = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// cubeFace tells a browser-side 3D cube where to put the pips of one face.
type cubeFace struct {
	Face      dice.Face        `json:"face"`
	Placement dice.Orientation `json:"placement"`
	Pips      []dice.Pip       `json:"pips"`
}

// wsClient is one browser. Its writer goroutine drains send.
type wsClient struct {
	conn *websocket.Conn
	send chan game.Frame
	done chan struct{}
}

// WebSocket streams every frame to connected browsers, which draw the 3D
// cube, and serves the latest frame as JSON.
type WebSocket struct {
	mu        sync.RWMutex
	clients   map[*wsClient]struct{}
	lastFrame game.Frame
	haveFrame bool
}

// NewWebSocket returns a hub with no clients. Serve or Handler exposes it.
func NewWebSocket() *WebSocket {
	return &WebSocket{clients: make(map[*wsClient]struct{})}
}

// Render stores f and queues it for every client without waiting on the
// network. A client whose queue is full misses this frame.
func (ws *WebSocket) Render(f game.Frame) error {
	ws.mu.Lock()
	ws.lastFrame = f
	ws.haveFrame = true
	clients := make([]*wsClient, 0, len(ws.clients))
	for c := range ws.clients {
		clients = append(clients, c)
	}
	ws.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- f:
		default:
			log.Debugf("web: client backlog full, dropping frame")
		}
	}
	return nil
}

func (ws *WebSocket) add(conn *websocket.Conn) *wsClient {
	c := &wsClient{
		conn: conn,
		send: make(chan game.Frame, clientBacklog),
		done: make(chan struct{}),
	}
	ws.mu.Lock()
	ws.clients[c] = struct{}{}
	ws.mu.Unlock()
	return c
}

func (ws *WebSocket) remove(c *wsClient) {
	ws.mu.Lock()
	_, ok := ws.clients[c]
	delete(ws.clients, c)
	ws.mu.Unlock()
	if ok {
		close(c.done)
		c.conn.Close()
	}
}

// ClientCount is the number of connected websocket clients.
func (ws *WebSocket) ClientCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.clients)
}

// Handler serves:
//
//	/ws          websocket stream of frames
//	/api/dice    latest frame as JSON
//	/api/faces   pip layout and placement for each cube face
//	/            static files from ./web
func (ws *WebSocket) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.handleWS)
	mux.HandleFunc("/api/dice", ws.handleDice)
	mux.HandleFunc("/api/faces", handleFaces)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

func (ws *WebSocket) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := ws.add(conn)
	log.Printf("web: client connected from %s", r.RemoteAddr)
	go ws.writeLoop(c)

	// Drain reads so close frames are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket read error: %v", err)
			}
			break
		}
	}
	ws.remove(c)
}

func (ws *WebSocket) writeLoop(c *wsClient) {
	for {
		select {
		case <-c.done:
			return
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(f); err != nil {
				log.Printf("web: dropping client: %v", err)
				ws.remove(c)
				return
			}
		}
	}
}

func (ws *WebSocket) handleDice(w http.ResponseWriter, r *http.Request) {
	ws.mu.RLock()
	f, ok := ws.lastFrame, ws.haveFrame
	ws.mu.RUnlock()

	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func handleFaces(w http.ResponseWriter, r *http.Request) {
	faces := make([]cubeFace, 0, 6)
	for f := dice.MinFace; f <= dice.MaxFace; f++ {
		faces = append(faces, cubeFace{
			Face:      f,
			Placement: dice.FacePlacement(f),
			Pips:      dice.Pips(f),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(faces); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// Serve listens on port until ctx is done.
func (ws *WebSocket) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: ws.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("web server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
