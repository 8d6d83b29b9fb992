// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"iqscope/internal/graph"
	applog "iqscope/internal/log"
)

// wsFrame is the JSON wire format for one spectrum frame.
type wsFrame struct {
	Seq        uint64    `json:"seq"`
	SampleRate float64   `json:"sample_rate"`
	FFTSize    int       `json:"fft_size"`
	Power      []float64 `json:"power"`
}

// WebSocketSink broadcasts spectrum frames as JSON to connected clients.
//
// Thread safety: a mutex guards the client map; broadcasts go through a
// bounded queue so Consume never blocks even with a slow client attached.
type WebSocketSink struct {
	addr     string
	upgrader websocket.Upgrader
	server   *http.Server

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex

	broadcast chan *wsFrame
	done      chan struct{}

	minSendInterval time.Duration
	lastSend        time.Time
}

// NewWebSocketSink starts an HTTP server on addr serving WebSocket upgrades
// at /spectrum. minSendInterval rate-limits broadcasts (zero disables the
// limit).
func NewWebSocketSink(addr string, minSendInterval time.Duration) *WebSocketSink {
	s := &WebSocketSink{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local visualization clients only.
			},
		},
		clients:         make(map[*websocket.Conn]bool),
		broadcast:       make(chan *wsFrame, 64),
		done:            make(chan struct{}),
		minSendInterval: minSendInterval,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", s.handleWebSocket)
	s.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		applog.Infof("Transport: Spectrum WebSocket listening on %s", addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("Transport: WebSocket server error: %v", err)
		}
	}()
	go s.handleBroadcasts()

	return s
}

// handleWebSocket upgrades HTTP connections and tracks the client until it
// disconnects.
func (s *WebSocketSink) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("Transport: WebSocket upgrade error: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.clientsMu.Unlock()
	applog.Infof("Transport: Client connected, total: %d", total)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.clientsMu.Lock()
				delete(s.clients, conn)
				total := len(s.clients)
				s.clientsMu.Unlock()
				conn.Close()
				applog.Infof("Transport: Client disconnected, total: %d", total)
				return
			}
		}
	}()
}

func (s *WebSocketSink) handleBroadcasts() {
	for {
		select {
		case frame := <-s.broadcast:
			data, err := json.Marshal(frame)
			if err != nil {
				applog.Errorf("Transport: Error marshaling frame: %v", err)
				continue
			}
			s.clientsMu.Lock()
			for client := range s.clients {
				if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
					client.Close()
					delete(s.clients, client)
				}
			}
			s.clientsMu.Unlock()
		case <-s.done:
			return
		}
	}
}

// Consume queues the frame for broadcast. Frames beyond the rate limit or
// the queue capacity are dropped silently; the producer side never waits.
func (s *WebSocketSink) Consume(frame *graph.SpectrumFrame) error {
	now := time.Now()
	if s.minSendInterval > 0 && now.Sub(s.lastSend) < s.minSendInterval {
		return nil
	}
	s.lastSend = now

	select {
	case s.broadcast <- &wsFrame{
		Seq:        frame.Seq,
		SampleRate: frame.SampleRate,
		FFTSize:    frame.FFTSize,
		Power:      frame.Power,
	}:
	default:
		// Broadcast queue full, drop.
	}
	return nil
}

// Close disconnects all clients and shuts down the server.
func (s *WebSocketSink) Close() error {
	close(s.done)

	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

var _ FrameSink = (*WebSocketSink)(nil)
