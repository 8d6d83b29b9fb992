// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"iqscope/internal/graph"
)

// newTestWebSocketSink wires a sink to an httptest server so the test can
// dial it on an ephemeral port.
func newTestWebSocketSink(t *testing.T, minSendInterval time.Duration) (*WebSocketSink, string) {
	t.Helper()

	s := &WebSocketSink{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:         make(map[*websocket.Conn]bool),
		broadcast:       make(chan *wsFrame, 64),
		done:            make(chan struct{}),
		minSendInterval: minSendInterval,
	}
	go s.handleBroadcasts()

	srv := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})

	return s, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (s *WebSocketSink) clientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func waitForClients(t *testing.T, s *WebSocketSink, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.clientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client count never reached %d (have %d)", want, s.clientCount())
}

func TestWebSocketSinkBroadcastsFrames(t *testing.T) {
	sink, url := newTestWebSocketSink(t, 0)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	waitForClients(t, sink, 1)

	frame := &graph.SpectrumFrame{
		Power:      []float64{1.0, 0.5, 0.25},
		FFTSize:    3,
		SampleRate: 48000,
		Seq:        7,
	}
	if err := sink.Consume(frame); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var got wsFrame
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Seq != 7 || got.FFTSize != 3 || got.SampleRate != 48000 {
		t.Errorf("frame metadata = %+v, want seq 7, fft 3, rate 48000", got)
	}
	if len(got.Power) != 3 || got.Power[0] != 1.0 {
		t.Errorf("frame power = %v, want [1 0.5 0.25]", got.Power)
	}
}

func TestWebSocketSinkConsumeWithoutClients(t *testing.T) {
	sink, _ := newTestWebSocketSink(t, 0)

	// No clients attached: frames are absorbed, never an error.
	frame := &graph.SpectrumFrame{Power: []float64{1}, FFTSize: 1, SampleRate: 48000}
	for i := 0; i < 100; i++ {
		if err := sink.Consume(frame); err != nil {
			t.Fatalf("Consume with no clients failed: %v", err)
		}
	}
}

func TestWebSocketSinkDropsClientOnDisconnect(t *testing.T) {
	sink, url := newTestWebSocketSink(t, 0)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	waitForClients(t, sink, 1)

	conn.Close()
	waitForClients(t, sink, 0)
}
