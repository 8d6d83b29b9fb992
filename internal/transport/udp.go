// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"iqscope/internal/graph"
	applog "iqscope/internal/log"
)

/*
UDP packet layout (BigEndian):

	| Field       | Type      | Size (Bytes)  |
	|-------------|-----------|---------------|
	| Sequence    | uint64    | 8             |
	| Timestamp   | int64     | 8             |
	| Sample rate | float64   | 8             |
	| Bin count   | uint32    | 4             |
	| Power       | []float32 | bin count * 4 |
*/

// UDPSink packs spectrum frames into a binary datagram format and sends
// them to a fixed target address, rate-limited to the configured interval.
type UDPSink struct {
	conn   *net.UDPConn
	mu     sync.Mutex // protects conn during Close
	closed bool

	minSendInterval time.Duration
	lastSend        time.Time

	packetBuffer *bytes.Buffer // reusable packing buffer
	f32          []float32     // reusable float32 conversion scratch
}

// NewUDPSink dials the target ("host:port") and returns a sink sending at
// most one packet per interval.
func NewUDPSink(targetAddress string, minSendInterval time.Duration) (*UDPSink, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address %q: %w", targetAddress, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %q: %w", targetAddress, err)
	}

	applog.Infof("Transport: UDP spectrum feed to %s", conn.RemoteAddr())

	return &UDPSink{
		conn:            conn,
		minSendInterval: minSendInterval,
		packetBuffer:    new(bytes.Buffer),
	}, nil
}

// Consume packs and sends one frame. Frames arriving faster than the send
// interval are skipped. A UDP write is fire-and-forget; errors are logged
// and returned but never retried.
func (s *UDPSink) Consume(frame *graph.SpectrumFrame) error {
	now := time.Now()
	if s.minSendInterval > 0 && now.Sub(s.lastSend) < s.minSendInterval {
		return nil
	}
	s.lastSend = now

	if cap(s.f32) < len(frame.Power) {
		s.f32 = make([]float32, len(frame.Power))
	}
	s.f32 = s.f32[:len(frame.Power)]
	for i, v := range frame.Power {
		s.f32[i] = float32(v)
	}

	s.packetBuffer.Reset()
	binary.Write(s.packetBuffer, binary.BigEndian, frame.Seq)
	binary.Write(s.packetBuffer, binary.BigEndian, now.UnixNano())
	binary.Write(s.packetBuffer, binary.BigEndian, frame.SampleRate)
	binary.Write(s.packetBuffer, binary.BigEndian, uint32(len(s.f32)))
	binary.Write(s.packetBuffer, binary.BigEndian, s.f32)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("UDP sink is closed")
	}
	if _, err := s.conn.Write(s.packetBuffer.Bytes()); err != nil {
		applog.Errorf("Transport: Error sending UDP packet: %v", err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying UDP connection.
func (s *UDPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

var _ FrameSink = (*UDPSink)(nil)
