// SPDX-License-Identifier: MIT
package graph

import "sync/atomic"

// DefaultChannelCapacity absorbs roughly one UI frame's worth of consumer
// jitter at typical block rates without growing unbounded.
const DefaultChannelCapacity = 16

// DeliveryChannel is the bounded FIFO queue between the processing goroutine
// and the consumer. Sends never block: when the queue is full the frame just
// computed is dropped (drop-newest) and counted, because stalling the DSP
// path to evict an already-queued frame would be more expensive than
// discarding the one in hand. Frames can therefore be silently lost under
// consumer slowness, never under producer error, and never reordered.
type DeliveryChannel struct {
	frames  chan *SpectrumFrame
	dropped atomic.Uint64
}

// NewDeliveryChannel creates a channel with the given capacity, fixed for
// the channel's lifetime. Non-positive capacities fall back to the default.
func NewDeliveryChannel(capacity int) *DeliveryChannel {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	return &DeliveryChannel{
		frames: make(chan *SpectrumFrame, capacity),
	}
}

// TrySend enqueues the frame without blocking. Returns false and increments
// the dropped counter when the channel is full.
func (c *DeliveryChannel) TrySend(frame *SpectrumFrame) bool {
	select {
	case c.frames <- frame:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Poll receives the next frame without blocking. Returns false when no
// frame is available so the consumer can proceed with stale state.
func (c *DeliveryChannel) Poll() (*SpectrumFrame, bool) {
	select {
	case frame := <-c.frames:
		return frame, true
	default:
		return nil, false
	}
}

// Dropped returns the number of frames discarded because the channel was
// full. Readable without blocking the processing goroutine.
func (c *DeliveryChannel) Dropped() uint64 {
	return c.dropped.Load()
}

// Len returns the number of frames currently queued.
func (c *DeliveryChannel) Len() int {
	return len(c.frames)
}

// flush discards all queued frames and returns how many were removed.
// Used during reconfiguration so the consumer never observes frames from
// the previous configuration after the swap.
func (c *DeliveryChannel) flush() int {
	n := 0
	for {
		select {
		case <-c.frames:
			n++
		default:
			return n
		}
	}
}
