// SPDX-License-Identifier: MIT
/*
Package transport delivers finished spectrum frames to external consumers.
Every sink honors the same contract as the in-process delivery channel:
Consume never blocks the caller, and a sink that cannot keep up drops
frames rather than stalling the consumer loop.
*/
package transport

import "iqscope/internal/graph"

// FrameSink consumes finished spectrum frames. Implementations must be
// thread-safe, must not block the caller, and must treat frames as
// immutable. New consumer types implement this interface without the core
// depending on them.
type FrameSink interface {
	Consume(frame *graph.SpectrumFrame) error
	Close() error
}
