// SPDX-License-Identifier: MIT
/*
Package graph owns the processing topology of the spectrum engine: the
fixed source → window → FFT → emit pipeline, the executor goroutine that
drives it, and the bounded delivery channel that hands finished frames to
the consumer.

Concurrency model: exactly one processing goroutine per executor and one
consumer draining the delivery channel. All cross-goroutine communication
is by message; a frame's ownership transfers fully to the consumer on
receive.
*/
package graph

import (
	"fmt"

	"iqscope/internal/dsp"
	"iqscope/pkg/bitint"
)

// Config is the active processing configuration. An executor holds exactly
// one at a time; Reconfigure replaces it atomically so no frame is ever
// emitted against a configuration other than the one it carries.
type Config struct {
	FFTSize    int            // transform size, positive power of 2
	SampleRate float64        // sample rate in Hz
	Window     dsp.WindowFunc // analysis window kind
}

// ConfigError reports an invalid Config field. It is returned synchronously
// from Start and Reconfigure and never reaches the processing loop.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

// Validate rejects configurations violating the engine invariants.
// Out-of-range values are rejected, never clamped.
func (c Config) Validate() error {
	if !bitint.IsPowerOfTwo(c.FFTSize) {
		return &ConfigError{
			Field:  "fft_size",
			Reason: fmt.Sprintf("must be a positive power of 2, got %d", c.FFTSize),
		}
	}
	if c.SampleRate <= 0 {
		return &ConfigError{
			Field:  "sample_rate",
			Reason: fmt.Sprintf("must be positive, got %f", c.SampleRate),
		}
	}
	return nil
}
