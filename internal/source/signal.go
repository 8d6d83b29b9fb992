// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"math"
)

// SignalSource generates a pure complex exponential tone. It is fully
// deterministic: two instances with identical parameters produce identical
// sample streams, which makes it the reference source for correctness tests.
// Phase is continuous across blocks.
type SignalSource struct {
	sampleRate float64
	frequency  float64
	amplitude  float64
	phase      float64 // normalized phase in [0, 1)
}

// NewSignalSource creates a tone generator. frequency may be negative
// (negative-frequency tones land in the upper half of the spectrum).
func NewSignalSource(sampleRate, frequency, amplitude float64) (*SignalSource, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if math.Abs(frequency) >= sampleRate/2 {
		return nil, fmt.Errorf("tone frequency %f exceeds Nyquist limit for rate %f", frequency, sampleRate)
	}
	return &SignalSource{
		sampleRate: sampleRate,
		frequency:  frequency,
		amplitude:  amplitude,
	}, nil
}

// ReadBlock fills buf with the next block of the tone. Never fails.
func (s *SignalSource) ReadBlock(buf []complex64) error {
	step := s.frequency / s.sampleRate
	for i := range buf {
		angle := 2 * math.Pi * s.phase
		buf[i] = complex(
			float32(s.amplitude*math.Cos(angle)),
			float32(s.amplitude*math.Sin(angle)),
		)
		s.phase += step
		// Wrap to keep precision over long runs.
		if s.phase >= 1 {
			s.phase--
		} else if s.phase < 0 {
			s.phase++
		}
	}
	return nil
}
