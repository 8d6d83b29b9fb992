// SPDX-License-Identifier: MIT
/*
Package source provides IQ sample sources for the spectrum pipeline.

A Source yields fixed-length blocks of complex samples. Concrete sources:
a deterministic signal generator, raw IQ files (interleaved little-endian
float32), stereo WAV IQ recordings, and a stereo soundcard input for
direct-conversion receivers.
*/
package source

// Source produces blocks of complex IQ samples at a fixed nominal rate.
//
// ReadBlock fills buf completely or returns an error; a short read is never
// surfaced to the caller. Implementations retry internally until the block
// is full (blocking-retry), since zero-padding a short block silently
// corrupts spectral results. Blocking is acceptable and expected to match
// the sample rate.
type Source interface {
	ReadBlock(buf []complex64) error
}

// ClosableSource combines Source with a Close method for sources holding
// OS resources (files, device streams).
type ClosableSource interface {
	Source
	Close() error
}
