// SPDX-License-Identifier: MIT
/*
Package history maintains the consumer-side bounded window of recent
spectrum frames and the auto-ranging decibel scaling used to normalize
display contrast. It is mutated only by the consumer goroutine.
*/
package history

import "math"

// MinDB is the floor for decibel conversion. Zero-power bins map here
// instead of propagating negative infinity.
const MinDB = -120.0

// PowerDB converts a magnitude-squared power value to decibels
// (10*log10), floored at MinDB.
func PowerDB(power float64) float64 {
	if power <= 0 {
		return MinDB
	}
	db := 10 * math.Log10(power)
	if db < MinDB {
		return MinDB
	}
	return db
}

// IntensityRange holds the running dB bounds across retained frames.
type IntensityRange struct {
	MinDB float64
	MaxDB float64
}

// Normalize maps a dB value to a display intensity in [0, 1]: clamped to
// the range, then linearly rescaled. A degenerate range (max ≈ min) maps
// everything to middle gray.
func (r IntensityRange) Normalize(db float64) float64 {
	span := r.MaxDB - r.MinDB
	if span < 0.01 {
		return 0.5
	}
	if db <= r.MinDB {
		return 0
	}
	if db >= r.MaxDB {
		return 1
	}
	return (db - r.MinDB) / span
}

// MapToIntensity converts a raw power value to a normalized display
// intensity against the given range.
func MapToIntensity(power float64, r IntensityRange) float64 {
	return r.Normalize(PowerDB(power))
}
