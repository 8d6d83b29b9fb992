// SPDX-License-Identifier: MIT
package graph

import "iqscope/internal/dsp"

// SpectrumFrame is one emitted power-spectrum result plus the configuration
// that produced it. Frames are immutable once constructed: the pipeline
// retains no reference after emission, and consumers must not modify Power.
//
// Power holds FFTSize magnitude-squared values in natural FFT order: bin 0
// is DC, bins above FFTSize/2 represent negative frequencies. No centering
// is performed; that is a presentation concern.
type SpectrumFrame struct {
	Power      []float64
	FFTSize    int
	SampleRate float64
	Seq        uint64 // monotonically increasing emission order
}

// BinFrequency returns the center frequency in Hz of bin i.
func (f *SpectrumFrame) BinFrequency(i int) float64 {
	return dsp.BinFrequency(i, f.FFTSize, f.SampleRate)
}

// PeakBin returns the index of the maximal-power bin.
func (f *SpectrumFrame) PeakBin() int {
	peak := 0
	for i, p := range f.Power {
		if p > f.Power[peak] {
			peak = i
		}
	}
	return peak
}
