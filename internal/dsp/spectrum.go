// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"iqscope/pkg/bitint"
)

// spectrumWorkspace holds pre-allocated buffers for the complex FFT.
type spectrumWorkspace struct {
	input []complex128 // widened copy of the complex64 input block
	coeff []complex128 // FFT complex output, natural order
}

// Spectrum computes power spectra of complex sample blocks using gonum's
// complex FFT. Output bin 0 is the DC component; the upper half of the
// output represents negative frequencies. No fftshift is performed here,
// centering is a presentation concern left to the consumer.
type Spectrum struct {
	fftSize   int
	fftObj    *fourier.CmplxFFT
	workspace spectrumWorkspace
}

// NewSpectrum creates a power-spectrum transform for blocks of fftSize
// complex samples. fftSize must be a positive power of 2.
func NewSpectrum(fftSize int) (*Spectrum, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}

	return &Spectrum{
		fftSize: fftSize,
		fftObj:  fourier.NewCmplxFFT(fftSize),
		workspace: spectrumWorkspace{
			input: make([]complex128, fftSize),
			coeff: make([]complex128, fftSize),
		},
	}, nil
}

// Size returns the transform size (number of bins).
func (s *Spectrum) Size() int {
	return s.fftSize
}

// Compute performs the FFT on block and writes magnitude-squared power per
// bin into power. Both slices must have length fftSize. For finite input the
// output is finite and non-negative. Not safe for concurrent use: the
// workspace buffers are reused across calls.
func (s *Spectrum) Compute(block []complex64, power []float64) error {
	if len(block) != s.fftSize || len(power) != s.fftSize {
		return fmt.Errorf("block size mismatch: transform %d, block %d, power %d",
			s.fftSize, len(block), len(power))
	}

	for i, v := range block {
		s.workspace.input[i] = complex(float64(real(v)), float64(imag(v)))
	}

	s.fftObj.Coefficients(s.workspace.coeff, s.workspace.input)

	// Magnitude squared rather than magnitude, to match the dB convention
	// (10*log10) used by the intensity mapping downstream.
	for i, c := range s.workspace.coeff {
		re, im := real(c), imag(c)
		power[i] = re*re + im*im
	}

	return nil
}

// BinFrequency returns the center frequency in Hz of an FFT bin for the given
// transform size and sample rate: bin * rate / size. Bins above size/2 map to
// negative frequencies.
func BinFrequency(bin, fftSize int, sampleRate float64) float64 {
	if fftSize <= 0 || bin < 0 || bin >= fftSize {
		return 0
	}
	if bin > fftSize/2 {
		bin -= fftSize
	}
	return float64(bin) * sampleRate / float64(fftSize)
}
