// SPDX-License-Identifier: MIT
/*
Package dsp implements the numeric stages of the spectrum pipeline:
analysis windowing and the power-spectrum transform. Both stages are
deterministic, pre-allocate their working buffers, and perform no
allocations in the processing path.
*/
package dsp

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the analysis window applied before the FFT.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

// String returns the canonical lowercase name of the window function.
func (w WindowFunc) String() string {
	switch w {
	case BartlettHann:
		return "bartletthann"
	case Blackman:
		return "blackman"
	case BlackmanNuttall:
		return "blackmannuttall"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Lanczos:
		return "lanczos"
	case Nuttall:
		return "nuttall"
	default:
		return "unknown"
	}
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc.
// Returns Hann and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: %q", name)
	}
}

// Window holds pre-computed window coefficients for a fixed block size.
// The window is a real-valued envelope: it scales the I and Q parts of each
// sample identically, leaving phase untouched.
type Window struct {
	kind   WindowFunc
	coeffs []float64
}

// NewWindow pre-computes coefficients for the given size and window kind.
// A size of 1 degenerates to a unity window since the window formulas divide
// by size-1.
func NewWindow(size int, kind WindowFunc) *Window {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	if size > 1 {
		applyWindow(coeffs, kind)
	}
	return &Window{kind: kind, coeffs: coeffs}
}

// Kind returns the window function this Window was built with.
func (w *Window) Kind() WindowFunc {
	return w.kind
}

// Size returns the block length the coefficients were computed for.
func (w *Window) Size() int {
	return len(w.coeffs)
}

// Apply writes the windowed block into dst. dst and src must both have the
// window's size; dst may alias src. Pure function of (src, coefficients):
// no hidden state, safe to call from any goroutine.
func (w *Window) Apply(dst, src []complex64) error {
	if len(src) != len(w.coeffs) || len(dst) != len(w.coeffs) {
		return fmt.Errorf("window size mismatch: window %d, src %d, dst %d",
			len(w.coeffs), len(src), len(dst))
	}
	for i, s := range src {
		c := float32(w.coeffs[i])
		dst[i] = complex(real(s)*c, imag(s)*c)
	}
	return nil
}

// Coefficients exposes the pre-computed coefficient slice for inspection.
// Callers must not modify it.
func (w *Window) Coefficients() []float64 {
	return w.coeffs
}

// applyWindow applies the selected gonum window function to the coefficient
// slice. The slice must be initialized to 1.0 beforehand since the window
// functions multiply in place.
func applyWindow(coeffs []float64, kind WindowFunc) {
	switch kind {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
}
