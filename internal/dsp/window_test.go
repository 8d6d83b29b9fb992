// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name     string
		expected WindowFunc
		wantErr  bool
	}{
		{"hann", Hann, false},
		{"Hanning", Hann, false},
		{"HAMMING", Hamming, false},
		{"blackman", Blackman, false},
		{"blackmannuttall", BlackmanNuttall, false},
		{"bartletthann", BartlettHann, false},
		{"lanczos", Lanczos, false},
		{"nuttall", Nuttall, false},
		{"kaiser", Hann, true},
		{"", Hann, true},
	}

	for _, tt := range tests {
		got, err := ParseWindowFunc(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindowFunc(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseWindowFunc(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestWindowSizeOneIsUnity(t *testing.T) {
	w := NewWindow(1, Hann)

	coeffs := w.Coefficients()
	if len(coeffs) != 1 {
		t.Fatalf("expected 1 coefficient, got %d", len(coeffs))
	}
	if coeffs[0] != 1.0 {
		t.Errorf("size-1 window must degenerate to unity, got %f", coeffs[0])
	}

	in := []complex64{complex(0.5, -0.25)}
	out := make([]complex64, 1)
	if err := w.Apply(out, in); err != nil {
		t.Fatal(err)
	}
	if out[0] != in[0] {
		t.Errorf("size-1 window changed the sample: %v -> %v", in[0], out[0])
	}
}

func TestHannShape(t *testing.T) {
	// Odd size puts the window maximum exactly at the center index.
	w := NewWindow(9, Hann)
	coeffs := w.Coefficients()

	if math.Abs(coeffs[0]) > 1e-12 {
		t.Errorf("Hann endpoint should be ~0, got %g", coeffs[0])
	}
	if math.Abs(coeffs[4]-1.0) > 1e-12 {
		t.Errorf("Hann center should be 1.0, got %g", coeffs[4])
	}
	// Symmetry.
	for i := 0; i < 4; i++ {
		if math.Abs(coeffs[i]-coeffs[8-i]) > 1e-12 {
			t.Errorf("Hann window not symmetric at %d: %g vs %g", i, coeffs[i], coeffs[8-i])
		}
	}
}

func TestWindowPreservesPhase(t *testing.T) {
	// The window is a real envelope: I and Q must be scaled identically.
	w := NewWindow(64, Hamming)
	coeffs := w.Coefficients()

	in := make([]complex64, 64)
	for i := range in {
		in[i] = complex(float32(i)+1, -2*(float32(i)+1))
	}
	out := make([]complex64, 64)
	if err := w.Apply(out, in); err != nil {
		t.Fatal(err)
	}

	for i := range out {
		c := float32(coeffs[i])
		wantRe := real(in[i]) * c
		wantIm := imag(in[i]) * c
		if math.Abs(float64(real(out[i])-wantRe)) > 1e-6 ||
			math.Abs(float64(imag(out[i])-wantIm)) > 1e-6 {
			t.Fatalf("bin %d: got %v, want (%g, %g)", i, out[i], wantRe, wantIm)
		}
	}
}

func TestWindowDeterministic(t *testing.T) {
	a := NewWindow(256, Blackman)
	b := NewWindow(256, Blackman)

	ca, cb := a.Coefficients(), b.Coefficients()
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("coefficient %d differs between identical windows: %g vs %g", i, ca[i], cb[i])
		}
	}
}

func TestWindowApplySizeMismatch(t *testing.T) {
	w := NewWindow(16, Hann)

	if err := w.Apply(make([]complex64, 16), make([]complex64, 8)); err == nil {
		t.Error("expected error for short source block")
	}
	if err := w.Apply(make([]complex64, 8), make([]complex64, 16)); err == nil {
		t.Error("expected error for short destination block")
	}
}

func TestWindowApplyHotPath(t *testing.T) {
	w := NewWindow(1024, Hann)
	in := make([]complex64, 1024)
	out := make([]complex64, 1024)
	for i := range in {
		in[i] = complex(float32(i%7), float32(i%5))
	}

	allocs := testing.AllocsPerRun(100, func() {
		_ = w.Apply(out, in)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in window apply, got %.1f", allocs)
	}
}
