// SPDX-License-Identifier: MIT
package record

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"iqscope/internal/source"
)

func TestClipToInt32(t *testing.T) {
	tests := []struct {
		value    float32
		expected int
	}{
		{0, 0},
		{1.0, math.MaxInt32},
		{1.5, math.MaxInt32},
		{-1.5, math.MinInt32},
		{0.5, int(0.5 * float64(math.MaxInt32))},
	}

	for _, tt := range tests {
		if got := clipToInt32(tt.value); got != tt.expected {
			t.Errorf("clipToInt32(%g) = %d, want %d", tt.value, got, tt.expected)
		}
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")

	rec, err := NewRecorder(path, 48000)
	if err != nil {
		t.Fatal(err)
	}

	block := make([]complex64, 256)
	for i := range block {
		block[i] = complex(float32(i)/512, -float32(i)/512)
	}
	if err := rec.Write(block); err != nil {
		t.Fatal(err)
	}
	if err := rec.Write(block); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		t.Fatal("recorded file is not a valid WAV")
	}
	if dec.NumChans != 2 {
		t.Errorf("NumChans = %d, want 2 (I and Q)", dec.NumChans)
	}
	if dec.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", dec.SampleRate)
	}
	if dec.BitDepth != recordBitDepth {
		t.Errorf("BitDepth = %d, want %d", dec.BitDepth, recordBitDepth)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(pcm.Data); got != 2*2*256 {
		t.Fatalf("decoded %d values, want %d", got, 2*2*256)
	}

	// Spot-check the interleaved I/Q values against the written block.
	for i := 0; i < 8; i++ {
		wantI := clipToInt32(real(block[i]))
		wantQ := clipToInt32(imag(block[i]))
		if pcm.Data[i*2] != wantI || pcm.Data[i*2+1] != wantQ {
			t.Errorf("sample %d = (%d, %d), want (%d, %d)",
				i, pcm.Data[i*2], pcm.Data[i*2+1], wantI, wantQ)
		}
	}
}

func TestRecorderRejectsWriteAfterClose(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "capture.wav"), 48000)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	if err := rec.Write(make([]complex64, 16)); err == nil {
		t.Error("Write after Close should fail")
	}
	// Double close is a no-op.
	if err := rec.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
}

func TestTeeRecordsWhileDelegating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")
	rec, err := NewRecorder(path, 48000)
	if err != nil {
		t.Fatal(err)
	}

	src, err := source.NewSignalSource(48000, 10000, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	tee := NewTee(src, rec)

	buf := make([]complex64, 128)
	for block := 0; block < 3; block++ {
		if err := tee.ReadBlock(buf); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(pcm.Data); got != 2*3*128 {
		t.Errorf("decoded %d values, want %d", got, 2*3*128)
	}
}

func TestTeeSurvivesRecorderFailure(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "capture.wav"), 48000)
	if err != nil {
		t.Fatal(err)
	}
	rec.Close()

	src, err := source.NewSignalSource(48000, 10000, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	tee := NewTee(src, rec)

	// The source keeps flowing even though every recorder write fails.
	if err := tee.ReadBlock(make([]complex64, 64)); err != nil {
		t.Errorf("ReadBlock failed because of a closed recorder: %v", err)
	}
}
