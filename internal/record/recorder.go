// SPDX-License-Identifier: MIT
/*
Package record writes the raw IQ sample stream to a stereo WAV file
(left channel I, right channel Q, 32-bit PCM), the common exchange format
for receiver captures. Recording taps the stream through a source tee so
the processing pipeline is unaware of it.
*/
package record

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "iqscope/internal/log"
	"iqscope/internal/source"
)

const recordBitDepth = 32

// Recorder encodes complex sample blocks into a stereo WAV file.
type Recorder struct {
	active atomic.Int32 // 1 while the encoder accepts writes

	file      *os.File
	encoder   *wav.Encoder
	sampleBuf *audio.IntBuffer // reusable interleave buffer
}

// NewRecorder creates the output file and WAV encoder.
func NewRecorder(filename string, sampleRate float64) (*Recorder, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file: %w", err)
	}

	r := &Recorder{
		file:    file,
		encoder: wav.NewEncoder(file, int(sampleRate), recordBitDepth, 2, 1),
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 2,
				SampleRate:  int(sampleRate),
			},
		},
	}
	r.active.Store(1)

	applog.Infof("Record: Writing IQ capture to %s (%.0f Hz)", filename, sampleRate)
	return r, nil
}

// Write appends one block of samples to the file. Full-scale floats map to
// the int32 PCM range; out-of-range values are clipped.
func (r *Recorder) Write(block []complex64) error {
	if r.active.Load() == 0 {
		return fmt.Errorf("recorder is closed")
	}

	need := len(block) * 2
	if cap(r.sampleBuf.Data) < need {
		r.sampleBuf.Data = make([]int, need)
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:need]

	for i, v := range block {
		r.sampleBuf.Data[i*2] = clipToInt32(real(v))
		r.sampleBuf.Data[i*2+1] = clipToInt32(imag(v))
	}

	return r.encoder.Write(r.sampleBuf)
}

// Close finalizes the WAV header and releases the file.
func (r *Recorder) Close() error {
	if !r.active.CompareAndSwap(1, 0) {
		return nil
	}
	if err := r.encoder.Close(); err != nil {
		return err
	}
	return r.file.Close()
}

func clipToInt32(v float32) int {
	scaled := float64(v) * float64(math.MaxInt32)
	if scaled > math.MaxInt32 {
		return math.MaxInt32
	}
	if scaled < math.MinInt32 {
		return math.MinInt32
	}
	return int(scaled)
}

// Tee wraps a Source and copies every block read through it to a Recorder.
// Write failures are logged, not propagated: a full disk should not halt
// the live spectrum display.
type Tee struct {
	src source.Source
	rec *Recorder
}

// NewTee creates a recording tap around src.
func NewTee(src source.Source, rec *Recorder) *Tee {
	return &Tee{src: src, rec: rec}
}

// ReadBlock delegates to the wrapped source, then records the block.
func (t *Tee) ReadBlock(buf []complex64) error {
	if err := t.src.ReadBlock(buf); err != nil {
		return err
	}
	if err := t.rec.Write(buf); err != nil {
		applog.Errorf("Record: Error writing capture block: %v", err)
	}
	return nil
}

var _ source.Source = (*Tee)(nil)
