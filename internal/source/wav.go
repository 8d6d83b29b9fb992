// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "iqscope/internal/log"
)

// WavIQSource reads IQ samples from a stereo WAV file: the left channel
// carries I, the right channel Q. This is the common exchange format for
// soundcard-based receiver captures.
type WavIQSource struct {
	file    *os.File
	decoder *wav.Decoder
	norm    float64 // full-scale divisor derived from the file's bit depth

	pcm     *audio.IntBuffer // reusable decode buffer
	pending []complex64      // decoded samples not yet handed out
}

// NewWavIQSource opens a stereo WAV file as an IQ sample source.
func NewWavIQSource(path string) (*WavIQSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}
	if decoder.NumChans != 2 {
		file.Close()
		return nil, fmt.Errorf("IQ WAV input requires 2 channels, got %d", decoder.NumChans)
	}

	applog.Infof("Source: WAV IQ input %s (%d Hz, %d-bit)", path, decoder.SampleRate, decoder.BitDepth)

	return &WavIQSource{
		file:    file,
		decoder: decoder,
		norm:    float64(int64(1) << (decoder.BitDepth - 1)),
		pcm: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 2,
				SampleRate:  int(decoder.SampleRate),
			},
			Data: make([]int, 4096),
		},
	}, nil
}

// SampleRate returns the sample rate declared by the WAV header.
func (s *WavIQSource) SampleRate() float64 {
	return float64(s.decoder.SampleRate)
}

// ReadBlock fills buf with decoded samples, pulling more PCM frames from the
// decoder as needed. Returns io.EOF once the file is exhausted.
func (s *WavIQSource) ReadBlock(buf []complex64) error {
	filled := copy(buf, s.pending)
	s.pending = s.pending[:copy(s.pending, s.pending[filled:])]

	for filled < len(buf) {
		n, err := s.decoder.PCMBuffer(s.pcm)
		if err != nil {
			return fmt.Errorf("failed to decode WAV data: %w", err)
		}
		if n == 0 {
			return io.EOF
		}

		// n is a count of interleaved ints; an odd trailing value cannot
		// form a complete IQ pair and is discarded.
		for i := 0; i+1 < n; i += 2 {
			sample := complex(
				float32(float64(s.pcm.Data[i])/s.norm),
				float32(float64(s.pcm.Data[i+1])/s.norm),
			)
			if filled < len(buf) {
				buf[filled] = sample
				filled++
			} else {
				s.pending = append(s.pending, sample)
			}
		}
	}
	return nil
}

// Close releases the underlying file handle.
func (s *WavIQSource) Close() error {
	return s.file.Close()
}

var _ ClosableSource = (*WavIQSource)(nil)
