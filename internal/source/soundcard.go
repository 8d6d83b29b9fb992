// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"

	applog "iqscope/internal/log"
)

// soundcardFramesPerRead is the granularity of reads from the device stream.
// Blocks requested by the pipeline are assembled from as many device reads
// as needed, so the FFT size is independent of this value.
const soundcardFramesPerRead = 512

// SoundcardSource captures IQ samples from a stereo line input: the left
// channel carries I, the right channel Q. This is how direct-conversion
// (softrock-style) receivers deliver baseband IQ through an audio interface.
type SoundcardSource struct {
	stream *portaudio.Stream
	raw    []int32     // interleaved device read buffer
	fifo   []complex64 // samples read from the device but not yet consumed
}

// NewSoundcardSource opens the input device in stereo at the given rate and
// starts the stream. deviceID -1 selects the system default input.
func NewSoundcardSource(deviceID int, sampleRate float64, lowLatency bool) (*SoundcardSource, error) {
	device, err := InputDevice(deviceID)
	if err != nil {
		return nil, err
	}
	if device.MaxInputChannels < 2 {
		return nil, fmt.Errorf("device %q has %d input channels, IQ capture needs 2",
			device.Name, device.MaxInputChannels)
	}

	latency := device.DefaultHighInputLatency
	if lowLatency {
		latency = device.DefaultLowInputLatency
	}

	s := &SoundcardSource{
		raw: make([]int32, soundcardFramesPerRead*2),
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 2,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: soundcardFramesPerRead,
		SampleRate:      sampleRate,
	}

	stream, err := portaudio.OpenStream(params, &s.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	s.stream = stream

	applog.Infof("Source: Soundcard IQ input %q (%.0f Hz, latency %s)", device.Name, sampleRate, latency)
	return s, nil
}

// ReadBlock fills buf from the device, blocking until a full block has been
// captured. The wait is intrinsic and matches the sample rate.
func (s *SoundcardSource) ReadBlock(buf []complex64) error {
	const normFactor = 1.0 / float64(math.MaxInt32+1)

	filled := copy(buf, s.fifo)
	s.fifo = s.fifo[:copy(s.fifo, s.fifo[filled:])]

	for filled < len(buf) {
		if err := s.stream.Read(); err != nil {
			return fmt.Errorf("failed to read input stream: %w", err)
		}
		for i := 0; i+1 < len(s.raw); i += 2 {
			sample := complex(
				float32(float64(s.raw[i])*normFactor),
				float32(float64(s.raw[i+1])*normFactor),
			)
			if filled < len(buf) {
				buf[filled] = sample
				filled++
			} else {
				s.fifo = append(s.fifo, sample)
			}
		}
	}
	return nil
}

// Close stops and releases the device stream.
func (s *SoundcardSource) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return err
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}

var _ ClosableSource = (*SoundcardSource)(nil)
