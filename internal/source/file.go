// SPDX-License-Identifier: MIT
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	applog "iqscope/internal/log"
)

// FileIQSource reads raw IQ samples from disk: interleaved I/Q pairs as
// little-endian float32, the de-facto layout of SDR capture files.
// With loop enabled the file restarts from the beginning on EOF, so the
// source never runs dry; without it, EOF is a terminal error for the
// pipeline.
type FileIQSource struct {
	file *os.File
	loop bool

	byteBuf []byte // scratch for raw reads, grown to the largest block seen
}

const bytesPerSample = 8 // two float32 values per complex sample

// NewFileIQSource opens path for reading.
func NewFileIQSource(path string, loop bool) (*FileIQSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open IQ file: %w", err)
	}
	return &FileIQSource{file: file, loop: loop}, nil
}

// ReadBlock fills buf with samples from the file. Short reads from the OS
// are retried until the block is complete; a mid-block EOF with looping
// enabled wraps to the start of the file and keeps filling.
func (s *FileIQSource) ReadBlock(buf []complex64) error {
	need := len(buf) * bytesPerSample
	if cap(s.byteBuf) < need {
		s.byteBuf = make([]byte, need)
	}
	raw := s.byteBuf[:need]

	filled := 0
	for filled < need {
		n, err := s.file.Read(raw[filled:])
		filled += n
		if err == io.EOF {
			if !s.loop {
				if filled == 0 {
					return io.EOF
				}
				return io.ErrUnexpectedEOF
			}
			if _, serr := s.file.Seek(0, io.SeekStart); serr != nil {
				return fmt.Errorf("failed to rewind IQ file: %w", serr)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read IQ file: %w", err)
		}
	}

	for i := range buf {
		off := i * bytesPerSample
		re := math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4:]))
		buf[i] = complex(re, im)
	}
	return nil
}

// Close releases the underlying file handle.
func (s *FileIQSource) Close() error {
	applog.Debugf("Source: Closing IQ file %s", s.file.Name())
	return s.file.Close()
}

var _ ClosableSource = (*FileIQSource)(nil)
