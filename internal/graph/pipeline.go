// SPDX-License-Identifier: MIT
package graph

import (
	"math"

	"iqscope/internal/dsp"
	"iqscope/internal/source"
)

// pipeline is the fixed stage topology for one configuration: a block
// buffer, the analysis window, and the spectral transform. Reconfiguration
// constructs a fresh pipeline and swaps it in whole rather than mutating
// live stage state, so a partially updated topology is never observable.
type pipeline struct {
	cfg      Config
	block    []complex64 // raw block, owned by the pipeline until windowed
	windowed []complex64
	window   *dsp.Window
	spectrum *dsp.Spectrum
}

func newPipeline(cfg Config) (*pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spectrum, err := dsp.NewSpectrum(cfg.FFTSize)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		cfg:      cfg,
		block:    make([]complex64, cfg.FFTSize),
		windowed: make([]complex64, cfg.FFTSize),
		window:   dsp.NewWindow(cfg.FFTSize, cfg.Window),
		spectrum: spectrum,
	}, nil
}

// next reads one block from the source and runs it through the stages,
// producing a finished frame. The Power slice is freshly allocated per frame
// because ownership transfers to the consumer on delivery.
// Returns (nil, nil) when the block was squelched.
func (p *pipeline) next(src source.Source, seq uint64, squelch float64) (*SpectrumFrame, error) {
	if err := src.ReadBlock(p.block); err != nil {
		return nil, err
	}
	sanitizeBlock(p.block)

	if squelch > 0 && peakAmplitude(p.block) < squelch {
		return nil, nil
	}

	if err := p.window.Apply(p.windowed, p.block); err != nil {
		return nil, err
	}

	power := make([]float64, p.cfg.FFTSize)
	if err := p.spectrum.Compute(p.windowed, power); err != nil {
		return nil, err
	}

	return &SpectrumFrame{
		Power:      power,
		FFTSize:    p.cfg.FFTSize,
		SampleRate: p.cfg.SampleRate,
		Seq:        seq,
	}, nil
}

// sanitizeBlock clamps non-finite samples to zero at ingestion so NaN and
// Inf never reach the transform.
func sanitizeBlock(block []complex64) {
	for i, v := range block {
		re, im := real(v), imag(v)
		if !isFinite(re) || !isFinite(im) {
			if !isFinite(re) {
				re = 0
			}
			if !isFinite(im) {
				im = 0
			}
			block[i] = complex(re, im)
		}
	}
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// peakAmplitude returns the largest |I| or |Q| component in the block.
// Used by the squelch gate to skip transform work on silent input.
func peakAmplitude(block []complex64) float64 {
	var peak float32
	for _, v := range block {
		re, im := real(v), imag(v)
		if re < 0 {
			re = -re
		}
		if im < 0 {
			im = -im
		}
		if re > peak {
			peak = re
		}
		if im > peak {
			peak = im
		}
	}
	return float64(peak)
}
