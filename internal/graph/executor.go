// SPDX-License-Identifier: MIT
package graph

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	applog "iqscope/internal/log"
	"iqscope/internal/source"
)

// ErrStopped is returned by Reconfigure after the executor has been stopped.
var ErrStopped = errors.New("executor stopped")

// SourceError wraps a fatal sample-source failure. It is delivered once on
// the executor's error channel and terminates the processing goroutine;
// it is never retried and never swallowed.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("sample source failed: %v", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// reconfigRequest carries a validated candidate configuration to the
// processing goroutine and reports the outcome back to the caller.
type reconfigRequest struct {
	cfg  Config
	done chan error
}

// Executor owns the active pipeline and drives it on a dedicated goroutine:
// one block per iteration through source → window → FFT → emit. The producer
// side never blocks on frame delivery.
type Executor struct {
	out  *DeliveryChannel
	errc chan error
	cmds chan reconfigRequest
	quit chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
	started  atomic.Bool

	squelch atomic.Uint64 // float64 bits; 0 disables the gate

	framesEmitted   atomic.Uint64
	reconfigures    atomic.Uint64
	lastReconfigure atomic.Int64 // UnixNano, 0 = never
}

// Stats is a point-in-time snapshot of the executor's observability
// counters, readable without blocking the processing goroutine.
type Stats struct {
	FramesEmitted   uint64
	FramesDropped   uint64
	Reconfigures    uint64
	LastReconfigure time.Time
}

// NewExecutor creates an executor with a delivery channel of the given
// capacity (non-positive means DefaultChannelCapacity).
func NewExecutor(channelCapacity int) *Executor {
	return &Executor{
		out:  NewDeliveryChannel(channelCapacity),
		errc: make(chan error, 1),
		cmds: make(chan reconfigRequest),
		quit: make(chan struct{}),
	}
}

// Start validates cfg, builds the pipeline, and launches the processing
// goroutine. The call itself does not block. An executor runs at most one
// pipeline in its lifetime; Reconfigure handles configuration changes.
func (e *Executor) Start(cfg Config, src source.Source) error {
	if !e.started.CompareAndSwap(false, true) {
		return errors.New("executor already started")
	}

	p, err := newPipeline(cfg)
	if err != nil {
		e.started.Store(false)
		return err
	}

	applog.Infof("Graph: Starting pipeline (fft=%d, rate=%.0f Hz, window=%s)",
		cfg.FFTSize, cfg.SampleRate, cfg.Window)

	e.wg.Add(1)
	go e.run(p, src)
	return nil
}

// Reconfigure atomically replaces the active configuration. The swap happens
// at a block boundary: the processing goroutine builds a fresh pipeline,
// discards frames still queued from the old configuration, and only then
// acknowledges. Every frame emitted after Reconfigure returns carries the
// new configuration; no frame straddles two.
func (e *Executor) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	req := reconfigRequest{cfg: cfg, done: make(chan error, 1)}
	select {
	case e.cmds <- req:
	case <-e.quit:
		return ErrStopped
	}

	select {
	case err := <-req.done:
		return err
	case <-e.quit:
		return ErrStopped
	}
}

// Stop signals cooperative shutdown and joins the processing goroutine
// before returning, so repeated start/stop cycles leak no resources.
// Idempotent: subsequent calls have no additional effect.
func (e *Executor) Stop() {
	e.stopOnce.Do(func() {
		close(e.quit)
	})
	e.wg.Wait()
}

// Frames returns the delivery channel the consumer drains.
func (e *Executor) Frames() *DeliveryChannel {
	return e.out
}

// Err returns the terminal error channel. At most one SourceError is ever
// delivered; after that the processing goroutine has halted.
func (e *Executor) Err() <-chan error {
	return e.errc
}

// SetSquelchThreshold adjusts the amplitude gate applied before the
// transform, in the range 0.0-1.0 of full scale. Zero disables the gate.
// Safe to call while the pipeline is running.
func (e *Executor) SetSquelchThreshold(threshold float64) {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	e.squelch.Store(math.Float64bits(threshold))
}

// SquelchThreshold returns the current amplitude gate threshold.
func (e *Executor) SquelchThreshold() float64 {
	return math.Float64frombits(e.squelch.Load())
}

// Stats returns a snapshot of the observability counters.
func (e *Executor) Stats() Stats {
	s := Stats{
		FramesEmitted: e.framesEmitted.Load(),
		FramesDropped: e.out.Dropped(),
		Reconfigures:  e.reconfigures.Load(),
	}
	if ns := e.lastReconfigure.Load(); ns != 0 {
		s.LastReconfigure = time.Unix(0, ns)
	}
	return s
}

// run is the processing loop: one block per iteration, reconfiguration
// checked at block boundaries only.
func (e *Executor) run(p *pipeline, src source.Source) {
	defer e.wg.Done()

	var seq uint64
	for {
		select {
		case <-e.quit:
			applog.Debugf("Graph: Processing goroutine stopping")
			return
		case req := <-e.cmds:
			next, err := newPipeline(req.cfg)
			if err == nil {
				p = next
				if discarded := e.out.flush(); discarded > 0 {
					applog.Debugf("Graph: Discarded %d stale frames on reconfigure", discarded)
				}
				e.reconfigures.Add(1)
				e.lastReconfigure.Store(time.Now().UnixNano())
				applog.Infof("Graph: Reconfigured (fft=%d, rate=%.0f Hz, window=%s)",
					req.cfg.FFTSize, req.cfg.SampleRate, req.cfg.Window)
			}
			req.done <- err
			continue
		default:
		}

		frame, err := p.next(src, seq, e.SquelchThreshold())
		if err != nil {
			select {
			case e.errc <- &SourceError{Err: err}:
			default:
			}
			applog.Errorf("Graph: Halting pipeline: %v", err)
			return
		}
		if frame == nil {
			continue // squelched block
		}

		seq++
		if e.out.TrySend(frame) {
			e.framesEmitted.Add(1)
		}
	}
}
