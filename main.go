// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"iqscope/cmd"
	"iqscope/internal/config"
	"iqscope/internal/dsp"
	"iqscope/internal/graph"
	"iqscope/internal/history"
	applog "iqscope/internal/log"
	"iqscope/internal/record"
	"iqscope/internal/source"
	"iqscope/internal/transport"
	"iqscope/internal/tui"
	"iqscope/pkg/build"
)

// main is the entry point for the spectrum engine. The program flow is
// divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Parse command line arguments and configuration
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Open the IQ sample source (and recording tee)
//   - Start the processing graph
//   - Run the consumer loop feeding history and frame sinks
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals and terminal engine errors
//   - Stop the graph, close sinks, recorder, and source
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	build.Initialize()

	// One thread for the processing goroutine, one for the consumer/IO.
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Verbose || cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	if cfg.Command != "" {
		if err := executeCommand(cfg.Command); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}
	if !cfg.RunEngine {
		return
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	src, cleanup, err := openSource(cfg)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	var recorder *record.Recorder
	pipelineSrc := src
	if cfg.Recording.Enabled {
		recorder, err = record.NewRecorder(cfg.Recording.Output, cfg.Engine.SampleRate)
		if err != nil {
			cleanup()
			applog.Fatalf("%v", err)
		}
		pipelineSrc = record.NewTee(src, recorder)
	}

	windowKind, err := dsp.ParseWindowFunc(cfg.Engine.Window)
	if err != nil {
		cleanup()
		applog.Fatalf("%v", err)
	}

	exec := graph.NewExecutor(cfg.Engine.ChannelCapacity)
	exec.SetSquelchThreshold(cfg.Engine.Squelch)

	if err := exec.Start(graph.Config{
		FFTSize:    cfg.Engine.FFTSize,
		SampleRate: cfg.Engine.SampleRate,
		Window:     windowKind,
	}, pipelineSrc); err != nil {
		cleanup()
		applog.Fatalf("%v", err)
	}

	hist := history.New(cfg.Engine.HistoryLines)
	sinks := openSinks(cfg)

	consumerQuit := make(chan struct{})
	go consumeFrames(exec, hist, sinks, consumerQuit)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		applog.Infof("Received termination signal")
	case err := <-exec.Err():
		applog.Errorf("Engine halted: %v", err)
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	close(consumerQuit)
	exec.Stop()

	stats := exec.Stats()
	applog.Infof("Engine: %d frames emitted, %d dropped, %d reconfigurations",
		stats.FramesEmitted, stats.FramesDropped, stats.Reconfigures)

	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			applog.Errorf("Error closing sink: %v", err)
		}
	}
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			applog.Errorf("Error closing recorder: %v", err)
		} else {
			applog.Infof("Recording saved to: %s", cfg.Recording.Output)
		}
	}
	cleanup()
}

// openSource builds the configured sample source. The returned cleanup
// releases the source and any subsystem it needed (PortAudio).
func openSource(cfg *config.Config) (source.Source, func(), error) {
	noop := func() {}

	switch cfg.Source.Kind {
	case "signal":
		src, err := source.NewSignalSource(cfg.Engine.SampleRate, cfg.Source.ToneHz, cfg.Source.Amplitude)
		return src, noop, err

	case "file":
		src, err := source.NewFileIQSource(cfg.Source.Path, cfg.Source.Loop)
		if err != nil {
			return nil, noop, err
		}
		return src, func() { src.Close() }, nil

	case "wav":
		src, err := source.NewWavIQSource(cfg.Source.Path)
		if err != nil {
			return nil, noop, err
		}
		// The file header knows the true capture rate; honor it so the
		// frequency axis is correct.
		if rate := src.SampleRate(); rate != cfg.Engine.SampleRate {
			applog.Infof("Adopting sample rate %.0f Hz from WAV header", rate)
			cfg.Engine.SampleRate = rate
		}
		return src, func() { src.Close() }, nil

	case "soundcard":
		if err := source.Initialize(); err != nil {
			return nil, noop, err
		}
		src, err := source.NewSoundcardSource(cfg.Source.Device, cfg.Engine.SampleRate, cfg.Source.LowLatency)
		if err != nil {
			source.Terminate()
			return nil, noop, err
		}
		return src, func() {
			src.Close()
			source.Terminate()
		}, nil
	}

	// Unreachable: config validation rejects unknown kinds.
	return nil, noop, &graph.ConfigError{Field: "source.kind", Reason: "unknown " + cfg.Source.Kind}
}

// openSinks builds the configured external frame sinks.
func openSinks(cfg *config.Config) []transport.FrameSink {
	var sinks []transport.FrameSink
	if cfg.Transport.WebSocketEnabled {
		sinks = append(sinks, transport.NewWebSocketSink(cfg.Transport.WebSocketAddr, cfg.Transport.SendInterval))
	}
	if cfg.Transport.UDPEnabled {
		udp, err := transport.NewUDPSink(cfg.Transport.UDPTargetAddress, cfg.Transport.SendInterval)
		if err != nil {
			applog.Errorf("UDP sink disabled: %v", err)
		} else {
			sinks = append(sinks, udp)
		}
	}
	return sinks
}

// consumeFrames is the consumer loop: once per tick it drains every frame
// currently queued, feeding the history buffer and the external sinks.
// The poll never blocks; with no frames available the display keeps its
// stale state until the next tick.
func consumeFrames(exec *graph.Executor, hist *history.Buffer, sinks []transport.FrameSink, quit <-chan struct{}) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			for {
				frame, ok := exec.Frames().Poll()
				if !ok {
					break
				}
				hist.Insert(frame)
				for _, sink := range sinks {
					_ = sink.Consume(frame)
				}
			}
		}
	}
}

// executeCommand handles one-off commands that don't require the engine to
// be running.
func executeCommand(command string) error {
	switch command {
	case "list":
		if err := source.Initialize(); err != nil {
			return err
		}
		defer source.Terminate()
		return tui.RunDeviceList()
	}
	return nil
}
