// SPDX-License-Identifier: MIT
//
// Package config holds the application configuration: built-in defaults,
// YAML file loading, environment overrides, and validation. The engine's
// runtime invariants (power-of-two FFT size, positive sample rate) are
// enforced here before anything reaches the processing graph.
package config

import (
	"fmt"
	"time"

	"iqscope/internal/dsp"
	"iqscope/pkg/bitint"
)

// Core configuration constants defining boundaries and defaults.
const (
	DefaultFFTSize         = 4096
	DefaultSampleRate      = 48000.0
	DefaultWindow          = "hann"
	DefaultChannelCapacity = 16
	DefaultHistoryLines    = 512

	DefaultSourceKind = "signal"
	DefaultToneHz     = 10000.0
	DefaultAmplitude  = 1.0

	MaxFFTSize = 1 << 20 // beyond this a single block stalls the display
)

// Config is the main application configuration, loaded from YAML and
// overridden by environment variables and CLI flags.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	Engine    EngineConfig    `yaml:"engine"`
	Source    SourceConfig    `yaml:"source"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`

	// Command and RunEngine are CLI plumbing, never persisted.
	Command   string `yaml:"-"`
	RunEngine bool   `yaml:"-"`
	Verbose   bool   `yaml:"-"`
}

// EngineConfig holds the processing graph settings.
type EngineConfig struct {
	FFTSize         int     `yaml:"fft_size"`         // transform size (power of 2)
	SampleRate      float64 `yaml:"sample_rate"`      // sample rate in Hz
	Window          string  `yaml:"window"`           // analysis window name (e.g. "hann")
	ChannelCapacity int     `yaml:"channel_capacity"` // delivery channel depth in frames
	HistoryLines    int     `yaml:"history_lines"`    // waterfall history depth
	Squelch         float64 `yaml:"squelch"`          // amplitude gate 0.0-1.0, 0 disables
}

// SourceConfig selects and parameterizes the IQ sample source.
type SourceConfig struct {
	Kind       string  `yaml:"kind"`        // "signal", "file", "wav", or "soundcard"
	ToneHz     float64 `yaml:"tone_hz"`     // signal source: tone frequency
	Amplitude  float64 `yaml:"amplitude"`   // signal source: tone amplitude
	Path       string  `yaml:"path"`        // file/wav source: input path
	Loop       bool    `yaml:"loop"`        // file source: restart on EOF
	Device     int     `yaml:"device"`      // soundcard source: device ID (-1 = default)
	LowLatency bool    `yaml:"low_latency"` // soundcard source: request low latency
}

// RecordingConfig controls the IQ capture tee.
type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"` // WAV file path; auto-generated when empty
}

// TransportConfig controls the external frame sinks.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddr    string        `yaml:"websocket_addr"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	SendInterval     time.Duration `yaml:"send_interval"` // sink rate limit
}

// NewConfig returns a Config populated with built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Engine: EngineConfig{
			FFTSize:         DefaultFFTSize,
			SampleRate:      DefaultSampleRate,
			Window:          DefaultWindow,
			ChannelCapacity: DefaultChannelCapacity,
			HistoryLines:    DefaultHistoryLines,
		},
		Source: SourceConfig{
			Kind:      DefaultSourceKind,
			ToneHz:    DefaultToneHz,
			Amplitude: DefaultAmplitude,
			Device:    -1,
		},
		Recording: RecordingConfig{
			Enabled: false,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			SendInterval:     33 * time.Millisecond, // ~30 Hz
		},
	}
}

// Validate rejects configurations that would violate engine invariants.
// Invalid values are rejected outright, never silently clamped.
func (c *Config) Validate() error {
	if !bitint.IsPowerOfTwo(c.Engine.FFTSize) {
		return fmt.Errorf("engine.fft_size must be a positive power of 2, got %d (nearest: %d)",
			c.Engine.FFTSize, bitint.NextPowerOfTwo(c.Engine.FFTSize))
	}
	if c.Engine.FFTSize > MaxFFTSize {
		return fmt.Errorf("engine.fft_size %d exceeds maximum %d", c.Engine.FFTSize, MaxFFTSize)
	}
	if c.Engine.SampleRate <= 0 {
		return fmt.Errorf("engine.sample_rate must be positive, got %f", c.Engine.SampleRate)
	}
	if _, err := dsp.ParseWindowFunc(c.Engine.Window); err != nil {
		return fmt.Errorf("engine.window: %w", err)
	}
	if c.Engine.Squelch < 0 || c.Engine.Squelch > 1 {
		return fmt.Errorf("engine.squelch must be within 0.0-1.0, got %f", c.Engine.Squelch)
	}

	switch c.Source.Kind {
	case "signal":
		// Tone parameters are checked by the source against the sample rate.
	case "file", "wav":
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for source kind %q", c.Source.Kind)
		}
	case "soundcard":
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if c.Transport.UDPEnabled && c.Transport.UDPTargetAddress == "" {
		return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
	}
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddr == "" {
		return fmt.Errorf("transport.websocket_addr must be set when WebSocket is enabled")
	}

	return nil
}
