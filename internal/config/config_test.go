// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Engine.FFTSize != DefaultFFTSize {
		t.Errorf("FFTSize = %d, want %d", cfg.Engine.FFTSize, DefaultFFTSize)
	}
	if cfg.Engine.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %f, want %f", cfg.Engine.SampleRate, DefaultSampleRate)
	}
	if cfg.Engine.Window != DefaultWindow {
		t.Errorf("Window = %q, want %q", cfg.Engine.Window, DefaultWindow)
	}
	if cfg.Source.Kind != DefaultSourceKind {
		t.Errorf("Source.Kind = %q, want %q", cfg.Source.Kind, DefaultSourceKind)
	}
	if cfg.Source.Device != -1 {
		t.Errorf("Source.Device = %d, want -1 (system default)", cfg.Source.Device)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-power-of-two fft", func(c *Config) { c.Engine.FFTSize = 1000 }},
		{"zero fft", func(c *Config) { c.Engine.FFTSize = 0 }},
		{"negative fft", func(c *Config) { c.Engine.FFTSize = -4 }},
		{"oversized fft", func(c *Config) { c.Engine.FFTSize = MaxFFTSize * 2 }},
		{"zero sample rate", func(c *Config) { c.Engine.SampleRate = 0 }},
		{"negative sample rate", func(c *Config) { c.Engine.SampleRate = -48000 }},
		{"unknown window", func(c *Config) { c.Engine.Window = "kaiser" }},
		{"squelch below range", func(c *Config) { c.Engine.Squelch = -0.1 }},
		{"squelch above range", func(c *Config) { c.Engine.Squelch = 1.5 }},
		{"unknown source kind", func(c *Config) { c.Source.Kind = "hackrf" }},
		{"file source without path", func(c *Config) { c.Source.Kind = "file"; c.Source.Path = "" }},
		{"wav source without path", func(c *Config) { c.Source.Kind = "wav"; c.Source.Path = "" }},
		{"udp without target", func(c *Config) { c.Transport.UDPEnabled = true; c.Transport.UDPTargetAddress = "" }},
		{"websocket without addr", func(c *Config) { c.Transport.WebSocketEnabled = true; c.Transport.WebSocketAddr = "" }},
	}

	for _, tt := range tests {
		cfg := NewConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted an invalid config", tt.name)
		}
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.FFTSize != DefaultFFTSize {
		t.Errorf("FFTSize = %d without a config file, want %d", cfg.Engine.FFTSize, DefaultFFTSize)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
log_level: debug
engine:
  fft_size: 2048
  sample_rate: 96000
  window: blackman
  squelch: 0.25
source:
  kind: file
  path: capture.iq
  loop: true
transport:
  udp_enabled: true
  udp_target_address: "10.0.0.1:9090"
`
	path := filepath.Join(t.TempDir(), "iqscope.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Engine.FFTSize != 2048 {
		t.Errorf("FFTSize = %d, want 2048", cfg.Engine.FFTSize)
	}
	if cfg.Engine.SampleRate != 96000 {
		t.Errorf("SampleRate = %f, want 96000", cfg.Engine.SampleRate)
	}
	if cfg.Engine.Window != "blackman" {
		t.Errorf("Window = %q, want blackman", cfg.Engine.Window)
	}
	if cfg.Engine.Squelch != 0.25 {
		t.Errorf("Squelch = %f, want 0.25", cfg.Engine.Squelch)
	}
	if cfg.Source.Kind != "file" || cfg.Source.Path != "capture.iq" || !cfg.Source.Loop {
		t.Errorf("Source = %+v, want file capture.iq with loop", cfg.Source)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.1:9090" {
		t.Errorf("Transport = %+v, want UDP to 10.0.0.1:9090", cfg.Transport)
	}

	// Unspecified fields keep their defaults.
	if cfg.Engine.ChannelCapacity != DefaultChannelCapacity {
		t.Errorf("ChannelCapacity = %d, want default %d", cfg.Engine.ChannelCapacity, DefaultChannelCapacity)
	}
}

func TestLoadConfigSearchesWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	content := "engine:\n  fft_size: 8192\n"
	if err := os.WriteFile("iqscope.yaml", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.FFTSize != 8192 {
		t.Errorf("FFTSize = %d, want 8192 from iqscope.yaml", cfg.Engine.FFTSize)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for an explicitly named missing file")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine: [unbalanced"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iqscope.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  fft_size: 1000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected validation error for fft_size 1000")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("IQSCOPE_DEBUG", "true")
	t.Setenv("IQSCOPE_LOG_LEVEL", "warn")
	t.Setenv("IQSCOPE_WS_ADDR", ":9999")
	t.Setenv("IQSCOPE_UDP_TARGET", "192.168.1.10:5000")
	t.Setenv("IQSCOPE_SEND_INTERVAL", "50ms")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}

	if !cfg.Debug {
		t.Error("IQSCOPE_DEBUG not applied")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddr != ":9999" {
		t.Errorf("WebSocket transport = %+v, want enabled at :9999", cfg.Transport)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "192.168.1.10:5000" {
		t.Errorf("UDP transport = %+v, want enabled to 192.168.1.10:5000", cfg.Transport)
	}
	if cfg.Transport.SendInterval != 50*time.Millisecond {
		t.Errorf("SendInterval = %v, want 50ms", cfg.Transport.SendInterval)
	}
}

func TestEnvOverridesIgnoreMalformedValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("IQSCOPE_DEBUG", "not-a-bool")
	t.Setenv("IQSCOPE_SEND_INTERVAL", "not-a-duration")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Debug {
		t.Error("malformed IQSCOPE_DEBUG should be ignored")
	}
	if cfg.Transport.SendInterval != 33*time.Millisecond {
		t.Errorf("SendInterval = %v, want the 33ms default", cfg.Transport.SendInterval)
	}
}
