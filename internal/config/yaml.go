// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at path. If path is empty
// it searches default locations; when no file is found the built-in defaults
// apply. Environment variable overrides are applied after loading, then the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"iqscope.yaml",
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies IQSCOPE_* environment variables on top of the
// loaded configuration. Env wins over file, CLI flags win over env.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("IQSCOPE_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("IQSCOPE_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("IQSCOPE_WS_ADDR"); ok {
		cfg.Transport.WebSocketEnabled = true
		cfg.Transport.WebSocketAddr = val
	}
	if val, ok := os.LookupEnv("IQSCOPE_UDP_TARGET"); ok {
		cfg.Transport.UDPEnabled = true
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("IQSCOPE_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.SendInterval = dur
		}
	}
}
