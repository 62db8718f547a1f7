package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// DefaultPath is consulted when Load is called with an empty path.
const DefaultPath = "indicator.yaml"

// Load merges Default() + optional YAML file + INDICATOR_* environment
// overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays settings from a YAML file onto cfg; fields the
// file does not mention keep their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies INDICATOR_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INDICATOR_NODE_ADDR"); v != "" {
		cfg.NodeAddr = v
	}
	if v := os.Getenv("INDICATOR_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("INDICATOR_CHANNEL"); v != "" {
		if ch, err := strconv.ParseUint(v, 10, 8); err == nil {
			cfg.Channel = uint8(ch)
		}
	}
	if v := os.Getenv("INDICATOR_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("INDICATOR_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	if v := os.Getenv("INDICATOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	applyIntEnv("INDICATOR_TIMING_AWAKE_AFTER_FRAME_MS", &cfg.Timing.AwakeAfterFrameMs)
	applyIntEnv("INDICATOR_TIMING_AWAKE_WINDOW_MS", &cfg.Timing.AwakeWindowMs)
	applyIntEnv("INDICATOR_TIMING_SLEEP_DURATION_MS", &cfg.Timing.SleepDurationMs)
	applyIntEnv("INDICATOR_TIMING_MAX_SLEEP_CYCLES", &cfg.Timing.MaxSleepCycles)
	applyIntEnv("INDICATOR_TIMING_ACK_COUNT", &cfg.Timing.AckCount)
	applyIntEnv("INDICATOR_TIMING_ACK_SPACING_MS", &cfg.Timing.AckSpacingMs)

	if v := os.Getenv("INDICATOR_SENDER_TARGET"); v != "" {
		cfg.Sender.Target = v
	}
	if v := os.Getenv("INDICATOR_SENDER_LISTEN"); v != "" {
		cfg.Sender.Listen = v
	}
}

func applyIntEnv(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
