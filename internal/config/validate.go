package config

import (
	"fmt"

	"github.com/radio-control/indicator/internal/link"
)

// Validate checks structural and timing constraints before the node is
// allowed to start with a configuration.
func Validate(cfg *Config) error {
	if cfg.NumLeds < 1 {
		return fmt.Errorf("numLeds must be at least 1, got %d", cfg.NumLeds)
	}
	if len(cfg.LedPins) != cfg.NumLeds {
		return fmt.Errorf("ledPins must list %d pins, got %d", cfg.NumLeds, len(cfg.LedPins))
	}
	if cfg.NumLeds > 256 {
		return fmt.Errorf("numLeds must fit the 1-byte command value, got %d", cfg.NumLeds)
	}

	if _, err := link.ParseAddr(cfg.NodeAddr); err != nil {
		return fmt.Errorf("nodeAddr: %w", err)
	}
	for a := range cfg.Peers {
		if _, err := link.ParseAddr(a); err != nil {
			return fmt.Errorf("peers: %w", err)
		}
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q: want debug, info, warn or error", cfg.Log.Level)
	}

	t := cfg.Timing
	for _, d := range []struct {
		name string
		ms   int
	}{
		{"serialSettleMs", t.SerialSettleMs},
		{"modeSettleMs", t.ModeSettleMs},
		{"channelSettleMs", t.ChannelSettleMs},
		{"reinitSettleMs", t.ReinitSettleMs},
		{"ledTestOnMs", t.LedTestOnMs},
		{"ledTestOffMs", t.LedTestOffMs},
		{"ledTestFlashMs", t.LedTestFlashMs},
		{"ackSpacingMs", t.AckSpacingMs},
		{"peerRetryDelayMs", t.PeerRetryDelayMs},
		{"awakeAfterFrameMs", t.AwakeAfterFrameMs},
		{"awakeWindowMs", t.AwakeWindowMs},
		{"sleepDurationMs", t.SleepDurationMs},
		{"extendedAwakeMs", t.ExtendedAwakeMs},
		{"extendedAwakeGraceMs", t.ExtendedAwakeGraceMs},
		{"tickPaceMs", t.TickPaceMs},
		{"statusIntervalMs", t.StatusIntervalMs},
	} {
		if d.ms <= 0 {
			return fmt.Errorf("timing.%s must be positive, got %d", d.name, d.ms)
		}
	}
	if t.AckCount < 1 {
		return fmt.Errorf("timing.ackCount must be at least 1, got %d", t.AckCount)
	}
	if t.MaxSleepCycles < 1 {
		return fmt.Errorf("timing.maxSleepCycles must be at least 1, got %d", t.MaxSleepCycles)
	}
	if t.AwakeAfterFrameMs <= t.AwakeWindowMs {
		return fmt.Errorf("timing.awakeAfterFrameMs (%d) must exceed awakeWindowMs (%d)",
			t.AwakeAfterFrameMs, t.AwakeWindowMs)
	}
	if t.ExtendedAwakeMs <= t.AwakeAfterFrameMs {
		return fmt.Errorf("timing.extendedAwakeMs (%d) must exceed awakeAfterFrameMs (%d)",
			t.ExtendedAwakeMs, t.AwakeAfterFrameMs)
	}

	s := cfg.Sender
	if s.Target != "" {
		if _, err := link.ParseAddr(s.Target); err != nil {
			return fmt.Errorf("sender.target: %w", err)
		}
	}
	if s.Addr != "" {
		if _, err := link.ParseAddr(s.Addr); err != nil {
			return fmt.Errorf("sender.addr: %w", err)
		}
	}
	if s.RetryIntervalMs <= 0 || s.NextLedDelayMs <= 0 {
		return fmt.Errorf("sender retry timing must be positive")
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("sender.maxRetries must be at least 1, got %d", s.MaxRetries)
	}
	return nil
}
