// Package config carries every tunable of the indicator node: LED
// wiring, link addressing, and the protocol timing table. Durations are
// integer milliseconds to match the wire-level timing they gate.
package config

// Config is the root configuration for both binaries.
type Config struct {
	// LED bank
	NumLeds   int   `yaml:"numLeds"`
	LedPins   []int `yaml:"ledPins"`
	ActiveLow bool  `yaml:"activeLow"`

	// Link addressing
	Channel  uint8             `yaml:"channel"`
	NodeAddr string            `yaml:"nodeAddr"`
	Listen   string            `yaml:"listen"`
	Peers    map[string]string `yaml:"peers"` // link address -> host:port endpoint seed

	// Persistent peer store location
	StatePath string `yaml:"statePath"`

	Log    Log    `yaml:"log"`
	Timing Timing `yaml:"timing"`
	Sender Sender `yaml:"sender"`
}

// Log configures the diagnostic side channel.
type Log struct {
	// Path of the rotated log file; empty logs to stderr.
	Path       string `yaml:"path"`
	MaxSizeMb  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	Level      string `yaml:"level"` // debug, info, warn, error
}

// Timing is the protocol timing table. The baseline values model the
// hardware settling and duty-cycle cadence of the original device.
type Timing struct {
	// Bring-up settling dwells
	SerialSettleMs  int `yaml:"serialSettleMs"`
	ModeSettleMs    int `yaml:"modeSettleMs"`
	ChannelSettleMs int `yaml:"channelSettleMs"`
	ReinitSettleMs  int `yaml:"reinitSettleMs"`

	// Boot LED self-test
	LedTestOnMs    int `yaml:"ledTestOnMs"`
	LedTestOffMs   int `yaml:"ledTestOffMs"`
	LedTestFlashMs int `yaml:"ledTestFlashMs"`

	// Acknowledgment burst
	AckCount         int `yaml:"ackCount"`
	AckSpacingMs     int `yaml:"ackSpacingMs"`
	PeerRetryDelayMs int `yaml:"peerRetryDelayMs"`

	// Sleep/wake duty cycle
	AwakeAfterFrameMs    int `yaml:"awakeAfterFrameMs"`
	AwakeWindowMs        int `yaml:"awakeWindowMs"`
	SleepDurationMs      int `yaml:"sleepDurationMs"`
	MaxSleepCycles       int `yaml:"maxSleepCycles"`
	ExtendedAwakeMs      int `yaml:"extendedAwakeMs"`
	ExtendedAwakeGraceMs int `yaml:"extendedAwakeGraceMs"`

	// Tick loop pacing and status cadence
	TickPaceMs       int `yaml:"tickPaceMs"`
	StatusIntervalMs int `yaml:"statusIntervalMs"`
}

// Sender configures the peer (commander) binary.
type Sender struct {
	Addr            string `yaml:"addr"`
	Listen          string `yaml:"listen"`
	Target          string `yaml:"target"`
	RetryIntervalMs int    `yaml:"retryIntervalMs"`
	MaxRetries      int    `yaml:"maxRetries"`
	NextLedDelayMs  int    `yaml:"nextLedDelayMs"`
	Discover        bool   `yaml:"discover"`
}

// Default returns the baseline configuration, mirroring the timing
// constants the protocol was tuned with. The 300 ms awake / 1700 ms
// asleep cadence bounds average power draw while the cycle cap bounds
// worst-case reachability latency.
func Default() *Config {
	return &Config{
		NumLeds:   3,
		LedPins:   []int{25, 26, 27},
		ActiveLow: true,

		Channel:  6,
		NodeAddr: "E8:31:CD:C6:FE:68",
		Listen:   ":47360",
		Peers:    map[string]string{},

		StatePath: "indicator-peer.state",

		Log: Log{
			Path:       "",
			MaxSizeMb:  5,
			MaxBackups: 3,
			Level:      "info",
		},

		Timing: Timing{
			SerialSettleMs:  500,
			ModeSettleMs:    300,
			ChannelSettleMs: 100,
			ReinitSettleMs:  20,

			LedTestOnMs:    300,
			LedTestOffMs:   100,
			LedTestFlashMs: 300,

			AckCount:         3,
			AckSpacingMs:     20,
			PeerRetryDelayMs: 10,

			AwakeAfterFrameMs:    3000,
			AwakeWindowMs:        300,
			SleepDurationMs:      1700,
			MaxSleepCycles:       10,
			ExtendedAwakeMs:      10000,
			ExtendedAwakeGraceMs: 100,

			TickPaceMs:       10,
			StatusIntervalMs: 10000,
		},

		Sender: Sender{
			Addr:            "24:6F:28:AA:10:02",
			Listen:          ":47361",
			Target:          "E8:31:CD:C6:FE:68",
			RetryIntervalMs: 500,
			MaxRetries:      12,
			NextLedDelayMs:  10000,
			Discover:        true,
		},
	}
}
