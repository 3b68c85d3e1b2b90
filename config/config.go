// Package config loads the board description: tick rate, LED and button
// pins, button timings and output engine defaults. All durations are in
// ticks of the board timer.
package config

import (
	"encoding/json"
	"fmt"

	"blinky/core"
	"blinky/errcode"
	"blinky/x/mathx"
)

// MaxChannels bounds the LED bank size
const MaxChannels = 16

// Config is the JSON board description
type Config struct {
	TickHz      uint32         `json:"tick_hz"`
	DefaultMode string         `json:"default_mode"`
	Pins        PinConfig      `json:"pins"`
	Button      ButtonConfig   `json:"button"`
	Wave        WaveConfig     `json:"wave"`
	Sequence    SequenceConfig `json:"sequence"`
	QueueDepth  int            `json:"queue_depth"`
}

// PinConfig names the GPIO numbers used by the board
type PinConfig struct {
	LEDs         []uint32 `json:"leds"`
	LEDActiveLow bool     `json:"led_active_low"`
	Button       uint32   `json:"button"`
	Status       *uint32  `json:"status,omitempty"`
	StatusKind   string   `json:"status_kind"` // "gpio" or "ws2812"
}

type ButtonConfig struct {
	Active           string `json:"active"` // "low" or "high"
	DebounceTicks    uint32 `json:"debounce_ticks"`
	HoldTicks        uint32 `json:"hold_ticks"`
	ClickSeriesTicks uint32 `json:"click_series_ticks"`
	MaxClicks        uint8  `json:"max_clicks"`
	ClickResetTicks  uint32 `json:"click_reset_ticks"`
	PollTicks        uint32 `json:"poll_ticks"`
}

type WaveConfig struct {
	Period      uint32 `json:"period"`
	Speed       uint32 `json:"speed"`
	MinInterval uint32 `json:"min_interval"`
	Carrier     string `json:"carrier"` // "tick" or "per_channel"
}

type SequenceConfig struct {
	StepTicks uint32 `json:"step_ticks"`
}

// Load parses a JSON configuration, fills in defaults and validates it
func Load(jsonData []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("parse board config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the reference board: four LEDs, an active-low button
// and a 1 kHz tick.
func Default() *Config {
	cfg := &Config{
		Pins: PinConfig{LEDs: []uint32{2, 3, 4, 5}, Button: 15},
		Button: ButtonConfig{
			ClickResetTicks: 2000,
		},
	}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in missing values
func applyDefaults(cfg *Config) {
	if cfg.TickHz == 0 {
		cfg.TickHz = 1000
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = core.ModePWM.String()
	}
	if cfg.Pins.StatusKind == "" {
		cfg.Pins.StatusKind = "gpio"
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = 8
	}

	b := &cfg.Button
	if b.Active == "" {
		b.Active = "low"
	}
	if b.DebounceTicks == 0 {
		b.DebounceTicks = 25
	}
	if b.HoldTicks == 0 {
		b.HoldTicks = 2000
	}
	if b.ClickSeriesTicks == 0 {
		b.ClickSeriesTicks = 5000
	}
	if b.MaxClicks == 0 {
		b.MaxClicks = 3
	}
	if b.PollTicks == 0 {
		b.PollTicks = core.DefaultPollTicks
	}

	w := &cfg.Wave
	if w.Period == 0 {
		w.Period = 1500
	}
	if w.Speed == 0 {
		w.Speed = 1
	}
	if w.Carrier == "" {
		w.Carrier = "tick"
	}

	if cfg.Sequence.StepTicks == 0 {
		cfg.Sequence.StepTicks = core.DefaultStepTicks
	}
}

func invalid(field, msg string) error {
	return errcode.New(errcode.InvalidParams, "config", field+": "+msg)
}

// Validate rejects configurations the firmware cannot run
func (c *Config) Validate() error {
	if c.TickHz == 0 {
		return invalid("tick_hz", "must be > 0")
	}
	if !mathx.Between(len(c.Pins.LEDs), 1, MaxChannels) {
		return invalid("pins.leds", fmt.Sprintf("need 1..%d LEDs, got %d", MaxChannels, len(c.Pins.LEDs)))
	}
	pins := append(append([]uint32(nil), c.Pins.LEDs...), c.Pins.Button)
	if c.Pins.Status != nil {
		pins = append(pins, *c.Pins.Status)
	}
	seen := make(map[uint32]bool)
	for _, p := range pins {
		if seen[p] {
			return invalid("pins", fmt.Sprintf("GPIO %d used twice", p))
		}
		seen[p] = true
	}
	if _, ok := core.ParseMode(c.DefaultMode); !ok {
		return invalid("default_mode", "unknown mode "+c.DefaultMode)
	}
	switch c.Pins.StatusKind {
	case "gpio", "ws2812":
	default:
		return invalid("pins.status_kind", "unknown kind "+c.Pins.StatusKind)
	}
	switch c.Button.Active {
	case "low", "high":
	default:
		return invalid("button.active", "must be low or high")
	}
	switch c.Wave.Carrier {
	case "tick", "per_channel":
	default:
		return invalid("wave.carrier", "unknown carrier "+c.Wave.Carrier)
	}
	if c.Button.HoldTicks <= c.Button.DebounceTicks {
		return invalid("button.hold_ticks", "must exceed debounce_ticks")
	}
	if c.QueueDepth < 1 {
		return invalid("queue_depth", "must be >= 1")
	}
	return nil
}

// Options converts the configuration into dispatcher options
func (c *Config) Options() core.Options {
	mode, _ := core.ParseMode(c.DefaultMode)
	carrier := core.CarrierTick
	if c.Wave.Carrier == "per_channel" {
		carrier = core.CarrierPerChannel
	}
	return core.Options{
		Button: core.ButtonConfig{
			PressedLevel:     c.Button.Active == "high",
			DebounceTicks:    c.Button.DebounceTicks,
			HoldTicks:        c.Button.HoldTicks,
			ClickSeriesTicks: c.Button.ClickSeriesTicks,
			MaxClicks:        c.Button.MaxClicks,
			ClickResetTicks:  c.Button.ClickResetTicks,
		},
		Wave: core.WaveConfig{
			Period:      c.Wave.Period,
			Speed:       c.Wave.Speed,
			MinInterval: c.Wave.MinInterval,
			Carrier:     carrier,
		},
		StepTicks:  c.Sequence.StepTicks,
		PollTicks:  c.Button.PollTicks,
		Mode:       mode,
		QueueDepth: c.QueueDepth,
	}
}

// ButtonPull returns the bias resistor that holds the button idle
func (c *Config) ButtonPull() core.Pull {
	if c.Button.Active == "high" {
		return core.PullDown
	}
	return core.PullUp
}

// LEDPins converts the LED pin list for core.NewPinBank
func (c *Config) LEDPins() []core.GPIOPin {
	pins := make([]core.GPIOPin, len(c.Pins.LEDs))
	for i, p := range c.Pins.LEDs {
		pins[i] = core.GPIOPin(p)
	}
	return pins
}
