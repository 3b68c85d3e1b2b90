//go:build rp2040 || rp2350

package main

import (
	"image/color"
	"machine"

	"blinky/config"
	"blinky/core"
)

// InitStatusLight returns the driver for the configured status light, or
// nil when the board has none.
func InitStatusLight(cfg *config.Config) func(on bool, c color.RGBA) {
	if cfg.Pins.Status == nil {
		return nil
	}
	pin := machine.Pin(*cfg.Pins.Status)
	switch cfg.Pins.StatusKind {
	case "ws2812":
		show := newPixel(pin)
		if show == nil {
			return nil
		}
		last, first := color.RGBA{}, true
		return func(on bool, c color.RGBA) {
			c = core.Scale(c, on)
			// Only rewrite the pixel when the colour changes
			if c == last && !first {
				return
			}
			first, last = false, c
			show(c)
		}
	default:
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		return func(on bool, _ color.RGBA) { pin.Set(on) }
	}
}
