//go:build (rp2040 || rp2350) && bitbang

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// newPixel bit-bangs a WS2812 status pixel, leaving the PIO blocks free.
// Build with -tags bitbang.
func newPixel(pin machine.Pin) func(color.RGBA) {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	ws := ws2812.New(pin)
	buf := make([]color.RGBA, 1)
	return func(c color.RGBA) {
		buf[0] = c
		ws.WriteColors(buf)
	}
}
