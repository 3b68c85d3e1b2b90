//go:build (rp2040 || rp2350) && !bitbang

package main

import (
	"image/color"
	"machine"

	"blinky/core"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
)

// newPixel drives a WS2812 status pixel from a PIO state machine
func newPixel(pin machine.Pin) func(color.RGBA) {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		core.DebugPrintln("[STATUS] no free PIO state machine: " + err.Error())
		return nil
	}
	ws, err := piolib.NewWS2812B(sm, pin)
	if err != nil {
		core.DebugPrintln("[STATUS] ws2812: " + err.Error())
		return nil
	}
	return func(c color.RGBA) { ws.PutRGB(c.R, c.G, c.B) }
}
