package core

import "image/color"

// Blink periods of the status light, in ticks
const (
	PausedBlinkTicks   = 500
	SequenceBlinkTicks = 300
)

// Indicator colours for RGB status pixels
var (
	ColorFault    = color.RGBA{R: 64, A: 255}
	ColorPaused   = color.RGBA{R: 48, G: 24, A: 255}
	ColorWave     = color.RGBA{G: 48, A: 255}
	ColorSequence = color.RGBA{B: 64, A: 255}
	ColorOff      = color.RGBA{}
)

// Indicator decides what the board status light shows. It only reads a
// Status snapshot, so it runs in the main loop.
//
//	halted   solid fault colour
//	paused   blinks every 500 ticks
//	pwm      solid
//	sequence blinks every 300 ticks
//	static   off
type Indicator struct {
	lastBlink uint32
	lit       bool
}

// Update returns whether the light is on and the colour to show.
func (ind *Indicator) Update(s Status) (bool, color.RGBA) {
	switch {
	case s.State == StateHalted:
		ind.lit = true
		return true, ColorFault
	case s.State == StatePaused:
		return ind.blink(s.Now, PausedBlinkTicks), ColorPaused
	}
	switch s.Mode {
	case ModePWM:
		ind.lit = true
		return true, ColorWave
	case ModeSequence:
		return ind.blink(s.Now, SequenceBlinkTicks), ColorSequence
	}
	ind.lit = false
	return false, ColorOff
}

func (ind *Indicator) blink(now, every uint32) bool {
	if Elapsed(now, ind.lastBlink) >= every {
		ind.lit = !ind.lit
		ind.lastBlink = now
	}
	return ind.lit
}

// Scale returns c dimmed to on/off for single-colour lights.
func Scale(c color.RGBA, on bool) color.RGBA {
	if !on {
		return ColorOff
	}
	return c
}
