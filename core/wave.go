package core

import (
	"math"

	"blinky/x/mathx"
)

// CarrierMode selects how the software PWM step counter advances
type CarrierMode uint8

const (
	// CarrierTick advances one shared step counter once per update, so
	// every channel is compared against the same step.
	CarrierTick CarrierMode = iota
	// CarrierPerChannel advances the shared counter after each channel is
	// evaluated. Kept for trace compatibility with older boards.
	CarrierPerChannel
)

// CarrierSteps is the resolution of the software PWM carrier (duty 0..100)
const CarrierSteps = 100

// WaveConfig configures the sine wave engine
type WaveConfig struct {
	Period      uint32 // ticks per full cycle
	Speed       uint32 // phase advance per update
	MinInterval uint32 // minimum ticks between updates, 0 = every tick
	Carrier     CarrierMode
}

// DefaultWaveConfig returns the reference wave settings
func DefaultWaveConfig() WaveConfig {
	return WaveConfig{Period: 1500, Speed: 1}
}

// WaveDuty returns the 0..100 duty of channel for the given phase. Each
// channel is shifted by period/channels so the wave travels across the
// bank. A zero period or channel count yields 0.
func WaveDuty(phase, period uint32, channel, channels int) uint8 {
	if period == 0 || channels <= 0 {
		return 0
	}
	channel %= channels
	if channel < 0 {
		channel += channels
	}
	shift := (period / uint32(channels)) * uint32(channel)
	pos := mathx.AddMod(phase, shift, period)
	angle := 2 * math.Pi * float64(pos) / float64(period)
	d := math.Round(100 * (math.Sin(angle) + 1) / 2)
	return uint8(mathx.Clamp(d, 0, 100))
}

// WaveEngine animates a phase-shifted sine across an LED bank using a
// software PWM carrier.
type WaveEngine struct {
	leds *LEDBank
	cfg  WaveConfig

	active     bool
	phase      uint32
	step       uint8
	lastUpdate uint32
	duty       []uint8
}

func NewWaveEngine(leds *LEDBank, cfg WaveConfig) *WaveEngine {
	return &WaveEngine{
		leds: leds,
		cfg:  cfg,
		duty: make([]uint8, leds.Len()),
	}
}

// Start resets the phase and enables updates
func (w *WaveEngine) Start(now uint32) {
	w.phase = 0
	w.step = 0
	w.lastUpdate = now - w.cfg.MinInterval
	w.active = true
}

// Stop disables updates and forces every channel off
func (w *WaveEngine) Stop() {
	w.active = false
	w.leds.AllOff()
	for i := range w.duty {
		w.duty[i] = 0
	}
}

func (w *WaveEngine) Active() bool { return w.active }

// SetSpeed changes the phase advance; takes effect on the next update.
func (w *WaveEngine) SetSpeed(speed uint32) { w.cfg.Speed = speed }

// SetPeriod changes the cycle length without resetting the phase.
func (w *WaveEngine) SetPeriod(period uint32) { w.cfg.Period = period }

func (w *WaveEngine) Speed() uint32  { return w.cfg.Speed }
func (w *WaveEngine) Period() uint32 { return w.cfg.Period }
func (w *WaveEngine) Phase() uint32  { return w.phase }

// Duty returns the last computed duty of a channel
func (w *WaveEngine) Duty(ch int) uint8 {
	n := len(w.duty)
	if n == 0 {
		return 0
	}
	ch %= n
	if ch < 0 {
		ch += n
	}
	return w.duty[ch]
}

// Output returns the current electrical state of a channel
func (w *WaveEngine) Output(ch int) bool { return w.leds.State(ch) }

// Update advances the phase and refreshes every channel. It is a no-op
// while inactive, with a zero period, or before MinInterval has elapsed.
func (w *WaveEngine) Update(now uint32) {
	if !w.active || w.cfg.Period == 0 {
		return
	}
	if w.cfg.MinInterval > 0 && Elapsed(now, w.lastUpdate) < w.cfg.MinInterval {
		return
	}
	w.lastUpdate = now
	w.phase = mathx.AddMod(w.phase, w.cfg.Speed, w.cfg.Period)

	n := len(w.duty)
	for i := 0; i < n; i++ {
		d := WaveDuty(w.phase, w.cfg.Period, i, n)
		w.duty[i] = d
		w.leds.SetState(i, w.step < d)
		if w.cfg.Carrier == CarrierPerChannel {
			w.advanceStep()
		}
	}
	if w.cfg.Carrier == CarrierTick {
		w.advanceStep()
	}
}

func (w *WaveEngine) advanceStep() {
	w.step++
	if w.step >= CarrierSteps {
		w.step = 0
	}
}
