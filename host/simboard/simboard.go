// Package simboard runs the board firmware in-process on simulated GPIO.
// A Board is an io.ReadWriteCloser speaking the same framed link as the
// USB console, so host tools work against it unchanged.
package simboard

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"blinky/config"
	"blinky/core"
)

// Board is a simulated board
type Board struct {
	cfg  *config.Config
	gpio *core.SimGPIO
	d    *core.Dispatcher
	fw   *core.Firmware

	toHost chan []byte
	pend   []byte
	closed chan struct{}
	once   sync.Once
}

// New builds a board from cfg and enters its startup mode
func New(cfg *config.Config) (*Board, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	gpio := core.NewSimGPIO()
	bank, err := core.NewPinBank(gpio, cfg.LEDPins(), cfg.Pins.LEDActiveLow)
	if err != nil {
		return nil, fmt.Errorf("led bank: %w", err)
	}
	in, err := core.NewPinInput(gpio, core.GPIOPin(cfg.Pins.Button), cfg.ButtonPull())
	if err != nil {
		return nil, fmt.Errorf("button: %w", err)
	}

	b := &Board{
		cfg:    cfg,
		gpio:   gpio,
		toHost: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
	b.Release()
	b.d = core.NewDispatcher(bank, in, cfg.Options())
	b.fw = core.NewFirmware(b.d, core.BuildInfo{
		Version:       "sim",
		BuildVersions: "host",
		MCU:           "simboard",
	}, cfg.TickHz, b.send)
	b.fw.Console.SetResetHandler(b.fw.Reset)
	b.d.Start()
	return b, nil
}

func (b *Board) send(p []byte) error {
	select {
	case b.toHost <- append([]byte(nil), p...):
		return nil
	case <-b.closed:
		return io.ErrClosedPipe
	}
}

// Dispatcher exposes the simulated board's dispatcher
func (b *Board) Dispatcher() *core.Dispatcher { return b.d }

// Firmware exposes the main loop, e.g. to set a status light
func (b *Board) Firmware() *core.Firmware { return b.fw }

// GPIO exposes the simulated pins
func (b *Board) GPIO() *core.SimGPIO { return b.gpio }

// Press drives the button pin to its pressed level
func (b *Board) Press() {
	b.gpio.Drive(core.GPIOPin(b.cfg.Pins.Button), b.cfg.Button.Active == "high")
}

// Release returns the button pin to its idle level
func (b *Board) Release() {
	b.gpio.Drive(core.GPIOPin(b.cfg.Pins.Button), b.cfg.Button.Active != "high")
}

// Step runs n timer ticks followed by one main loop pass
func (b *Board) Step(n int) {
	for i := 0; i < n; i++ {
		b.d.Tick()
	}
	b.fw.Poll()
}

// Run ticks the board at the configured rate until ctx is done. The main
// loop runs once per tickBatch ticks.
func (b *Board) Run(ctx context.Context, tickBatch int) error {
	if tickBatch < 1 {
		tickBatch = 1
	}
	period := time.Second * time.Duration(tickBatch) / time.Duration(b.cfg.TickHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.closed:
			return nil
		case <-ticker.C:
			b.Step(tickBatch)
		}
	}
}

// Write delivers host bytes to the board and runs the main loop on them
func (b *Board) Write(p []byte) (int, error) {
	select {
	case <-b.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	n := 0
	for n < len(p) {
		w := b.fw.Feed(p[n:])
		b.fw.Poll()
		if w == 0 {
			return n, fmt.Errorf("simboard: receive buffer full")
		}
		n += w
	}
	return n, nil
}

// Read returns bytes the board sent to the host
func (b *Board) Read(p []byte) (int, error) {
	if len(b.pend) == 0 {
		select {
		case d := <-b.toHost:
			b.pend = d
		case <-b.closed:
			return 0, io.EOF
		}
	}
	n := copy(p, b.pend)
	b.pend = b.pend[n:]
	return n, nil
}

func (b *Board) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}
