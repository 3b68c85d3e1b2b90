package core

import (
	"image/color"
	"sync"

	"blinky/protocol"
)

// LinkCounters tracks main loop traffic
type LinkCounters struct {
	Received    uint32 // bytes accepted by Feed
	Overflows   uint32 // bytes dropped because the receive buffer was full
	Flushes     uint32
	WriteErrors uint32
	Recovered   uint32 // panics caught by Poll
}

// Firmware is the main loop half of the board. The interrupt half is
// Dispatcher.Tick. Feed may run in a reader goroutine while Poll runs in
// the main loop.
type Firmware struct {
	D       *Dispatcher
	Console *Console
	Actions *ButtonActions

	mu        sync.Mutex
	transport *protocol.Transport
	rx        *protocol.RxBuffer
	out       *protocol.ScratchOutput
	write     func([]byte) error
	counters  LinkCounters

	indicator Indicator
	status    func(on bool, c color.RGBA)
	dumped    bool
}

// NewFirmware builds the console and link around d. write pushes encoded
// frames to the host.
func NewFirmware(d *Dispatcher, info BuildInfo, tickHz uint32, write func([]byte) error) *Firmware {
	f := &Firmware{
		D:       d,
		Console: NewConsole(d, info, tickHz),
		Actions: NewButtonActions(d),
		rx:      protocol.NewRxBuffer(256),
		out:     protocol.NewScratchOutput(),
		write:   write,
	}
	f.transport = protocol.NewTransport(f.out, f.Console.Handle)
	f.transport.SetFlushCallback(f.flush)
	f.transport.SetErrorCallback(f.Console.ReportError)
	f.transport.SetResetCallback(func() {
		// Drop replies meant for the previous session
		f.out.Reset()
		DebugAsync("[LINK] host reset")
	})
	f.Console.SetResponder(f.transport)
	return f
}

// SetStatusLight sets the function that drives the board status light
func (f *Firmware) SetStatusLight(fn func(on bool, c color.RGBA)) { f.status = fn }

// Feed queues received bytes and returns how many fit
func (f *Firmware) Feed(p []byte) int {
	f.mu.Lock()
	n := f.rx.Write(p)
	f.counters.Received += uint32(n)
	f.counters.Overflows += uint32(len(p) - n)
	f.mu.Unlock()
	return n
}

// Poll runs one main loop pass: execute received commands, apply button
// actions, report a fault once and refresh the status light.
func (f *Firmware) Poll() {
	f.poll()
	// The reset handler may call Reset, so run it unlocked
	f.Console.CheckPendingReset()
}

func (f *Firmware) poll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			f.counters.Recovered++
			f.rx.Reset()
			f.out.Reset()
		}
	}()

	if !f.rx.IsEmpty() {
		f.transport.Receive(f.rx)
	}
	f.Actions.Drain()

	if f.Console.ReportFault() && !f.dumped {
		f.dumped = true
		f.D.DumpEvents()
	}
	f.flush()

	if f.status != nil {
		on, c := f.indicator.Update(f.D.Status())
		f.status(on, c)
	}
}

// flush pushes pending output. Called with f.mu held.
func (f *Firmware) flush() {
	data := f.out.Result()
	if len(data) == 0 || f.write == nil {
		return
	}
	if err := f.write(data); err != nil {
		f.counters.WriteErrors++
	}
	f.counters.Flushes++
	f.out.Reset()
}

// Reset returns the link to its power-on state, e.g. after the USB host
// reconnects. The dispatcher keeps running.
func (f *Firmware) Reset() {
	f.mu.Lock()
	f.rx.Reset()
	f.out.Reset()
	f.transport.Reset()
	f.mu.Unlock()
}

func (f *Firmware) Counters() LinkCounters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters
}

// LinkStats returns the framing counters of the link
func (f *Firmware) LinkStats() protocol.LinkStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transport.Stats()
}
