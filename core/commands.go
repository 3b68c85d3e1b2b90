package core

import (
	"sync/atomic"

	"blinky/errcode"
	"blinky/protocol"
)

// IdentifyChunkMax is the largest dictionary chunk one identify returns
const IdentifyChunkMax = 40

// Responder sends a framed response; *protocol.Transport implements it.
type Responder interface {
	SendCommand(cmdID uint16, args func(output protocol.OutputBuffer))
}

// Console exposes the dispatcher's control operations over the link.
// Handlers run in the main loop.
type Console struct {
	d    *Dispatcher
	reg  *CommandRegistry
	dict *Dictionary
	out  Responder

	resetPending  uint32 // atomic bool
	resetHandler  func()
	faultReported bool
}

// NewConsole registers every command and response and builds the
// dictionary. identify_response and identify are always IDs 0 and 1 so a
// host can bootstrap without knowing the dictionary.
func NewConsole(d *Dispatcher, info BuildInfo, tickHz uint32) *Console {
	c := &Console{d: d, reg: NewCommandRegistry()}
	r := c.reg

	r.RegisterResponse("identify_response", "offset=%u data=%*s") // ID 0
	r.Register("identify", "offset=%u count=%c", c.handleIdentify) // ID 1

	r.Register("get_clock", "", c.handleGetClock)
	r.Register("get_status", "", c.handleGetStatus)
	r.Register("set_mode", "mode=%c", c.handleSetMode)
	r.Register("start_wave", "", c.handleStartWave)
	r.Register("stop_wave", "", c.handleStopWave)
	r.Register("set_wave_speed", "speed=%u", c.handleSetWaveSpeed)
	r.Register("set_wave_period", "period=%u", c.handleSetWavePeriod)
	r.Register("start_sequence", "step_ticks=%u", c.handleStartSequence)
	r.Register("stop_sequence", "", c.handleStopSequence)
	r.Register("get_button", "", c.handleGetButton)
	r.Register("reset_clicks", "", c.handleResetClicks)
	r.Register("toggle_process", "", c.handleToggleProcess)
	r.Register("dump_events", "", c.handleDumpEvents)
	r.Register("reset", "", c.handleReset)

	r.RegisterResponse("clock", "clock=%u")
	r.RegisterResponse("status", "mode=%c state=%c wave=%c sequence=%c phase=%u period=%u speed=%u")
	r.RegisterResponse("button", "state=%c clicks=%c last_click=%u")
	r.RegisterResponse("event", "kind=%c clock=%u value=%u")
	r.RegisterResponse("fault", "reason=%*s")
	r.RegisterResponse("command_error", "cmd=%u code=%*s")

	c.dict = NewDictionary(r, info)
	c.dict.AddConstantString("MCU", info.MCU)
	c.dict.AddConstant("CLOCK_FREQ", tickHz)
	c.dict.AddConstant("CHANNELS", uint32(d.leds.Len()))
	c.dict.AddConstant("PWM_STEPS", CarrierSteps)
	c.dict.AddConstant("MAX_CLICKS", uint32(d.opts.Button.MaxClicks))
	c.dict.AddEnumeration("mode", modeNames[:])
	c.dict.AddEnumeration("button_state", []string{"released", "pressed", "held"})
	c.dict.AddEnumeration("app_state", []string{"running", "paused", "halted"})
	c.dict.AddEnumeration("event_kind", eventNames[:])
	return c
}

// SetResponder sets where responses are sent
func (c *Console) SetResponder(out Responder) { c.out = out }

// SetResetHandler sets the platform reset, run by CheckPendingReset
func (c *Console) SetResetHandler(handler func()) { c.resetHandler = handler }

func (c *Console) Registry() *CommandRegistry { return c.reg }
func (c *Console) Dictionary() *Dictionary    { return c.dict }

// Handle is the protocol.CommandHandler for the link
func (c *Console) Handle(cmdID uint16, data *[]byte) error {
	return c.reg.Dispatch(cmdID, data)
}

// ReportError tells the host a command failed
func (c *Console) ReportError(cmdID uint16, err error) {
	code := string(errcode.Of(err))
	c.send("command_error", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(cmdID))
		protocol.EncodeVLQString(out, code)
	})
}

// ReportFault sends the fault reason once after the dispatcher halts.
// Returns true when it sent the report.
func (c *Console) ReportFault() bool {
	if c.faultReported {
		return false
	}
	s := c.d.Status()
	if s.State != StateHalted {
		return false
	}
	c.faultReported = true
	c.send("fault", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQString(out, s.Fault)
	})
	return true
}

// CheckPendingReset runs the reset handler once a reset command has been
// acknowledged. Call it from the main loop after output is flushed.
func (c *Console) CheckPendingReset() {
	if c.resetHandler != nil && atomic.CompareAndSwapUint32(&c.resetPending, 1, 0) {
		c.resetHandler()
	}
}

func (c *Console) send(name string, args func(out protocol.OutputBuffer)) {
	if c.out == nil {
		return
	}
	cmd, ok := c.reg.GetCommandByName(name)
	if !ok {
		panic("response not registered: " + name)
	}
	c.out.SendCommand(cmd.ID, args)
}

func boolArg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (c *Console) handleIdentify(data *[]byte) error {
	offset, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	count, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if count > IdentifyChunkMax {
		count = IdentifyChunkMax
	}
	chunk := c.dict.GetChunk(offset, uint8(count))
	c.send("identify_response", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, offset)
		protocol.EncodeVLQBytes(out, chunk)
	})
	return nil
}

func (c *Console) handleGetClock(data *[]byte) error {
	now := c.d.Now()
	c.send("clock", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, now)
	})
	return nil
}

func (c *Console) sendStatus() {
	s := c.d.Status()
	c.send("status", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(s.Mode))
		protocol.EncodeVLQUint(out, uint32(s.State))
		protocol.EncodeVLQUint(out, boolArg(s.WaveActive))
		protocol.EncodeVLQUint(out, boolArg(s.SeqActive))
		protocol.EncodeVLQUint(out, s.Phase)
		protocol.EncodeVLQUint(out, s.Period)
		protocol.EncodeVLQUint(out, s.Speed)
	})
}

func (c *Console) handleGetStatus(data *[]byte) error {
	c.sendStatus()
	return nil
}

// checkRunning rejects control commands once the dispatcher has halted
func (c *Console) checkRunning(op string) error {
	if c.d.State() == StateHalted {
		return &errcode.E{C: errcode.Halted, Op: op}
	}
	return nil
}

func (c *Console) handleSetMode(data *[]byte) error {
	v, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if err := c.checkRunning("set_mode"); err != nil {
		return err
	}
	m := Mode(v)
	if v > 255 || !m.Valid() {
		return &errcode.E{C: errcode.UnknownMode, Op: "set_mode", Msg: "mode " + utoa(v)}
	}
	c.d.SetMode(m)
	c.sendStatus()
	return nil
}

func (c *Console) handleStartWave(data *[]byte) error {
	if err := c.checkRunning("start_wave"); err != nil {
		return err
	}
	c.d.StartWave()
	c.sendStatus()
	return nil
}

func (c *Console) handleStopWave(data *[]byte) error {
	c.d.StopWave()
	c.sendStatus()
	return nil
}

func (c *Console) handleSetWaveSpeed(data *[]byte) error {
	speed, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	c.d.SetWaveSpeed(speed)
	return nil
}

func (c *Console) handleSetWavePeriod(data *[]byte) error {
	period, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if period == 0 {
		return &errcode.E{C: errcode.OutOfRange, Op: "set_wave_period", Msg: "period must be > 0"}
	}
	c.d.SetWavePeriod(period)
	return nil
}

func (c *Console) handleStartSequence(data *[]byte) error {
	step, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if step == 0 {
		return &errcode.E{C: errcode.OutOfRange, Op: "start_sequence", Msg: "step_ticks must be > 0"}
	}
	if err := c.checkRunning("start_sequence"); err != nil {
		return err
	}
	c.d.StartSequence(step)
	c.sendStatus()
	return nil
}

func (c *Console) handleStopSequence(data *[]byte) error {
	c.d.StopSequence()
	c.sendStatus()
	return nil
}

func (c *Console) handleGetButton(data *[]byte) error {
	s := c.d.Status()
	c.send("button", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(s.Button))
		protocol.EncodeVLQUint(out, uint32(s.Clicks))
		protocol.EncodeVLQUint(out, s.LastClick)
	})
	return nil
}

func (c *Console) handleResetClicks(data *[]byte) error {
	c.d.ResetClickCount()
	return nil
}

func (c *Console) handleToggleProcess(data *[]byte) error {
	if err := c.checkRunning("toggle_process"); err != nil {
		return err
	}
	c.d.ToggleProcess()
	c.sendStatus()
	return nil
}

func (c *Console) handleDumpEvents(data *[]byte) error {
	for _, ev := range c.d.History() {
		ev := ev
		c.send("event", func(out protocol.OutputBuffer) {
			protocol.EncodeVLQUint(out, uint32(ev.Kind))
			protocol.EncodeVLQUint(out, ev.Clock)
			protocol.EncodeVLQUint(out, ev.Value)
		})
	}
	c.d.DumpEvents()
	return nil
}

// handleReset defers the reset until the ACK has been sent
func (c *Console) handleReset(_ *[]byte) error {
	atomic.StoreUint32(&c.resetPending, 1)
	return nil
}
