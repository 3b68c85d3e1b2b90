package core

// LEDBank tracks the logical state of every LED channel on top of an
// OutputBank. Channel indices outside [0, Len) are reduced modulo Len.
// The bank only writes to the output when a channel's state changes.
type LEDBank struct {
	out   OutputBank
	clock *TickClock
	state []bool
	since []uint32
}

// NewLEDBank wraps out and forces every channel off.
func NewLEDBank(out OutputBank, clock *TickClock) *LEDBank {
	n := out.Len()
	b := &LEDBank{
		out:   out,
		clock: clock,
		state: make([]bool, n),
		since: make([]uint32, n),
	}
	for i := 0; i < n; i++ {
		out.Set(i, false)
	}
	return b
}

// Len returns the number of channels
func (b *LEDBank) Len() int { return len(b.state) }

func (b *LEDBank) index(ch int) int {
	n := len(b.state)
	if n == 0 {
		return -1
	}
	ch %= n
	if ch < 0 {
		ch += n
	}
	return ch
}

// SetState switches a channel on or off
func (b *LEDBank) SetState(ch int, on bool) {
	i := b.index(ch)
	if i < 0 || b.state[i] == on {
		return
	}
	b.state[i] = on
	if on && b.clock != nil {
		b.since[i] = b.clock.Now()
	}
	b.out.Set(i, on)
}

func (b *LEDBank) On(ch int)  { b.SetState(ch, true) }
func (b *LEDBank) Off(ch int) { b.SetState(ch, false) }

// Toggle inverts a channel
func (b *LEDBank) Toggle(ch int) {
	if i := b.index(ch); i >= 0 {
		b.SetState(i, !b.state[i])
	}
}

// State returns the logical state of a channel
func (b *LEDBank) State(ch int) bool {
	i := b.index(ch)
	return i >= 0 && b.state[i]
}

// OnSince returns the tick at which the channel last switched on.
func (b *LEDBank) OnSince(ch int) uint32 {
	i := b.index(ch)
	if i < 0 {
		return 0
	}
	return b.since[i]
}

func (b *LEDBank) AllOn() {
	for i := range b.state {
		b.SetState(i, true)
	}
}

func (b *LEDBank) AllOff() {
	for i := range b.state {
		b.SetState(i, false)
	}
}

// LitCount returns how many channels are on
func (b *LEDBank) LitCount() int {
	n := 0
	for _, on := range b.state {
		if on {
			n++
		}
	}
	return n
}
