package core

import "sync/atomic"

// TickClock is the monotonic tick counter driven by the periodic timer
// interrupt. It wraps silently at 2^32; compare tick values with Elapsed,
// never with < or >.
type TickClock struct {
	ticks uint32
}

// Advance increments the clock by one tick. Only the tick interrupt calls it.
func (c *TickClock) Advance() {
	atomic.AddUint32(&c.ticks, 1)
}

// Now returns the current tick count.
func (c *TickClock) Now() uint32 {
	return atomic.LoadUint32(&c.ticks)
}

// Set forces the tick count. Used by tests and by the firmware when it
// resynchronises with the hardware timer at startup.
func (c *TickClock) Set(ticks uint32) {
	atomic.StoreUint32(&c.ticks, ticks)
}

// Elapsed returns the number of ticks from since to now, correct across
// a single counter wrap.
func Elapsed(now, since uint32) uint32 {
	return now - since
}
