//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// hostCritical serialises the simulator's tick goroutine with control
// calls made from other goroutines.
var hostCritical sync.Mutex

// disableInterrupts enters the critical section (mutex on regular Go)
func disableInterrupts() State {
	hostCritical.Lock()
	return 0
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state State) {
	hostCritical.Unlock()
}
