package standalone

import "sync"

// TurboState holds fast-forward state shared between the Ebiten thread
// (which sets it from key input) and the emulation goroutine (which reads it).
type TurboState struct {
	mu sync.Mutex
	on bool
}

// Toggle flips turbo mode, returning the new state.
// Called from the Ebiten thread.
func (ts *TurboState) Toggle() bool {
	ts.mu.Lock()
	ts.on = !ts.on
	on := ts.on
	ts.mu.Unlock()
	return on
}

// Read returns whether turbo mode is on.
// Called from the emulation goroutine.
func (ts *TurboState) Read() bool {
	ts.mu.Lock()
	on := ts.on
	ts.mu.Unlock()
	return on
}

// turboMessage is the log message shown when turbo changes.
func turboMessage(on bool) string {
	if on {
		return "Turbo on"
	}
	return "Turbo off"
}
