package standalone

// RunState represents the current state of the runner
type RunState int

const (
	// StateRunning is active emulation
	StateRunning RunState = iota
	// StatePaused shows the pause menu over a frozen frame
	StatePaused
)

// String returns the string representation of the state
func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// pauseMenuLines is the text shown while paused.
var pauseMenuLines = []string{
	"Paused",
	"",
	"P      Resume",
	"F9     Background",
	"F11    Fullscreen",
	"F12    Screenshot",
	"Tab    Turbo",
	"Esc    Quit",
}
